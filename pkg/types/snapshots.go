package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CustomerSnapshot is the denormalized copy of customer fields taken at
// document-creation time. Later edits to the live customer never alter it.
type CustomerSnapshot struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Address    Address    `json:"address"`
}

// BusinessProfileSnapshot freezes the issuing company's profile fields.
type BusinessProfileSnapshot struct {
	Name                string  `json:"name"`
	Email               string  `json:"email,omitempty"`
	Phone               string  `json:"phone,omitempty"`
	Address             Address `json:"address"`
	LogoRef             string  `json:"logo_ref,omitempty"`
	DefaultTerms        string  `json:"default_terms,omitempty"`
	RegistrationNumbers string  `json:"registration_numbers,omitempty"`
}

// PreparerIdentitySnapshot records who prepared a regulated document.
type PreparerIdentitySnapshot struct {
	DisplayName    string `json:"display_name"`
	LicenseNumbers string `json:"license_numbers,omitempty"`
}

// LockedPayloadVersion is the schema version stamped on newly captured
// payloads. Bump it when the payload shape changes; old versions stay
// decodable forever.
const LockedPayloadVersion = 1

// LockedPayload is the immutable, versioned snapshot persisted for
// certificates. Every re-render must consume this exact structure.
type LockedPayload struct {
	Kind             string                   `json:"kind"`
	Version          int                      `json:"version"`
	CapturedAt       time.Time                `json:"captured_at"`
	Content          json.RawMessage          `json:"content"`
	BusinessProfile  BusinessProfileSnapshot  `json:"business_profile_snapshot"`
	PreparerIdentity PreparerIdentitySnapshot `json:"preparer_identity_snapshot"`
}
