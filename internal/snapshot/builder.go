// Package snapshot assembles the point-in-time copies of customer, business,
// and preparer data that documents embed. Builders are pure; persistence is
// the caller's job.
package snapshot

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

// CustomerForm carries freshly entered customer details.
type CustomerForm struct {
	Name    string
	Email   string
	Phone   string
	Address types.Address
}

// CustomerSelection is the tagged variant feeding the builder: either a new
// form entry or a reference to a stored customer. Exactly one side is set.
type CustomerSelection struct {
	New      *CustomerForm
	Existing *models.Customer
}

// FieldRequirements declares which snapshot fields the calling flow treats as
// mandatory. Quick-entry flows relax the address requirement.
type FieldRequirements struct {
	RequireName    bool
	RequireAddress bool
}

// FullRequirements is the default for issued documents.
var FullRequirements = FieldRequirements{RequireName: true, RequireAddress: true}

// QuickEntryRequirements keeps only the name mandatory.
var QuickEntryRequirements = FieldRequirements{RequireName: true}

// BuildCustomerSnapshot denormalizes the selected customer into the embedded
// snapshot shape.
func BuildCustomerSnapshot(selection CustomerSelection, reqs FieldRequirements) (types.CustomerSnapshot, error) {
	var snap types.CustomerSnapshot
	switch {
	case selection.New != nil && selection.Existing != nil:
		return snap, pkgerrors.New(pkgerrors.CodeValidation, "customer selection must be new or existing, not both")
	case selection.New != nil:
		form := selection.New
		snap = types.CustomerSnapshot{
			Name:    strings.TrimSpace(form.Name),
			Email:   strings.TrimSpace(form.Email),
			Phone:   strings.TrimSpace(form.Phone),
			Address: form.Address,
		}
	case selection.Existing != nil:
		customer := selection.Existing
		id := customer.ID
		snap = types.CustomerSnapshot{
			CustomerID: &id,
			Name:       customer.Name,
			Email:      customer.Email,
			Phone:      customer.Phone,
			Address:    customer.Address,
		}
	default:
		return snap, pkgerrors.New(pkgerrors.CodeValidation, "customer selection required")
	}

	if missing := missingFields(snap, reqs); len(missing) > 0 {
		return types.CustomerSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "required customer fields missing").
			WithDetails(map[string]any{"missing": missing})
	}
	return snap, nil
}

func missingFields(snap types.CustomerSnapshot, reqs FieldRequirements) []string {
	var missing []string
	if reqs.RequireName && snap.Name == "" {
		missing = append(missing, "name")
	}
	if reqs.RequireAddress {
		if strings.TrimSpace(snap.Address.Line1) == "" {
			missing = append(missing, "address.line1")
		}
		if strings.TrimSpace(snap.Address.PostalCode) == "" {
			missing = append(missing, "address.postal_code")
		}
	}
	return missing
}

// Clock lets tests pin the capture timestamp.
type Clock func() time.Time

// BuildLockedPayload freezes the business profile, preparer identity, and
// certificate content into the versioned payload persisted verbatim. The
// builder never re-reads live profile state afterward.
func BuildLockedPayload(content json.RawMessage, business *models.Business, preparer types.PreparerIdentitySnapshot, now Clock) (*types.LockedPayload, error) {
	if len(content) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate content required")
	}
	if !json.Valid(content) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate content is not valid JSON")
	}
	// Renderers read content as named sections, so only objects are issuable.
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(content, &sections); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "certificate content must be a JSON object")
	}
	if business == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business profile required")
	}
	if strings.TrimSpace(preparer.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preparer display name required")
	}
	if now == nil {
		now = time.Now
	}

	return &types.LockedPayload{
		Kind:       "certificate",
		Version:    types.LockedPayloadVersion,
		CapturedAt: now().UTC(),
		Content:    append(json.RawMessage(nil), content...),
		BusinessProfile: types.BusinessProfileSnapshot{
			Name:                business.Name,
			Email:               business.Email,
			Phone:               business.Phone,
			Address:             business.Address,
			LogoRef:             business.LogoRef,
			DefaultTerms:        business.DefaultTerms,
			RegistrationNumbers: business.RegistrationNumbers,
		},
		PreparerIdentity: preparer,
	}, nil
}

// DecodeLockedPayload validates a stored payload against its declared
// version. A payload that fails here can no longer be reliably re-rendered
// and must be reported, never guessed at.
func DecodeLockedPayload(raw []byte) (*types.LockedPayload, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeLockedPayloadCorrupt, "locked payload is empty")
	}
	var payload types.LockedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLockedPayloadCorrupt, err, "locked payload failed to deserialize")
	}
	return &payload, ValidateLockedPayload(&payload)
}

// ValidateLockedPayload checks an already-decoded payload.
func ValidateLockedPayload(payload *types.LockedPayload) error {
	if payload == nil {
		return pkgerrors.New(pkgerrors.CodeLockedPayloadCorrupt, "locked payload missing")
	}
	if payload.Kind != "certificate" {
		return pkgerrors.New(pkgerrors.CodeLockedPayloadCorrupt,
			"locked payload kind "+payload.Kind+" is not a certificate").
			WithDetails(map[string]any{"kind": payload.Kind})
	}
	if payload.Version < 1 || payload.Version > types.LockedPayloadVersion {
		return pkgerrors.New(pkgerrors.CodeLockedPayloadCorrupt, "locked payload version unsupported").
			WithDetails(map[string]any{"version": payload.Version})
	}
	if len(payload.Content) == 0 || !json.Valid(payload.Content) {
		return pkgerrors.New(pkgerrors.CodeLockedPayloadCorrupt, "locked payload content unreadable")
	}
	return nil
}
