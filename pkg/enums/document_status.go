package enums

import "fmt"

// DocumentStatus tracks the mutable lifecycle state of a document. Line items,
// totals, and snapshots never change after creation; only status moves.
type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusIssued   DocumentStatus = "issued"
	DocumentStatusPaid     DocumentStatus = "paid"
	DocumentStatusAccepted DocumentStatus = "accepted"
	DocumentStatusDeclined DocumentStatus = "declined"
	DocumentStatusExpired  DocumentStatus = "expired"
	DocumentStatusVoid     DocumentStatus = "void"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusDraft,
	DocumentStatusIssued,
	DocumentStatusPaid,
	DocumentStatusAccepted,
	DocumentStatusDeclined,
	DocumentStatusExpired,
	DocumentStatusVoid,
}

// String implements fmt.Stringer.
func (s DocumentStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is recognized.
func (s DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts a raw string into a DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}

// transitions maps each class to its allowed status moves.
var transitions = map[DocumentClass]map[DocumentStatus][]DocumentStatus{
	DocumentClassInvoice: {
		DocumentStatusDraft:  {DocumentStatusIssued, DocumentStatusVoid},
		DocumentStatusIssued: {DocumentStatusPaid, DocumentStatusVoid},
	},
	DocumentClassQuote: {
		DocumentStatusDraft:  {DocumentStatusIssued, DocumentStatusVoid},
		DocumentStatusIssued: {DocumentStatusAccepted, DocumentStatusDeclined, DocumentStatusExpired, DocumentStatusVoid},
	},
	DocumentClassCertificate: {
		DocumentStatusIssued: {DocumentStatusVoid},
	},
}

// CanTransition reports whether a document of the given class may move from
// one status to another.
func CanTransition(class DocumentClass, from, to DocumentStatus) bool {
	allowed, ok := transitions[class][from]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if candidate == to {
			return true
		}
	}
	return false
}

// InitialStatus returns the status a freshly created document starts in.
// Certificates are issued at creation; invoices and quotes start as drafts.
func InitialStatus(class DocumentClass) DocumentStatus {
	if class == DocumentClassCertificate {
		return DocumentStatusIssued
	}
	return DocumentStatusDraft
}
