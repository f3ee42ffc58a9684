package enums

import "fmt"

// DocumentClass distinguishes the commercial document families the engine
// numbers and renders.
type DocumentClass string

const (
	DocumentClassInvoice     DocumentClass = "invoice"
	DocumentClassQuote       DocumentClass = "quote"
	DocumentClassCertificate DocumentClass = "certificate"
)

var validDocumentClasses = []DocumentClass{
	DocumentClassInvoice,
	DocumentClassQuote,
	DocumentClassCertificate,
}

// String implements fmt.Stringer.
func (c DocumentClass) String() string {
	return string(c)
}

// IsValid reports whether the class is recognized.
func (c DocumentClass) IsValid() bool {
	for _, candidate := range validDocumentClasses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseDocumentClass converts a raw string into a DocumentClass.
func ParseDocumentClass(value string) (DocumentClass, error) {
	for _, candidate := range validDocumentClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document class %q", value)
}

// CounterName returns the business-scoped counter this class allocates from.
func (c DocumentClass) CounterName() string {
	return string(c) + "_number"
}

// ReferencePrefix returns the short prefix used in formatted references.
func (c DocumentClass) ReferencePrefix() string {
	switch c {
	case DocumentClassInvoice:
		return "INV"
	case DocumentClassQuote:
		return "Q"
	case DocumentClassCertificate:
		return "CERT"
	default:
		return "DOC"
	}
}
