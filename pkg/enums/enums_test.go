package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentClass(t *testing.T) {
	t.Parallel()

	class, err := ParseDocumentClass("certificate")
	require.NoError(t, err)
	assert.Equal(t, DocumentClassCertificate, class)
	assert.Equal(t, "certificate_number", class.CounterName())
	assert.Equal(t, "CERT", class.ReferencePrefix())

	_, err = ParseDocumentClass("receipt")
	require.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	assert.True(t, CanTransition(DocumentClassInvoice, DocumentStatusDraft, DocumentStatusIssued))
	assert.True(t, CanTransition(DocumentClassInvoice, DocumentStatusIssued, DocumentStatusPaid))
	assert.False(t, CanTransition(DocumentClassInvoice, DocumentStatusPaid, DocumentStatusIssued))

	assert.True(t, CanTransition(DocumentClassQuote, DocumentStatusIssued, DocumentStatusAccepted))
	assert.False(t, CanTransition(DocumentClassQuote, DocumentStatusAccepted, DocumentStatusDeclined))

	// certificates exist only as issued records and can only be voided
	assert.Equal(t, DocumentStatusIssued, InitialStatus(DocumentClassCertificate))
	assert.True(t, CanTransition(DocumentClassCertificate, DocumentStatusIssued, DocumentStatusVoid))
	assert.False(t, CanTransition(DocumentClassCertificate, DocumentStatusIssued, DocumentStatusPaid))
}
