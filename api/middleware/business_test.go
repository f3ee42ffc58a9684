package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBusinessContextRequiresHeader(t *testing.T) {
	t.Parallel()

	mw := BusinessContext(nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without business header")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusinessContextRejectsMalformedID(t *testing.T) {
	t.Parallel()

	mw := BusinessContext(nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with malformed business id")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("X-Business-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusinessContextAttachesID(t *testing.T) {
	t.Parallel()

	businessID := uuid.NewString()
	mw := BusinessContext(nil)
	var seen string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = BusinessIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("X-Business-Id", businessID)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, businessID, seen)
}
