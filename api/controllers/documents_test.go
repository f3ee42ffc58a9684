package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorton/tradedocs-backend/api/middleware"
	"github.com/calebmorton/tradedocs-backend/internal/documents"
	"github.com/calebmorton/tradedocs-backend/internal/render"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/pagination"
)

type stubDocumentsService struct {
	create       func(ctx context.Context, input documents.CreateDocumentInput) (*models.Document, error)
	updateStatus func(ctx context.Context, input documents.UpdateStatusInput) (*models.Document, error)
	reissue      func(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error)
}

func (s *stubDocumentsService) CreateDocument(ctx context.Context, input documents.CreateDocumentInput) (*models.Document, error) {
	return s.create(ctx, input)
}

func (s *stubDocumentsService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Document, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
}

func (s *stubDocumentsService) List(ctx context.Context, businessID uuid.UUID, filters documents.ListFilters, params pagination.Params) (*documents.DocumentPage, error) {
	return &documents.DocumentPage{}, nil
}

func (s *stubDocumentsService) UpdateStatus(ctx context.Context, input documents.UpdateStatusInput) (*models.Document, error) {
	return s.updateStatus(ctx, input)
}

func (s *stubDocumentsService) RenderDocument(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error) {
	panic("not implemented")
}

func (s *stubDocumentsService) ReissueCertificate(ctx context.Context, businessID, id uuid.UUID) (render.Artifact, error) {
	return s.reissue(ctx, businessID, id)
}

func sampleDocument(businessID uuid.UUID) *models.Document {
	return &models.Document{
		ID:              uuid.New(),
		BusinessID:      businessID,
		Class:           enums.DocumentClassInvoice,
		SequenceNumber:  7,
		Reference:       "INV-2026-0007",
		Status:          enums.DocumentStatusDraft,
		Currency:        enums.CurrencyGBP,
		IssuedAt:        time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		DiscountPercent: "0",
		SubtotalCents:   12000,
		TaxTotalCents:   2400,
		GrandTotalCents: 14400,
		BalanceDueCents: 14400,
	}
}

func serveWithBusiness(handler http.HandlerFunc, method, target, businessID string, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	switch method {
	case http.MethodPost:
		r.Post("/api/v1/documents", handler)
		r.Post("/api/v1/documents/{documentId}/reissue", handler)
	case http.MethodPatch:
		r.Patch("/api/v1/documents/{documentId}/status", handler)
	}

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if businessID != "" {
		req = req.WithContext(middleware.WithBusinessID(req.Context(), businessID))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateDocumentHappyPath(t *testing.T) {
	t.Parallel()

	businessID := uuid.New()
	var captured documents.CreateDocumentInput
	svc := &stubDocumentsService{
		create: func(_ context.Context, input documents.CreateDocumentInput) (*models.Document, error) {
			captured = input
			return sampleDocument(businessID), nil
		},
	}

	body := `{
		"class": "invoice",
		"items": [
			{"description": "Boiler service", "quantity": "1", "unit_price": "95.00", "tax_percent": "20"},
			{"description": "Parts", "quantity": "2", "unit_price": "12.50", "tax_percent": "20"}
		],
		"customer": {"name": "D. Okafor", "address": {"line1": "12 Mill Road", "postal_code": "LS2 8QT"}}
	}`

	rec := serveWithBusiness(CreateDocument(svc, nil), http.MethodPost, "/api/v1/documents", businessID.String(), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, businessID, captured.BusinessID)
	assert.Equal(t, enums.DocumentClassInvoice, captured.Class)
	require.Len(t, captured.Items, 2)
	assert.Equal(t, "Boiler service", captured.Items[0].Description)
	assert.Equal(t, int64(9500), captured.Items[0].UnitPrice.MinorUnits())
	require.NotNil(t, captured.Customer.NewForm)
	assert.Equal(t, "D. Okafor", captured.Customer.NewForm.Name)

	var envelope struct {
		Data documentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INV-2026-0007", envelope.Data.Reference)
	assert.Equal(t, "144.00", envelope.Data.Totals.GrandTotal)
}

func TestCreateDocumentRejectsBadMoney(t *testing.T) {
	t.Parallel()

	svc := &stubDocumentsService{
		create: func(context.Context, documents.CreateDocumentInput) (*models.Document, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	body := `{
		"class": "invoice",
		"items": [{"description": "x", "quantity": "1", "unit_price": "95.001"}],
		"customer": {"name": "A"}
	}`

	rec := serveWithBusiness(CreateDocument(svc, nil), http.MethodPost, "/api/v1/documents", uuid.NewString(), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDocumentRequiresBusinessContext(t *testing.T) {
	t.Parallel()

	svc := &stubDocumentsService{
		create: func(context.Context, documents.CreateDocumentInput) (*models.Document, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := serveWithBusiness(CreateDocument(svc, nil), http.MethodPost, "/api/v1/documents", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusMapsStateConflict(t *testing.T) {
	t.Parallel()

	svc := &stubDocumentsService{
		updateStatus: func(_ context.Context, input documents.UpdateStatusInput) (*models.Document, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invoice cannot move from paid to void")
		},
	}

	target := "/api/v1/documents/" + uuid.NewString() + "/status"
	rec := serveWithBusiness(UpdateDocumentStatus(svc, nil), http.MethodPatch, target, uuid.NewString(), `{"status": "void"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "STATE_CONFLICT", envelope.Error.Code)
}

func TestReissueStreamsArtifact(t *testing.T) {
	t.Parallel()

	svc := &stubDocumentsService{
		reissue: func(_ context.Context, _, _ uuid.UUID) (render.Artifact, error) {
			return render.Artifact{ContentType: "application/pdf", Data: []byte("%PDF-stub")}, nil
		},
	}

	target := "/api/v1/documents/" + uuid.NewString() + "/reissue"
	rec := serveWithBusiness(ReissueCertificate(svc, nil), http.MethodPost, target, uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-stub", rec.Body.String())
}
