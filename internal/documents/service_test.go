package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/calebmorton/tradedocs-backend/internal/businesses"
	"github.com/calebmorton/tradedocs-backend/internal/customers"
	"github.com/calebmorton/tradedocs-backend/internal/render"
	"github.com/calebmorton/tradedocs-backend/internal/sequencer"
	"github.com/calebmorton/tradedocs-backend/internal/snapshot"
	"github.com/calebmorton/tradedocs-backend/internal/totals"
	"github.com/calebmorton/tradedocs-backend/pkg/db"
	"github.com/calebmorton/tradedocs-backend/pkg/db/models"
	"github.com/calebmorton/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/money"
	"github.com/calebmorton/tradedocs-backend/pkg/pagination"
	"github.com/calebmorton/tradedocs-backend/pkg/types"
)

type stubRenderer struct {
	views []render.View
}

func (r *stubRenderer) Render(_ context.Context, view render.View) (render.Artifact, error) {
	r.views = append(r.views, view)
	return render.Artifact{ContentType: "text/html", Data: []byte(view.Reference)}, nil
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	renderer *stubRenderer
	business *models.Business
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Business{},
		&models.Customer{},
		&models.Counter{},
		&models.Document{},
		&models.DocumentLineItem{},
	))

	business := &models.Business{
		ID:               uuid.New(),
		Name:             "Morton Heating Ltd",
		Email:            "office@mortonheating.example",
		Address:          types.Address{Line1: "4 Forge Lane", City: "Leeds", PostalCode: "LS1 4AB"},
		DefaultTerms:     "Payment within terms. Thank you for your business.",
		PaymentTermsDays: 14,
	}
	require.NoError(t, conn.Create(business).Error)

	seq, err := sequencer.NewService(sequencer.NewRepository(conn), 0)
	require.NoError(t, err)

	renderer := &stubRenderer{}
	svc, err := NewService(
		db.NewWithConn(conn),
		NewRepository(conn),
		businesses.NewRepository(conn),
		customers.NewRepository(conn),
		seq,
		renderer,
	)
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, renderer: renderer, business: business}
}

func (f *fixture) pinClock(t *testing.T, at time.Time) {
	t.Helper()
	f.svc.(*service).now = func() time.Time { return at }
}

func newCustomerInput() CustomerInput {
	return CustomerInput{NewForm: &snapshot.CustomerForm{
		Name:    "D. Okafor",
		Email:   "d.okafor@example.com",
		Address: types.Address{Line1: "12 Mill Road", City: "Leeds", PostalCode: "LS2 8QT"},
	}}
}

func invoiceInput(businessID uuid.UUID) CreateDocumentInput {
	return CreateDocumentInput{
		BusinessID: businessID,
		Class:      enums.DocumentClassInvoice,
		Items: []totals.LineItem{
			{Description: "Boiler service", Quantity: decimal.NewFromInt(1), UnitPrice: mustMoney("95.00"), TaxPercent: decimal.NewFromInt(20)},
			{Description: "Replacement thermocouple", Quantity: decimal.NewFromInt(2), UnitPrice: mustMoney("12.50"), TaxPercent: decimal.NewFromInt(20)},
		},
		Customer: newCustomerInput(),
	}
}

func mustMoney(value string) money.Money {
	m, err := money.FromString(value)
	if err != nil {
		panic(err)
	}
	return m
}

func TestCreateInvoiceNumbersAndTotals(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	issued := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	f.pinClock(t, issued)

	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	assert.Equal(t, int64(1), doc.SequenceNumber)
	assert.Equal(t, "INV-2026-0001", doc.Reference)
	assert.Equal(t, enums.DocumentStatusDraft, doc.Status)
	assert.Equal(t, enums.CurrencyGBP, doc.Currency)

	// 95.00 + 25.00 subtotal, 20% VAT throughout
	assert.Equal(t, int64(12000), doc.SubtotalCents)
	assert.Equal(t, int64(2400), doc.TaxTotalCents)
	assert.Equal(t, int64(14400), doc.GrandTotalCents)
	assert.Equal(t, int64(14400), doc.BalanceDueCents)

	// due date follows business payment terms
	require.NotNil(t, doc.ExpiryOrDueAt)
	assert.Equal(t, issued.AddDate(0, 0, 14), doc.ExpiryOrDueAt.UTC())

	// persisted with ordered line items
	stored, err := f.svc.GetByID(context.Background(), f.business.ID, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 1, stored.Items[0].Position)
	assert.Equal(t, "Boiler service", stored.Items[0].Description)
	assert.Equal(t, int64(9500), stored.Items[0].LineTotalCents)
}

func TestCreateAssignsSequencesPerClass(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	first, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)
	second, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	quoteIn := invoiceInput(f.business.ID)
	quoteIn.Class = enums.DocumentClassQuote
	quote, err := f.svc.CreateDocument(context.Background(), quoteIn)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.SequenceNumber)
	assert.Equal(t, int64(2), second.SequenceNumber)
	assert.Equal(t, int64(1), quote.SequenceNumber)
	assert.Contains(t, quote.Reference, "Q-")
}

func TestCreateQuoteExpiresAfterValidityWindow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f.pinClock(t, issued)

	input := invoiceInput(f.business.ID)
	input.Class = enums.DocumentClassQuote
	doc, err := f.svc.CreateDocument(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, doc.ExpiryOrDueAt)
	assert.Equal(t, issued.AddDate(0, 0, 30), doc.ExpiryOrDueAt.UTC())
}

func TestCreateFailureLeavesCounterUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// valid create first, then one that fails inside the transaction
	_, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	require.NoError(t, f.conn.Migrator().DropTable(&models.DocumentLineItem{}))
	_, err = f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.Error(t, err)
	require.NoError(t, f.conn.AutoMigrate(&models.DocumentLineItem{}))

	// the failed attempt's reservation rolled back with it
	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.SequenceNumber)
}

func TestCreateQuickEntrySavesCustomer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	input := invoiceInput(f.business.ID)
	input.QuickEntry = true
	input.Customer = CustomerInput{
		NewForm: &snapshot.CustomerForm{Name: "Walk-in caller"},
		SaveNew: true,
	}

	doc, err := f.svc.CreateDocument(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, doc.CustomerID)
	assert.Equal(t, doc.CustomerID, doc.CustomerSnapshot.CustomerID)

	var saved models.Customer
	require.NoError(t, f.conn.Where("id = ?", *doc.CustomerID).First(&saved).Error)
	assert.Equal(t, "Walk-in caller", saved.Name)
	assert.Equal(t, f.business.ID, saved.BusinessID)
}

func TestCreateFullEntryRequiresAddress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	input := invoiceInput(f.business.ID)
	input.Customer = CustomerInput{NewForm: &snapshot.CustomerForm{Name: "No address"}}

	_, err := f.svc.CreateDocument(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateSnapshotSurvivesCustomerEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	stored := &models.Customer{
		ID:         uuid.New(),
		BusinessID: f.business.ID,
		Name:       "Original Name",
		Address:    types.Address{Line1: "1 Old Street", PostalCode: "OL1 1AA"},
	}
	require.NoError(t, f.conn.Create(stored).Error)

	input := invoiceInput(f.business.ID)
	input.Customer = CustomerInput{ExistingID: &stored.ID}
	doc, err := f.svc.CreateDocument(context.Background(), input)
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(stored).Update("name", "Renamed Later").Error)

	fetched, err := f.svc.GetByID(context.Background(), f.business.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original Name", fetched.CustomerSnapshot.Name)
}

func certificateInput(businessID uuid.UUID) CreateDocumentInput {
	input := invoiceInput(businessID)
	input.Class = enums.DocumentClassCertificate
	input.CertificateContent = json.RawMessage(`{"appliance":"Worcester 2000","outcome":"pass"}`)
	input.Preparer = types.PreparerIdentitySnapshot{DisplayName: "C. Morton", LicenseNumbers: "GasSafe 512345"}
	return input
}

func TestCreateCertificateIsIssuedWithLockedPayload(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), certificateInput(f.business.ID))
	require.NoError(t, err)

	assert.Equal(t, enums.DocumentStatusIssued, doc.Status)
	assert.Contains(t, doc.Reference, "CERT-")
	assert.Nil(t, doc.ExpiryOrDueAt)

	require.NotNil(t, doc.LockedPayload)
	assert.Equal(t, "certificate", doc.LockedPayload.Kind)
	assert.Equal(t, types.LockedPayloadVersion, doc.LockedPayload.Version)
	assert.Equal(t, f.business.Name, doc.LockedPayload.BusinessProfile.Name)
	assert.Equal(t, "C. Morton", doc.LockedPayload.PreparerIdentity.DisplayName)
}

func TestCreateCertificateRequiresContent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	input := certificateInput(f.business.ID)
	input.CertificateContent = nil
	_, err := f.svc.CreateDocument(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestReissueCertificateIgnoresProfileEdits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), certificateInput(f.business.ID))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(f.business).Update("name", "Rebranded Trading Ltd").Error)

	_, err = f.svc.ReissueCertificate(context.Background(), f.business.ID, doc.ID)
	require.NoError(t, err)

	require.Len(t, f.renderer.views, 1)
	view := f.renderer.views[0]
	assert.Equal(t, "Morton Heating Ltd", view.Business.Name)
	require.NotNil(t, view.Preparer)
	assert.Equal(t, "C. Morton", view.Preparer.DisplayName)
	assert.JSONEq(t, `{"appliance":"Worcester 2000","outcome":"pass"}`, string(view.CertificateContent))
}

func TestReissueRejectsNonCertificates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	_, err = f.svc.ReissueCertificate(context.Background(), f.business.ID, doc.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRenderInvoiceUsesLiveProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(f.business).Update("name", "Rebranded Trading Ltd").Error)

	_, err = f.svc.RenderDocument(context.Background(), f.business.ID, doc.ID)
	require.NoError(t, err)

	require.Len(t, f.renderer.views, 1)
	assert.Equal(t, "Rebranded Trading Ltd", f.renderer.views[0].Business.Name)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	issued, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		BusinessID: f.business.ID, DocumentID: doc.ID, NewStatus: enums.DocumentStatusIssued,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DocumentStatusIssued, issued.Status)

	// paid invoices are terminal
	_, err = f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		BusinessID: f.business.ID, DocumentID: doc.ID, NewStatus: enums.DocumentStatusPaid,
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		BusinessID: f.business.ID, DocumentID: doc.ID, NewStatus: enums.DocumentStatusVoid,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestUpdateStatusRejectsCrossClassMoves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		BusinessID: f.business.ID, DocumentID: doc.ID, NewStatus: enums.DocumentStatusAccepted,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestListPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		doc, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
		require.NoError(t, err)
		// spread created_at so the cursor ordering is deterministic
		require.NoError(t, f.conn.Model(doc).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	page, err := f.svc.List(context.Background(), f.business.ID, ListFilters{}, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, int64(5), page.Items[0].SequenceNumber)

	rest, err := f.svc.List(context.Background(), f.business.ID, ListFilters{}, pagination.Params{Limit: 3, Cursor: *page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 2)
	assert.Nil(t, rest.NextCursor)
	assert.Equal(t, int64(1), rest.Items[1].SequenceNumber)
}

func TestListFiltersByClassAndStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.CreateDocument(context.Background(), invoiceInput(f.business.ID))
	require.NoError(t, err)
	_, err = f.svc.CreateDocument(context.Background(), certificateInput(f.business.ID))
	require.NoError(t, err)

	cert := enums.DocumentClassCertificate
	page, err := f.svc.List(context.Background(), f.business.ID, ListFilters{Class: &cert}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, cert, page.Items[0].Class)

	draft := enums.DocumentStatusDraft
	page, err = f.svc.List(context.Background(), f.business.ID, ListFilters{Status: &draft}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, enums.DocumentClassInvoice, page.Items[0].Class)
}
