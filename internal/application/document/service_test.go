package document_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/application/document"
	domain "github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/cache"
	infra "github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var issuedAt = time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *MockRepository
	renderer  *MockRenderer
	storage   *MockStorage
	templates *MockTemplates
	events    *MockPublisher
	metrics   *MockMetrics
	store     *cache.InMemoryIdempotencyStore
	svc       *document.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      new(MockRepository),
		renderer:  new(MockRenderer),
		storage:   new(MockStorage),
		templates: new(MockTemplates),
		events:    new(MockPublisher),
		metrics:   new(MockMetrics),
		store:     cache.NewInMemoryIdempotencyStore(),
	}
	t.Cleanup(func() { _ = f.store.Close() })

	assembler := domain.NewAssembler(
		domain.NewNumberGenerator(domain.NewCounterSource(0)),
		domain.WithClock(func() time.Time { return issuedAt }),
		domain.WithMaxTotal(decimal.NewFromInt(1_000_000_000)),
	)
	f.svc = document.NewService(document.Dependencies{
		Assembler:   assembler,
		Repository:  f.repo,
		Renderer:    f.renderer,
		Storage:     f.storage,
		Templates:   f.templates,
		Events:      f.events,
		Idempotency: f.store,
		Metrics:     f.metrics,
	}, document.Settings{
		Company:        domain.Company{Name: "บริษัท บิลลี่ จำกัด", BankAccount: "123-4-56789-0"},
		DefaultTaxRate: decimal.RequireFromString("0.07"),
		MaxAmount:      decimal.NewFromInt(1_000_000_000),
		IdempotencyTTL: time.Hour,
	}, zap.NewNop())

	f.metrics.On("RecordRender", mock.Anything, "mock", mock.Anything).Maybe()
	return f
}

// expectRender sets up a successful render and store
func (f *fixture) expectRender() {
	f.templates.On("Render", mock.Anything, mock.AnythingOfType("*printing.View")).Return("<html>doc</html>", nil)
	f.renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *infra.RenderRequest) bool {
		return req.HTML == "<html>doc</html>" && req.View != nil
	})).Return(&infra.RenderResult{PDFData: []byte("%PDF-1.4 test"), PageCount: 1}, nil)
	f.storage.On("Store", mock.Anything, mock.AnythingOfType("*printing.StoreRequest")).
		Return(&infra.StoreResult{Key: "2025/01/doc.pdf", Size: 13}, nil)
}

func (f *fixture) captureSave() *[]*domain.Record {
	saved := new([]*domain.Record)
	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*saved = append(*saved, args.Get(1).(*domain.Record))
	})
	return saved
}

func (f *fixture) capturePublish() *[]shared.DomainEvent {
	published := new([]shared.DomainEvent)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		*published = append(*published, args.Get(1).([]shared.DomainEvent)...)
	})
	return published
}

func item(desc, qty, price string) document.ItemInput {
	return document.ItemInput{Description: desc, Qty: json.Number(qty), Price: json.Number(price)}
}

func generateRequest(docType string, items ...document.ItemInput) document.GenerateRequest {
	return document.GenerateRequest{
		DocumentType:    docType,
		CustomerName:    "บริษัท ลูกค้า จำกัด",
		CustomerEmail:   "billing@example.co.th",
		CustomerAddress: "99 ถนนสุขุมวิท กรุงเทพฯ 10110",
		Items:           items,
	}
}

// =============================================================================
// Generate
// =============================================================================

func TestService_Generate_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		docType  string
		items    []document.ItemInput
		prefix   string
		subtotal string
		tax      string
		total    string
	}{
		{
			name:     "invoice",
			docType:  "invoice",
			items:    []document.ItemInput{item("Website development", "1", "50000"), item("Monthly maintenance", "12", "5000")},
			prefix:   "INV-",
			subtotal: "110000.00",
			tax:      "7700.00",
			total:    "117700.00",
		},
		{
			name:     "quotation",
			docType:  "quotation",
			items:    []document.ItemInput{item("Mobile app", "1", "75000")},
			prefix:   "QT-",
			subtotal: "75000.00",
			tax:      "5250.00",
			total:    "80250.00",
		},
		{
			name:     "receipt",
			docType:  "receipt",
			items:    []document.ItemInput{item("Consulting", "1", "30000")},
			prefix:   "REC-",
			subtotal: "30000.00",
			tax:      "2100.00",
			total:    "32100.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectRender()
			saved := f.captureSave()
			published := f.capturePublish()

			resp, err := f.svc.Generate(context.Background(), generateRequest(tt.docType, tt.items...))
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(resp.DocumentNo, tt.prefix), resp.DocumentNo)
			assert.Equal(t, tt.docType, resp.DocumentType)
			assert.Equal(t, "generated", resp.Status)
			assert.Equal(t, tt.subtotal, resp.Subtotal)
			assert.Equal(t, tt.tax, resp.TaxAmount)
			assert.Equal(t, tt.total, resp.Total)
			assert.Equal(t, "0.07", resp.TaxRate)
			assert.Equal(t, "/api/v1/documents/"+resp.ID+"/pdf", resp.DownloadURL)
			assert.Equal(t, issuedAt, resp.CreatedAt)
			assert.False(t, resp.Replayed)

			require.Len(t, *saved, 1)
			record := (*saved)[0]
			assert.Equal(t, domain.StatusGenerated, record.Status)
			assert.Equal(t, "2025/01/doc.pdf", record.FileKey)
			assert.Equal(t, "บริษัท บิลลี่ จำกัด", record.Company.Name)

			require.Len(t, *published, 1)
			assert.Equal(t, domain.EventTypeGenerated, (*published)[0].EventType())
			event := (*published)[0].(*domain.GeneratedEvent)
			assert.Equal(t, tt.total, event.Total)
			assert.Equal(t, domain.LanguageThai, event.Language)
		})
	}
}

func TestService_Generate_StoresUnderDocumentID(t *testing.T) {
	f := newFixture(t)
	f.templates.On("Render", mock.Anything, mock.Anything).Return("<html/>", nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: []byte("%PDF")}, nil)
	var storeReq *infra.StoreRequest
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Key: "k", Size: 4}, nil).
		Run(func(args mock.Arguments) { storeReq = args.Get(1).(*infra.StoreRequest) })
	f.captureSave()
	f.capturePublish()

	resp, err := f.svc.Generate(context.Background(), generateRequest("receipt", item("x", "1", "1")))
	require.NoError(t, err)
	require.NotNil(t, storeReq)
	assert.Equal(t, resp.ID, storeReq.DocumentID.String())
	assert.Equal(t, issuedAt, storeReq.CreatedAt)
	assert.Equal(t, []byte("%PDF"), storeReq.PDFData)
}

func TestService_Generate_TaxRate(t *testing.T) {
	f := newFixture(t)
	f.expectRender()
	f.captureSave()
	f.capturePublish()

	req := generateRequest("invoice", item("Service", "1", "1000"))
	rate := decimal.RequireFromString("0.10")
	req.TaxRate = &rate

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "100.00", resp.TaxAmount)
	assert.Equal(t, "1100.00", resp.Total)
	assert.Equal(t, "0.1", resp.TaxRate)
}

func TestService_Generate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		req    document.GenerateRequest
		target any
	}{
		{"invalid document type", generateRequest("credit_note", item("x", "1", "1")), new(*domain.InvalidDocumentTypeError)},
		{"empty items", generateRequest("invoice"), new(*domain.EmptyItemListError)},
		{"bad quantity", generateRequest("invoice", item("x", "0", "1")), new(*domain.InvalidLineItemError)},
		{"over the limit", generateRequest("invoice", item("x", "1", "1000000000")), new(*domain.AmountLimitError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.metrics.On("RecordFailure", mock.Anything, tt.req.DocumentType, "validate").Once()

			resp, err := f.svc.Generate(context.Background(), tt.req)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.target)

			var domainErr *shared.DomainError
			assert.ErrorAs(t, err, &domainErr)

			f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			f.metrics.AssertExpectations(t)
		})
	}
}

func TestService_Generate_RenderFailure(t *testing.T) {
	f := newFixture(t)
	f.templates.On("Render", mock.Anything, mock.Anything).Return("<html/>", nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderFailed, "chrome crashed", nil))
	saved := f.captureSave()
	published := f.capturePublish()

	_, err := f.svc.Generate(context.Background(), generateRequest("invoice", item("x", "1", "100")))
	require.Error(t, err)
	assert.True(t, infra.IsRenderErrorCode(err, infra.ErrCodeRenderFailed))
	assert.Contains(t, err.Error(), "render INV-000001")

	require.Len(t, *saved, 1)
	assert.Equal(t, domain.StatusFailed, (*saved)[0].Status)
	assert.Empty(t, (*saved)[0].FileKey)

	require.Len(t, *published, 1)
	failed := (*published)[0].(*domain.RenderFailedEvent)
	assert.Equal(t, "INV-000001", failed.Number)
	assert.Contains(t, failed.Reason, "chrome crashed")

	f.storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestService_Generate_TemplateFailure(t *testing.T) {
	f := newFixture(t)
	f.templates.On("Render", mock.Anything, mock.Anything).Return("", errors.New("template: bad"))
	f.captureSave()
	f.capturePublish()

	_, err := f.svc.Generate(context.Background(), generateRequest("invoice", item("x", "1", "100")))
	require.Error(t, err)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestService_Generate_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.templates.On("Render", mock.Anything, mock.Anything).Return("<html/>", nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: []byte("%PDF")}, nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
	f.metrics.On("RecordFailure", mock.Anything, "receipt", "store").Once()
	saved := f.captureSave()

	_, err := f.svc.Generate(context.Background(), generateRequest("receipt", item("x", "1", "100")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.Len(t, *saved, 1)
	assert.Equal(t, domain.StatusFailed, (*saved)[0].Status)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.metrics.AssertExpectations(t)
}

func TestService_Generate_PersistFailureRemovesPDF(t *testing.T) {
	f := newFixture(t)
	f.expectRender()
	f.repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.storage.On("Delete", mock.Anything, "2025/01/doc.pdf").Return(nil).Once()
	f.metrics.On("RecordFailure", mock.Anything, "invoice", "persist").Once()

	_, err := f.svc.Generate(context.Background(), generateRequest("invoice", item("x", "1", "100")))
	require.Error(t, err)
	f.storage.AssertExpectations(t)
	f.metrics.AssertExpectations(t)
}

func TestService_Generate_WithoutOptionalCollaborators(t *testing.T) {
	repo := new(MockRepository)
	renderer := new(MockRenderer)
	storage := new(MockStorage)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(req *infra.RenderRequest) bool {
		return req.HTML == "" && req.View != nil && req.View.Number == "QT-000001"
	})).Return(&infra.RenderResult{PDFData: []byte("%PDF")}, nil)
	storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Key: "k", Size: 4}, nil)

	svc := document.NewService(document.Dependencies{
		Assembler:  domain.NewAssembler(domain.NewNumberGenerator(domain.NewCounterSource(0))),
		Repository: repo,
		Renderer:   renderer,
		Storage:    storage,
	}, document.Settings{}, nil)

	req := generateRequest("quotation", item("x", "1", "100"))
	req.IdempotencyKey = "ignored-without-store"
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "QT-000001", resp.DocumentNo)
}

// =============================================================================
// Idempotency
// =============================================================================

func TestService_Generate_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	f.expectRender()
	saved := f.captureSave()
	f.capturePublish()
	f.metrics.On("RecordReplay", mock.Anything, "invoice").Once()
	ctx := context.Background()

	req := generateRequest("invoice", item("Website development", "1", "50000"))
	req.IdempotencyKey = "order-42"

	first, err := f.svc.Generate(ctx, req)
	require.NoError(t, err)
	f.repo.On("FindByID", mock.Anything, uuid.MustParse(first.ID)).Return((*saved)[0], nil)

	second, err := f.svc.Generate(ctx, req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.DocumentNo, second.DocumentNo)
	assert.Equal(t, first.Total, second.Total)
	f.renderer.AssertNumberOfCalls(t, "Render", 1)
	f.metrics.AssertExpectations(t)
}

func TestService_Generate_IdempotencyKeyInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claimed, _, err := f.store.Claim(ctx, "generate:busy", time.Hour)
	require.NoError(t, err)
	require.True(t, claimed)

	req := generateRequest("invoice", item("x", "1", "1"))
	req.IdempotencyKey = "busy"
	_, err = f.svc.Generate(ctx, req)
	assert.ErrorIs(t, err, shared.ErrIdempotencyKeyInFlight)
}

func TestService_Generate_FailureReleasesKey(t *testing.T) {
	f := newFixture(t)
	f.templates.On("Render", mock.Anything, mock.Anything).Return("<html/>", nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderTimeout, "timeout", nil)).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).
		Return(&infra.RenderResult{PDFData: []byte("%PDF")}, nil).Once()
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Key: "k", Size: 4}, nil)
	f.captureSave()
	f.capturePublish()
	ctx := context.Background()

	req := generateRequest("invoice", item("x", "1", "1"))
	req.IdempotencyKey = "retry-me"

	_, err := f.svc.Generate(ctx, req)
	require.Error(t, err)

	resp, err := f.svc.Generate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", resp.DocumentNo, "the failed attempt consumed a number")
	assert.False(t, resp.Replayed)
}

// =============================================================================
// Calculate
// =============================================================================

func TestService_Calculate(t *testing.T) {
	f := newFixture(t)

	t.Run("totals preview", func(t *testing.T) {
		resp, err := f.svc.Calculate(context.Background(), document.CalculateRequest{
			Items: []document.ItemInput{item("Website development", "1", "50000"), item("Monthly maintenance", "12", "5000")},
		})
		require.NoError(t, err)
		assert.Equal(t, "110000.00", resp.Subtotal)
		assert.Equal(t, "7700.00", resp.TaxAmount)
		assert.Equal(t, "117700.00", resp.Total)
		assert.Equal(t, "หนึ่งแสนหนึ่งหมื่นเจ็ดพันเจ็ดร้อยบาทถ้วน", resp.AmountInWords)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "60000.00", resp.Items[1].Amount)
	})

	t.Run("half up on the aggregate", func(t *testing.T) {
		rate := decimal.RequireFromString("0.07")
		resp, err := f.svc.Calculate(context.Background(), document.CalculateRequest{
			Items:   []document.ItemInput{item("a", "1", "0.5")},
			TaxRate: &rate,
		})
		require.NoError(t, err)
		assert.Equal(t, "0.04", resp.TaxAmount)
		assert.Equal(t, "0.54", resp.Total)
	})

	t.Run("empty items", func(t *testing.T) {
		_, err := f.svc.Calculate(context.Background(), document.CalculateRequest{})
		var emptyErr *domain.EmptyItemListError
		assert.ErrorAs(t, err, &emptyErr)
	})

	t.Run("invalid item", func(t *testing.T) {
		_, err := f.svc.Calculate(context.Background(), document.CalculateRequest{
			Items: []document.ItemInput{item("ok", "1", "1"), item("bad", "1", "-5")},
		})
		var itemErr *domain.InvalidLineItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, 1, itemErr.Index)
		assert.Equal(t, domain.FieldPrice, itemErr.Field)
	})

	t.Run("over the limit", func(t *testing.T) {
		_, err := f.svc.Calculate(context.Background(), document.CalculateRequest{
			Items: []document.ItemInput{item("big", "1000", "1000000")},
		})
		var limitErr *domain.AmountLimitError
		assert.ErrorAs(t, err, &limitErr)
	})

	t.Run("numbers are not consumed", func(t *testing.T) {
		f.expectRender()
		f.captureSave()
		f.capturePublish()
		resp, err := f.svc.Generate(context.Background(), generateRequest("invoice", item("x", "1", "1")))
		require.NoError(t, err)
		assert.Equal(t, "INV-000001", resp.DocumentNo)
	})
}

func TestService_Calculate_ZeroDefaultRate(t *testing.T) {
	svc := document.NewService(document.Dependencies{
		Assembler: domain.NewAssembler(domain.NewNumberGenerator(domain.NewCounterSource(0))),
	}, document.Settings{DefaultTaxRate: decimal.Zero}, nil)

	resp, err := svc.Calculate(context.Background(), document.CalculateRequest{
		Items: []document.ItemInput{item("exempt service", "2", "1500")},
	})
	require.NoError(t, err)
	assert.Equal(t, "3000.00", resp.Subtotal)
	assert.Equal(t, "0.00", resp.TaxAmount)
	assert.Equal(t, "3000.00", resp.Total)
	assert.Equal(t, "0", resp.TaxRate)
}

// =============================================================================
// Queries
// =============================================================================

func storedRecord(status domain.Status) *domain.Record {
	return &domain.Record{
		Snapshot: domain.Snapshot{
			ID:     uuid.MustParse("5d2f9c4e-8a3b-4c1d-9e2f-7a6b5c4d3e2f"),
			Type:   domain.DocumentTypeInvoice,
			Number: "INV-000007",
			Customer: domain.Customer{
				Name:    "Acme",
				Email:   "a@example.com",
				Address: "Bangkok",
				TaxID:   "1101700207030",
			},
			Items:     []domain.RawLineItem{{Description: "Design", Quantity: "2", Price: "1500.50"}},
			Subtotal:  decimal.RequireFromString("3001"),
			TaxAmount: decimal.RequireFromString("210.07"),
			Total:     decimal.RequireFromString("3211.07"),
			TaxRate:   decimal.RequireFromString("0.07"),
			Language:  domain.LanguageEnglish,
			Note:      "Net 30",
			CreatedAt: issuedAt,
		},
		Status:   status,
		FileKey:  "2025/01/5d2f9c4e-8a3b-4c1d-9e2f-7a6b5c4d3e2f.pdf",
		FileSize: 2048,
	}
}

func TestService_Get(t *testing.T) {
	f := newFixture(t)
	record := storedRecord(domain.StatusGenerated)
	f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
	f.repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	resp, err := f.svc.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-000007", resp.DocumentNo)
	assert.Equal(t, "3001.00", resp.Subtotal)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "Net 30", resp.Note)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, "1101700207030", resp.Customer.TaxID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "3001.00", resp.Items[0].Amount)
	assert.Equal(t, 1, resp.Items[0].No)

	_, err = f.svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_GetByNumber(t *testing.T) {
	f := newFixture(t)
	record := storedRecord(domain.StatusGenerated)
	f.repo.On("FindByNumber", mock.Anything, "INV-000007").Return(record, nil)

	resp, err := f.svc.GetByNumber(context.Background(), "INV-000007")
	require.NoError(t, err)
	assert.Equal(t, record.ID.String(), resp.ID)

	_, err = f.svc.GetByNumber(context.Background(), "not a number")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.repo.AssertNumberOfCalls(t, "FindByNumber", 1)

	misfiled := storedRecord(domain.StatusGenerated)
	misfiled.Type = domain.DocumentTypeReceipt
	f.repo.On("FindByNumber", mock.Anything, "INV-000008").Return(misfiled, nil)
	_, err = f.svc.GetByNumber(context.Background(), "INV-000008")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_ReadsRejectTamperedTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	record := storedRecord(domain.StatusGenerated)
	record.Total = decimal.RequireFromString("9999.99")
	f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
	f.repo.On("FindByNumber", mock.Anything, record.Number).Return(record, nil)

	_, err := f.svc.Get(ctx, record.ID)
	var mismatch *domain.TotalsMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "INV-000007", mismatch.Number)

	_, err = f.svc.GetByNumber(ctx, record.Number)
	assert.ErrorIs(t, err, domain.ErrTotalsMismatch)

	_, err = f.svc.GetPDF(ctx, record.ID)
	assert.ErrorIs(t, err, domain.ErrTotalsMismatch)
	f.storage.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_GetPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("streams the stored file", func(t *testing.T) {
		f := newFixture(t)
		record := storedRecord(domain.StatusGenerated)
		f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		f.storage.On("Get", mock.Anything, record.FileKey).Return(io.NopCloser(strings.NewReader("%PDF")), nil)

		file, err := f.svc.GetPDF(ctx, record.ID)
		require.NoError(t, err)
		defer file.Content.Close()
		assert.Equal(t, "INV-000007.pdf", file.FileName)
		assert.Equal(t, int64(2048), file.Size)
		data, _ := io.ReadAll(file.Content)
		assert.Equal(t, "%PDF", string(data))
	})

	t.Run("failed documents have no PDF", func(t *testing.T) {
		f := newFixture(t)
		record := storedRecord(domain.StatusFailed)
		f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)

		_, err := f.svc.GetPDF(ctx, record.ID)
		assert.ErrorIs(t, err, document.ErrNoPDF)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t)
		record := storedRecord(domain.StatusGenerated)
		f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		f.storage.On("Get", mock.Anything, record.FileKey).
			Return(nil, infra.NewRenderError(infra.ErrCodeNotFound, "PDF not found", nil))

		_, err := f.svc.GetPDF(ctx, record.ID)
		assert.ErrorIs(t, err, document.ErrNoPDF)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newFixture(t)
		record := storedRecord(domain.StatusGenerated)
		f.repo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		f.storage.On("Get", mock.Anything, record.FileKey).Return(nil, errors.New("s3 unavailable"))

		_, err := f.svc.GetPDF(ctx, record.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, document.ErrNoPDF)
	})
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	records := []domain.Record{*storedRecord(domain.StatusGenerated), *storedRecord(domain.StatusFailed)}
	f.repo.On("List", mock.Anything, mock.MatchedBy(func(filter domain.ListFilter) bool {
		return filter.Page == 2 &&
			filter.PageSize == 2 &&
			filter.OrderBy == "document_no" &&
			filter.OrderDir == "asc" &&
			filter.Search == "acme" &&
			filter.DocumentType == domain.DocumentTypeInvoice &&
			filter.Filters["status"] == "generated"
	})).Return(records, int64(5), nil)

	resp, err := f.svc.List(context.Background(), document.ListRequest{
		Page:         2,
		PageSize:     2,
		OrderBy:      "document_no",
		OrderDir:     "asc",
		Search:       "acme",
		DocumentType: "invoice",
		Status:       "generated",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	require.Len(t, resp.Items, 2)
	assert.Nil(t, resp.Items[0].Customer, "list rows are summaries")
	assert.NotEmpty(t, resp.Items[0].DownloadURL)
	assert.Empty(t, resp.Items[1].DownloadURL)
}

func TestService_List_Defaults(t *testing.T) {
	f := newFixture(t)
	f.repo.On("List", mock.Anything, mock.MatchedBy(func(filter domain.ListFilter) bool {
		return filter.Page == 1 && filter.PageSize == 20 && filter.OrderBy == "created_at" && filter.DocumentType == ""
	})).Return([]domain.Record{}, int64(0), nil)

	resp, err := f.svc.List(context.Background(), document.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = f.svc.List(context.Background(), document.ListRequest{DocumentType: "memo"})
	var typeErr *domain.InvalidDocumentTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestService_DocumentTypes(t *testing.T) {
	f := newFixture(t)
	types := f.svc.DocumentTypes()
	require.Len(t, types, 3)
	assert.Equal(t, document.DocumentTypeResponse{
		Code:     "quotation",
		Prefix:   "QT",
		Name:     "Quotation",
		NameThai: "ใบเสนอราคา",
	}, types[0])
	assert.Equal(t, "INV", types[1].Prefix)
	assert.Equal(t, "ใบเสร็จรับเงิน", types[2].NameThai)
}
