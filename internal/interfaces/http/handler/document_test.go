package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	documentapp "github.com/billydoc/backend/internal/application/document"
	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/billydoc/backend/internal/interfaces/http/dto"
	"github.com/billydoc/backend/internal/interfaces/http/middleware"
	"github.com/billydoc/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentService implements DocumentService for testing
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Generate(ctx context.Context, req documentapp.GenerateRequest) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) Calculate(ctx context.Context, req documentapp.CalculateRequest) (*documentapp.CalculateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.CalculateResponse), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id uuid.UUID) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) GetByNumber(ctx context.Context, number string) (*documentapp.DocumentResponse, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.DocumentResponse), args.Error(1)
}

func (m *MockDocumentService) GetPDF(ctx context.Context, id uuid.UUID) (*documentapp.PDFFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.PDFFile), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, req documentapp.ListRequest) (*documentapp.ListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documentapp.ListResponse), args.Error(1)
}

func (m *MockDocumentService) DocumentTypes() []documentapp.DocumentTypeResponse {
	args := m.Called()
	return args.Get(0).([]documentapp.DocumentTypeResponse)
}

// trackedBody records whether the handler closed the PDF stream
type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func setupDocumentRouter(t *testing.T) (*gin.Engine, *MockDocumentService) {
	t.Helper()
	svc := new(MockDocumentService)
	t.Cleanup(func() { svc.AssertExpectations(t) })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	r.Register(DocumentRoutes(NewDocumentHandler(svc)))
	r.Setup()
	return engine, svc
}

func doRequest(engine *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

const generateBody = `{
	"document_type": "invoice",
	"customer_name": "บริษัท ลูกค้า จำกัด",
	"customer_email": "billing@example.co.th",
	"customer_address": "99 ถนนสุขุมวิท กรุงเทพฯ 10110",
	"items": [
		{"description": "Website design", "qty": 1, "price": 50000},
		{"description": "Monthly maintenance", "qty": "12", "price": "5000"}
	],
	"language": "th"
}`

func invoiceResponse() *documentapp.DocumentResponse {
	return &documentapp.DocumentResponse{
		ID:           "0c7f2a3e-6b1d-4c8e-9a57-1f2e3d4c5b6a",
		DocumentNo:   "INV-000001",
		DocumentType: "invoice",
		Status:       string(document.StatusGenerated),
		Language:     "th",
		DownloadURL:  "/api/v1/documents/0c7f2a3e-6b1d-4c8e-9a57-1f2e3d4c5b6a/pdf",
		Subtotal:     "110000.00",
		TaxRate:      "0.07",
		TaxAmount:    "7700.00",
		Total:        "117700.00",
		CreatedAt:    time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC),
	}
}

func TestDocumentHandler_Generate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("Generate", mock.Anything, mock.MatchedBy(func(req documentapp.GenerateRequest) bool {
			return req.DocumentType == "invoice" &&
				len(req.Items) == 2 &&
				req.Items[0].Qty.String() == "1" &&
				req.Items[1].Price.String() == "5000" &&
				req.IdempotencyKey == "order-42"
		})).Return(invoiceResponse(), nil).Once()

		w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", generateBody,
			map[string]string{middleware.IdempotencyKeyHeader: "order-42"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Empty(t, w.Header().Get(ReplayedHeader))

		resp := decodeResponse(t, w)
		var doc documentapp.DocumentResponse
		require.NoError(t, json.Unmarshal(resp.Data, &doc))
		assert.Equal(t, "INV-000001", doc.DocumentNo)
		assert.Equal(t, "7700.00", doc.TaxAmount)
		assert.Equal(t, "117700.00", doc.Total)
	})

	t.Run("replay", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		replayed := invoiceResponse()
		replayed.Replayed = true
		svc.On("Generate", mock.Anything, mock.Anything).Return(replayed, nil).Once()

		w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", generateBody,
			map[string]string{middleware.IdempotencyKeyHeader: "order-42"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get(ReplayedHeader))
	})

	t.Run("request validation", func(t *testing.T) {
		tests := []struct {
			name      string
			body      string
			wantField string
		}{
			{"unknown type", strings.Replace(generateBody, `"invoice"`, `"credit_note"`, 1), "document_type"},
			{"missing email", strings.Replace(generateBody, `"customer_email": "billing@example.co.th",`, "", 1), "customer_email"},
			{"bad language", strings.Replace(generateBody, `"language": "th"`, `"language": "jp"`, 1), "language"},
			{"no items", `{"document_type":"invoice","customer_name":"a","customer_email":"a@b.co","customer_address":"x","items":[]}`, "items"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				engine, _ := setupDocumentRouter(t)
				w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", tt.body, nil)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decodeResponse(t, w)
				assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
				fields := make([]string, 0, len(resp.Error.Details))
				for _, d := range resp.Error.Details {
					fields = append(fields, d.Field)
				}
				assert.Contains(t, fields, tt.wantField)
			})
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		engine, _ := setupDocumentRouter(t)
		w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", `{"document_type":`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})

	t.Run("oversized idempotency key", func(t *testing.T) {
		engine, _ := setupDocumentRouter(t)
		w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", generateBody,
			map[string]string{middleware.IdempotencyKeyHeader: strings.Repeat("k", 200)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})

	t.Run("service errors", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"invalid line item", &document.InvalidLineItemError{Index: 0, Field: document.FieldPrice, Reason: "must be greater than zero"}, http.StatusBadRequest, dto.ErrCodeInvalidLineItem},
			{"amount limit", &document.AmountLimitError{}, http.StatusBadRequest, dto.ErrCodeAmountLimit},
			{"in flight", shared.ErrIdempotencyKeyInFlight, http.StatusConflict, dto.ErrCodeIdempotencyInFlight},
			{"render timeout", printing.NewRenderError(printing.ErrCodeRenderTimeout, "timeout", nil), http.StatusGatewayTimeout, dto.ErrCodeRenderTimeout},
			{"render failed", printing.NewRenderError(printing.ErrCodeRenderFailed, "chrome crashed", nil), http.StatusInternalServerError, dto.ErrCodeRenderFailed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				engine, svc := setupDocumentRouter(t)
				svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				w := doRequest(engine, http.MethodPost, "/api/v1/documents/generate", generateBody, nil)
				assert.Equal(t, tt.wantStatus, w.Code)
				assert.Equal(t, tt.wantCode, decodeResponse(t, w).Error.Code)
			})
		}
	})
}

func TestDocumentHandler_Calculate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("Calculate", mock.Anything, mock.MatchedBy(func(req documentapp.CalculateRequest) bool {
			return len(req.Items) == 1 && req.TaxRate != nil && req.TaxRate.String() == "0.1"
		})).Return(&documentapp.CalculateResponse{
			Subtotal:      "1000.00",
			TaxRate:       "0.1",
			TaxAmount:     "100.00",
			Total:         "1100.00",
			AmountInWords: "หนึ่งพันหนึ่งร้อยบาทถ้วน",
		}, nil).Once()

		w := doRequest(engine, http.MethodPost, "/api/v1/documents/calculate",
			`{"items":[{"description":"Consulting","qty":1,"price":1000}],"tax_rate":"0.1"}`, nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var calc documentapp.CalculateResponse
		require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &calc))
		assert.Equal(t, "1100.00", calc.Total)
		assert.Equal(t, "หนึ่งพันหนึ่งร้อยบาทถ้วน", calc.AmountInWords)
	})

	t.Run("domain error", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("Calculate", mock.Anything, mock.Anything).
			Return(nil, &document.InvalidLineItemError{Index: 0, Field: document.FieldQuantity, Reason: "must be greater than zero"}).Once()

		w := doRequest(engine, http.MethodPost, "/api/v1/documents/calculate",
			`{"items":[{"description":"x","qty":0,"price":1}]}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "items[0].qty", resp.Error.Details[0].Field)
	})
}

func TestDocumentHandler_List(t *testing.T) {
	t.Run("binds query and returns meta", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		want := documentapp.ListRequest{
			Page:         2,
			PageSize:     10,
			OrderBy:      "total",
			OrderDir:     "asc",
			Search:       "acme",
			DocumentType: "invoice",
			Status:       "generated",
		}
		svc.On("List", mock.Anything, want).Return(&documentapp.ListResponse{
			Items:      []documentapp.DocumentResponse{*invoiceResponse()},
			Total:      11,
			Page:       2,
			PageSize:   10,
			TotalPages: 2,
		}, nil).Once()

		w := doRequest(engine, http.MethodGet,
			"/api/v1/documents?page=2&page_size=10&order_by=total&order_dir=asc&search=acme&document_type=invoice&status=generated", "", nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, dto.Meta{Total: 11, Page: 2, PageSize: 10, TotalPages: 2}, *resp.Meta)

		var items []documentapp.DocumentResponse
		require.NoError(t, json.Unmarshal(resp.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, "INV-000001", items[0].DocumentNo)
	})

	t.Run("rejects bad query", func(t *testing.T) {
		for _, query := range []string{"page_size=500", "document_type=memo", "order_dir=sideways", "page=abc"} {
			engine, _ := setupDocumentRouter(t)
			w := doRequest(engine, http.MethodGet, "/api/v1/documents?"+query, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}

func TestDocumentHandler_GetDocumentTypes(t *testing.T) {
	engine, svc := setupDocumentRouter(t)
	svc.On("DocumentTypes").Return([]documentapp.DocumentTypeResponse{
		{Code: "quotation", Prefix: "QT", Name: "Quotation", NameThai: "ใบเสนอราคา"},
		{Code: "invoice", Prefix: "INV", Name: "Invoice", NameThai: "ใบแจ้งหนี้"},
		{Code: "receipt", Prefix: "REC", Name: "Receipt", NameThai: "ใบเสร็จรับเงิน"},
	}).Once()

	w := doRequest(engine, http.MethodGet, "/api/v1/documents/types", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var types []documentapp.DocumentTypeResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &types))
	require.Len(t, types, 3)
	assert.Equal(t, "INV", types[1].Prefix)
}

func TestDocumentHandler_Get(t *testing.T) {
	id := uuid.MustParse("0c7f2a3e-6b1d-4c8e-9a57-1f2e3d4c5b6a")

	t.Run("found", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("Get", mock.Anything, id).Return(invoiceResponse(), nil).Once()

		w := doRequest(engine, http.MethodGet, "/api/v1/documents/"+id.String(), "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound).Once()

		w := doRequest(engine, http.MethodGet, "/api/v1/documents/"+id.String(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		engine, _ := setupDocumentRouter(t)
		w := doRequest(engine, http.MethodGet, "/api/v1/documents/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_GetByNumber(t *testing.T) {
	engine, svc := setupDocumentRouter(t)
	svc.On("GetByNumber", mock.Anything, "INV-000001").Return(invoiceResponse(), nil).Once()
	svc.On("GetByNumber", mock.Anything, "INV-999999").Return(nil, shared.ErrNotFound).Once()

	w := doRequest(engine, http.MethodGet, "/api/v1/documents/by-number/INV-000001", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/documents/by-number/INV-999999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandler_DownloadPDF(t *testing.T) {
	id := uuid.New()

	t.Run("streams file", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		body := &trackedBody{Reader: strings.NewReader("%PDF-1.7 test")}
		svc.On("GetPDF", mock.Anything, id).Return(&documentapp.PDFFile{
			FileName: "INV-000001.pdf",
			Size:     13,
			Content:  body,
		}, nil).Once()

		w := doRequest(engine, http.MethodGet, "/api/v1/documents/"+id.String()+"/pdf", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=INV-000001.pdf`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "13", w.Header().Get("Content-Length"))
		assert.Equal(t, "%PDF-1.7 test", w.Body.String())
		assert.True(t, body.closed)
	})

	t.Run("no pdf", func(t *testing.T) {
		engine, svc := setupDocumentRouter(t)
		svc.On("GetPDF", mock.Anything, id).Return(nil, documentapp.ErrNoPDF).Once()

		w := doRequest(engine, http.MethodGet, "/api/v1/documents/"+id.String()+"/pdf", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNoPDF, decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		engine, _ := setupDocumentRouter(t)
		w := doRequest(engine, http.MethodGet, "/api/v1/documents/123/pdf", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
