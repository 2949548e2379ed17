package document

import (
	"encoding/json"
	"io"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Generation DTOs
// =============================================================================

// ItemInput is one requested line. Quantity and price stay textual until
// the line item validator parses them.
type ItemInput struct {
	Description string      `json:"description" binding:"required,max=500" example:"Website development"`
	Qty         json.Number `json:"qty" binding:"required" swaggertype:"string" example:"1"`
	Price       json.Number `json:"price" binding:"required" swaggertype:"string" example:"50000"`
}

// GenerateRequest asks for a numbered, rendered and stored document
type GenerateRequest struct {
	DocumentType    string           `json:"document_type" binding:"required,doctype" example:"invoice"`
	CustomerName    string           `json:"customer_name" binding:"required,max=200" example:"บริษัท ลูกค้า จำกัด"`
	CustomerEmail   string           `json:"customer_email" binding:"required,email" example:"billing@example.co.th"`
	CustomerAddress string           `json:"customer_address" binding:"required,max=500" example:"99 ถนนสุขุมวิท กรุงเทพฯ 10110"`
	CustomerTaxID   string           `json:"customer_tax_id" binding:"omitempty,len=13,numeric" example:"1101700207030"`
	CustomerPhone   string           `json:"customer_phone" binding:"omitempty,max=20" example:"081-234-5678"`
	Items           []ItemInput      `json:"items" binding:"required,min=1,max=200,dive"`
	TaxRate         *decimal.Decimal `json:"tax_rate" swaggertype:"string" example:"0.07"`
	Language        string           `json:"language" binding:"omitempty,oneof=th en" example:"th"`
	Note            string           `json:"note" binding:"max=1000"`

	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// CalculateRequest previews totals without numbering or rendering
type CalculateRequest struct {
	Items   []ItemInput      `json:"items" binding:"required,min=1,max=200,dive"`
	TaxRate *decimal.Decimal `json:"tax_rate" swaggertype:"string" example:"0.07"`
}

// =============================================================================
// Responses
// =============================================================================

// ItemResponse is a stored line with its computed amount
type ItemResponse struct {
	No          int    `json:"no"`
	Description string `json:"description"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	Amount      string `json:"amount"`
}

// CustomerResponse echoes the customer block of a document
type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// DocumentResponse describes a generated (or failed) document
type DocumentResponse struct {
	ID           string            `json:"id"`
	DocumentNo   string            `json:"document_no"`
	DocumentType string            `json:"document_type"`
	Status       string            `json:"status"`
	Language     string            `json:"language"`
	DownloadURL  string            `json:"download_url,omitempty"`
	Subtotal     string            `json:"subtotal"`
	TaxRate      string            `json:"tax_rate"`
	TaxAmount    string            `json:"tax_amount"`
	Total        string            `json:"total"`
	Customer     *CustomerResponse `json:"customer,omitempty"`
	Items        []ItemResponse    `json:"items,omitempty"`
	Note         string            `json:"note,omitempty"`
	FileSize     int64             `json:"file_size,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	// Replayed is set when the response came from an earlier request with the same idempotency key
	Replayed bool `json:"-"`
}

// CalculateResponse is a totals preview
type CalculateResponse struct {
	Items     []ItemResponse `json:"items"`
	Subtotal  string         `json:"subtotal"`
	TaxRate   string         `json:"tax_rate"`
	TaxAmount string         `json:"tax_amount"`
	Total     string         `json:"total"`
	// AmountInWords spells the total in Thai
	AmountInWords string `json:"amount_in_words"`
}

// ListRequest pages through stored documents
type ListRequest struct {
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search       string `form:"search" binding:"max=100"`
	DocumentType string `form:"document_type" binding:"omitempty,doctype"`
	Status       string `form:"status" binding:"omitempty,oneof=generated failed"`
}

// ListResponse is one page of documents
type ListResponse struct {
	Items      []DocumentResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// DocumentTypeResponse is reference data for one document type
type DocumentTypeResponse struct {
	Code     string `json:"code"`
	Prefix   string `json:"prefix"`
	Name     string `json:"name"`
	NameThai string `json:"name_th"`
}

// PDFFile is a stored PDF ready to stream. The caller closes Content.
type PDFFile struct {
	FileName string
	Size     int64
	Content  io.ReadCloser
}

func toItemResponses(items []document.RawLineItem) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		amount := ""
		if li, err := document.ValidateLineItem(i, it); err == nil {
			amount = li.LineTotal().StringFixed(document.TaxPlaces)
		}
		out[i] = ItemResponse{
			No:          i + 1,
			Description: it.Description,
			Qty:         it.Quantity,
			Price:       it.Price,
			Amount:      amount,
		}
	}
	return out
}

func toRawItems(items []ItemInput) []document.RawLineItem {
	out := make([]document.RawLineItem, len(items))
	for i, it := range items {
		out[i] = document.RawLineItem{
			Description: it.Description,
			Quantity:    it.Qty.String(),
			Price:       it.Price.String(),
		}
	}
	return out
}
