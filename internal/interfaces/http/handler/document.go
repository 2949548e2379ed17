package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"

	documentapp "github.com/billydoc/backend/internal/application/document"
	"github.com/billydoc/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReplayedHeader is set on responses served from an earlier idempotent request
const ReplayedHeader = "Idempotent-Replayed"

// DocumentService is the application surface the document handler needs
type DocumentService interface {
	Generate(ctx context.Context, req documentapp.GenerateRequest) (*documentapp.DocumentResponse, error)
	Calculate(ctx context.Context, req documentapp.CalculateRequest) (*documentapp.CalculateResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*documentapp.DocumentResponse, error)
	GetByNumber(ctx context.Context, number string) (*documentapp.DocumentResponse, error)
	GetPDF(ctx context.Context, id uuid.UUID) (*documentapp.PDFFile, error)
	List(ctx context.Context, req documentapp.ListRequest) (*documentapp.ListResponse, error)
	DocumentTypes() []documentapp.DocumentTypeResponse
}

// DocumentHandler handles document generation and retrieval endpoints
type DocumentHandler struct {
	BaseHandler
	service DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(service DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// =============================================================================
// Generation
// =============================================================================

// Generate godoc
//
//	@ID				generateDocument
//
//	@Summary		Generate a document
//	@Description	Validate line items, compute VAT, number, render and store a quotation, invoice or receipt.
//	@Description	Repeating a request with the same Idempotency-Key returns the first result.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Idempotency key"
//	@Param			request			body		documentapp.GenerateRequest		true	"Document request"
//	@Success		201				{object}	APIResponse[documentapp.DocumentResponse]
//	@Success		200				{object}	APIResponse[documentapp.DocumentResponse]	"Idempotent replay"
//	@Failure		400				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		413				{object}	ErrorResponse
//	@Failure		500				{object}	ErrorResponse
//	@Failure		504				{object}	ErrorResponse
//	@Router			/documents/generate [post]
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req documentapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	key := c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(key) > middleware.MaxRequestIDLength {
		h.BadRequest(c, "Idempotency-Key must be at most "+strconv.Itoa(middleware.MaxRequestIDLength)+" characters")
		return
	}
	req.IdempotencyKey = key

	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if resp.Replayed {
		c.Header(ReplayedHeader, "true")
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// Calculate godoc
//
//	@ID				calculateDocumentTotals
//
//	@Summary		Preview document totals
//	@Description	Compute line amounts, subtotal, VAT and total without numbering or rendering
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		documentapp.CalculateRequest	true	"Line items"
//	@Success		200		{object}	APIResponse[documentapp.CalculateResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/documents/calculate [post]
func (h *DocumentHandler) Calculate(c *gin.Context) {
	var req documentapp.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	resp, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// =============================================================================
// Queries
// =============================================================================

// List godoc
//
//	@ID				listDocuments
//
//	@Summary		List documents
//	@Description	Page through generated documents, newest first by default
//	@Tags			documents
//	@Produce		json
//	@Param			page			query		int		false	"Page number"		default(1)
//	@Param			page_size		query		int		false	"Page size"			default(20)	maximum(100)
//	@Param			order_by		query		string	false	"Sort field"		Enums(created_at, document_no, total, customer_name)
//	@Param			order_dir		query		string	false	"Sort direction"	Enums(asc, desc)
//	@Param			search			query		string	false	"Customer name or document number"
//	@Param			document_type	query		string	false	"Document type"		Enums(quotation, invoice, receipt)
//	@Param			status			query		string	false	"Status"			Enums(generated, failed)
//	@Success		200				{object}	APIResponse[[]documentapp.DocumentResponse]
//	@Failure		400				{object}	ErrorResponse
//	@Router			/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var req documentapp.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetDocumentTypes godoc
//
//	@ID				getDocumentTypes
//
//	@Summary		Get document types
//	@Description	Supported document types with their number prefixes
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	APIResponse[[]documentapp.DocumentTypeResponse]
//	@Router			/documents/types [get]
func (h *DocumentHandler) GetDocumentTypes(c *gin.Context) {
	h.Success(c, h.service.DocumentTypes())
}

// Get godoc
//
//	@ID				getDocument
//
//	@Summary		Get a document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{object}	APIResponse[documentapp.DocumentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber godoc
//
//	@ID				getDocumentByNumber
//
//	@Summary		Get a document by number
//	@Tags			documents
//	@Produce		json
//	@Param			number	path		string	true	"Document number"	example(INV-000001)
//	@Success		200		{object}	APIResponse[documentapp.DocumentResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Router			/documents/by-number/{number} [get]
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	resp, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadPDF godoc
//
//	@ID				downloadDocumentPDF
//
//	@Summary		Download PDF
//	@Description	Stream the stored PDF of a generated document
//	@Tags			documents
//	@Produce		application/pdf
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{file}		binary	"PDF file"
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.documentID(c)
	if !ok {
		return
	}

	file, err := h.service.GetPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Content.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	if file.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file.Content); err != nil {
		// headers are gone; abort so the client sees a truncated body
		_ = c.Error(err)
		c.Abort()
	}
}

func (h *DocumentHandler) documentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return uuid.Nil, false
	}
	return id, true
}
