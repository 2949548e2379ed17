package printing

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/billydoc/backend/internal/domain/printing"
)

// RenderRequest contains the parameters for producing a PDF
type RenderRequest struct {
	// HTML is the rendered template, used by HTML based engines
	HTML string
	// View is the structured document, used by engines that lay out directly
	View *View
	// Page holds paper size, orientation and margins
	Page printing.PageSetup
	// Title for the PDF document metadata
	Title string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for producing PDF documents
type PDFRenderer interface {
	// Render converts the request into a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Name identifies the engine in logs and health output
	Name() string
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering or storage
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateNotFound = "TEMPLATE_NOT_FOUND"
	ErrCodeFontNotFound     = "FONT_NOT_FOUND"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
	ErrCodeFileTooLarge     = "FILE_TOO_LARGE"
	ErrCodeNotFound         = "NOT_FOUND"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRenderErrorCode reports whether err is a RenderError with the given code
func IsRenderErrorCode(err error, code string) bool {
	var re *RenderError
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == code
}

func validatePage(p printing.PageSetup) error {
	if !p.PaperSize.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(p.PaperSize), nil)
	}
	if p.Orientation != "" && !p.Orientation.IsValid() {
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid orientation: "+string(p.Orientation), nil)
	}
	return nil
}

// estimatePageCount counts "/Type /Page" objects, excluding the "/Type /Pages" parent
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
