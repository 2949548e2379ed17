package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/billydoc/backend/internal/interfaces/http/dto"
	"github.com/billydoc/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleBindError answers a failed ShouldBind* call
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &validationErrs):
		middleware.HandleValidationError(c, err)
	case errors.As(err, &maxBytesErr):
		h.ErrorWithCode(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &typeErr):
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Field "+typeErr.Field+" has the wrong type")
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	default:
		h.BadRequest(c, err.Error())
	}
}

// HandleError maps service errors to responses. Domain errors keep their
// message; anything that ends in a 5xx gets a generic one.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if errors.Is(err, shared.ErrIdempotencyKeyInFlight) {
		h.ErrorWithCode(c, dto.ErrCodeIdempotencyInFlight,
			"A request with this idempotency key is still being processed")
		return
	}

	var itemErr *document.InvalidLineItemError
	if errors.As(err, &itemErr) {
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidLineItem, itemErr.Error(), middleware.GetRequestID(c))
		resp.Error.Details = []dto.ValidationDetail{{
			Field:   itemFieldPath(itemErr),
			Message: itemErr.Reason,
		}}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		message := domainErr.Message
		if status >= http.StatusInternalServerError {
			message = "An unexpected error occurred"
		}
		h.Error(c, status, code, message)
		return
	}

	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) {
		switch renderErr.Code {
		case printing.ErrCodeRenderTimeout:
			h.ErrorWithCode(c, dto.ErrCodeRenderTimeout, "Rendering the document timed out")
		case printing.ErrCodeStorageFailed:
			h.ErrorWithCode(c, dto.ErrCodeStorage, "The document could not be stored")
		case printing.ErrCodeNotFound:
			h.NotFound(c, "Resource not found")
		default:
			h.ErrorWithCode(c, dto.ErrCodeRenderFailed, "The document could not be rendered")
		}
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}

// itemFieldPath names the offending request field, e.g. items[1].qty
func itemFieldPath(e *document.InvalidLineItemError) string {
	field := e.Field
	if field == document.FieldQuantity {
		field = "qty"
	}
	return "items[" + strconv.Itoa(e.Index) + "]." + field
}
