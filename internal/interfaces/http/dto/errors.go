package dto

import (
	"net/http"

	"github.com/billydoc/backend/internal/domain/document"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Document error codes, one per assembly error kind
const (
	ErrCodeInvalidDocumentType  = "ERR_INVALID_DOCUMENT_TYPE"
	ErrCodeEmptyItemList        = "ERR_EMPTY_ITEM_LIST"
	ErrCodeInvalidLineItem      = "ERR_INVALID_LINE_ITEM"
	ErrCodeInvalidTaxRate       = "ERR_INVALID_TAX_RATE"
	ErrCodeMissingCustomerField = "ERR_MISSING_CUSTOMER_FIELD"
	ErrCodeInvalidCustomerField = "ERR_INVALID_CUSTOMER_FIELD"
	ErrCodeInvalidLanguage      = "ERR_INVALID_LANGUAGE"
	ErrCodeAmountLimit          = "ERR_AMOUNT_EXCEEDS_LIMIT"
	// ErrCodeNumbering means the number source produced an unusable value
	ErrCodeNumbering = "ERR_NUMBERING"
	// ErrCodeTotalsMismatch means a stored document no longer adds up
	ErrCodeTotalsMismatch = "ERR_TOTALS_MISMATCH"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeNoPDF is used when a document exists but has no stored PDF
	ErrCodeNoPDF = "ERR_NO_PDF"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeIdempotencyInFlight is used when the same idempotency key is still being processed
	ErrCodeIdempotencyInFlight = "ERR_IDEMPOTENCY_IN_FLIGHT"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Rendering error codes
const (
	ErrCodeRenderFailed  = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout = "ERR_RENDER_TIMEOUT"
	ErrCodeStorage       = "ERR_STORAGE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Access error codes
const (
	// ErrCodeForbidden is used when the caller may not reach a resource
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Document errors -> 400 Bad Request
	ErrCodeInvalidDocumentType:  http.StatusBadRequest,
	ErrCodeEmptyItemList:        http.StatusBadRequest,
	ErrCodeInvalidLineItem:      http.StatusBadRequest,
	ErrCodeInvalidTaxRate:       http.StatusBadRequest,
	ErrCodeMissingCustomerField: http.StatusBadRequest,
	ErrCodeInvalidCustomerField: http.StatusBadRequest,
	ErrCodeInvalidLanguage:      http.StatusBadRequest,
	ErrCodeAmountLimit:          http.StatusBadRequest,
	ErrCodeNumbering:            http.StatusInternalServerError,
	ErrCodeTotalsMismatch:       http.StatusInternalServerError,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeNoPDF:               http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeIdempotencyInFlight: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	// Rendering
	ErrCodeRenderFailed:  http.StatusInternalServerError,
	ErrCodeRenderTimeout: http.StatusGatewayTimeout,
	ErrCodeStorage:       http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeForbidden: http.StatusForbidden,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"VALIDATION_ERROR": ErrCodeValidation,
	"NO_PDF":           ErrCodeNoPDF,

	document.CodeInvalidDocumentType:  ErrCodeInvalidDocumentType,
	document.CodeEmptyItemList:        ErrCodeEmptyItemList,
	document.CodeInvalidLineItem:      ErrCodeInvalidLineItem,
	document.CodeInvalidTaxRate:       ErrCodeInvalidTaxRate,
	document.CodeMissingCustomerField: ErrCodeMissingCustomerField,
	document.CodeInvalidCustomerField: ErrCodeInvalidCustomerField,
	document.CodeInvalidLanguage:      ErrCodeInvalidLanguage,
	document.CodeInvalidSequence:      ErrCodeNumbering,
	document.CodeAmountLimit:          ErrCodeAmountLimit,
	document.CodeTotalsMismatch:       ErrCodeTotalsMismatch,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
