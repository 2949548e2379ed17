package handler

import "github.com/billydoc/backend/internal/interfaces/http/dto"

// Swagger-only envelopes. Handlers write dto.Response; these give the
// generated schema a typed data field per endpoint.

// APIResponse is the envelope of a successful call carrying T
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the body of every rejected request. A line item failure
// names its path in error.details, e.g. items[2].qty.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
