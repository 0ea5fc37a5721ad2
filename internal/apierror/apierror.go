// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Error: msg}
}

// WithDetails attaches structured, user-safe context (e.g. available stock).
func WithDetails(msg string, details interface{}) *APIError {
	return &APIError{Error: msg, Details: details}
}

// FieldError describes one violated field of a request body.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// NewValidation enumerates every failing field, never just the first one.
func NewValidation(fields []FieldError) *APIError {
	return &APIError{Error: "Error de validación", Details: fields}
}
