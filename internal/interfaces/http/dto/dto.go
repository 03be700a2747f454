// Package dto defines the wire shapes of the HTTP surface. Error
// payloads are a single {"error": "..."} object; clients depend on
// that exact shape.
package dto

import "net/http"

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// HealthResponse is the body of the root health endpoint
type HealthResponse struct {
	Message string `json:"message"`
}

// Error codes produced by the application layer
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// errorCodeToStatus maps application error codes to HTTP status codes
var errorCodeToStatus = map[string]int{
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRenderFailed:  http.StatusInternalServerError,
	ErrCodeRenderTimeout: http.StatusGatewayTimeout,
	ErrCodeInternal:      http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeToStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
