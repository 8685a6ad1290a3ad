package domain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is a stable machine-readable protocol error code. Codes are part
// of the wire contract; messages are free-form and may change.
type ErrorCode string

const (
	ErrCodeBadRequest          ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeInvalidSignature    ErrorCode = "INVALID_SIGNATURE"
	ErrCodeRequiresHITL        ErrorCode = "REQUIRES_HITL"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeConflict            ErrorCode = "CONFLICT"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeProviderUnreachable ErrorCode = "PROVIDER_UNREACHABLE"
	ErrCodeProviderError       ErrorCode = "PROVIDER_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// HTTPStatus maps a protocol error code to its HTTP status.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeInvalidSignature, ErrCodeRequiresHITL:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeProviderError:
		return http.StatusBadGateway
	case ErrCodeProviderUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a fresh attempt of the same request can succeed
// without the client changing anything.
func (c ErrorCode) Retryable() bool {
	return c == ErrCodeRateLimited || c == ErrCodeProviderUnreachable || c == ErrCodeProviderError
}

// Error is the protocol error carried across the API boundary. Internal
// details stay in server logs; only code, message and optional structured
// details reach the caller.
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a protocol error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a protocol error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorResponse is the wire envelope for errors.
type ErrorResponse struct {
	Err ErrorBody `json:"error"`
}

// ErrorBody is the inner error object of an ErrorResponse.
type ErrorBody struct {
	Code      ErrorCode       `json:"code"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// NewErrorResponse wraps a protocol error in the wire envelope.
func NewErrorResponse(e *Error) ErrorResponse {
	return ErrorResponse{Err: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Details:   e.Details,
	}}
}
