package hostfuncs

import (
	"github.com/reglet-dev/sumstring/wireformat"
)

// ErrorResponse represents a transport-level error returned as JSON to guests.
// This ensures guests receive consistent, parseable errors instead of causing WASM traps.
// Domain failures such as overflow travel inside the typed response instead.
type ErrorResponse = wireformat.ErrorResponse

// NewValidationError creates an error response for bad input (e.g., malformed JSON).
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Code:    400,
	}
}

// NewNotFoundError creates an error response for unknown handler names.
func NewNotFoundError(name string) ErrorResponse {
	return ErrorResponse{
		Error:   "NOT_FOUND",
		Message: "unknown host function: " + name,
		Code:    404,
	}
}

// NewInternalError creates an error response for unexpected failures.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: message,
		Code:    500,
	}
}

// NewPanicError creates an error response for recovered panics.
func NewPanicError(panicValue any) ErrorResponse {
	var msg string
	if err, ok := panicValue.(error); ok {
		msg = err.Error()
	} else if s, ok := panicValue.(string); ok {
		msg = s
	} else {
		msg = "panic recovered"
	}
	return ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Message: "panic: " + msg,
		Code:    500,
	}
}

// ParseErrorResponse reports whether data is an ErrorResponse and returns it.
func ParseErrorResponse(data []byte) (ErrorResponse, bool) {
	return wireformat.ParseErrorResponse(data)
}
