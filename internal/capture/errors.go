package capture

import "fmt"

// Error is a controller error carrying a stable code for API clients.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes.
const (
	ErrCodeNoStream          = "NO_STREAM"
	ErrCodeInvalidParams     = "INVALID_PARAMS"
	ErrCodeNegotiationFailed = "NEGOTIATION_FAILED"
	ErrCodeClosed            = "CONTROLLER_CLOSED"
)

// NewError creates a controller error.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
