package shared

import "fmt"

// Error codes shared by the order and import history aggregates. The HTTP
// layer maps them to status codes.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidState = "INVALID_STATE"
)

// DomainError is a business rule violation with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDomainError creates a DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError with the same code, so a reworded error from
// WithMessage still satisfies errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrNotFound is returned by repositories for unknown ids and order numbers
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")
	// ErrInvalidState is returned when an import or order cannot make the
	// requested transition
	ErrInvalidState = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)
