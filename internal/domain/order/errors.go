package order

import (
	"errors"

	"github.com/orderimport/backend/internal/domain/shared"
)

// Domain error codes
const (
	CodeInvalidOrder      = "INVALID_ORDER"
	CodeOrderNumberTaken  = "ALREADY_EXISTS"
	ValidationFailureText = "Validation errors occurred."
)

// ErrOrderNumberTaken is returned when an order number is already stored.
var ErrOrderNumberTaken = shared.NewDomainError(CodeOrderNumberTaken, "OrderNumber already exists")

// ValidationError pairs a record's order number with every rule it broke.
type ValidationError struct {
	OrderNumber string   `json:"order_number"`
	Messages    []string `json:"messages"`
}

// ValidationFailure rejects a whole batch. It carries one entry per failing
// record, in file order.
type ValidationFailure struct {
	Errors []ValidationError
}

// NewValidationFailure creates a ValidationFailure from the collected errors
func NewValidationFailure(errs []ValidationError) *ValidationFailure {
	return &ValidationFailure{Errors: errs}
}

// Error implements the error interface
func (f *ValidationFailure) Error() string {
	return ValidationFailureText
}

// Messages flattens every message of every record.
func (f *ValidationFailure) Messages() []string {
	var out []string
	for _, e := range f.Errors {
		out = append(out, e.Messages...)
	}
	return out
}

// AsValidationFailure unwraps err into a ValidationFailure when possible.
func AsValidationFailure(err error) (*ValidationFailure, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}
