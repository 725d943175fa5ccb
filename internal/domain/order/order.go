// Package order holds the order aggregate, its repository contracts and the
// error types produced while importing orders in bulk.
package order

import (
	"strconv"
	"strings"

	"github.com/orderimport/backend/internal/domain/shared"
)

// Details carries every business field of an order. Optional fields are nil
// when the source left them blank.
type Details struct {
	OrderNumber          string
	AlternateOrderNumber *string
	OrderDate            *string // canonical MM/DD/YYYY
	ShipToName           string
	ShipToCompany        *string
	ShipToAddress1       string
	ShipToAddress2       *string
	ShipToAddress3       *string
	ShipToCity           string
	ShipToState          string
	ShipToPostalCode     string
	ShipToCountry        string
	ShipToPhone          *string
	ShipToEmail          *string
	Sku                  string
	Quantity             int
	RequestedWarehouse   string
	DeliveryInstructions *string
	Tags                 *string
}

// Order is a shipment request identified by its business key OrderNumber.
type Order struct {
	shared.BaseEntity
	Details
}

// NewOrder creates an order after checking the invariants every stored order
// must satisfy.
func NewOrder(d Details) (*Order, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &Order{
		BaseEntity: shared.NewBaseEntity(),
		Details:    d,
	}, nil
}

// Update replaces the business fields of the order.
func (o *Order) Update(d Details) error {
	if err := d.Validate(); err != nil {
		return err
	}
	o.Details = d
	o.Touch()
	return nil
}

// Validate checks the structural invariants of an order.
func (d Details) Validate() error {
	if strings.TrimSpace(d.OrderNumber) == "" {
		return shared.NewDomainError(CodeInvalidOrder, "OrderNumber is required")
	}
	if strings.TrimSpace(d.Sku) == "" {
		return shared.NewDomainError(CodeInvalidOrder, "Sku is required")
	}
	if d.Quantity <= 0 {
		return shared.NewDomainError(CodeInvalidOrder, "Quantity must be a positive integer")
	}
	if !IsValidState(d.ShipToState) {
		return shared.NewDomainError(CodeInvalidOrder, "ShipToState must be a 2-character code")
	}
	if !IsValidPostalCode(d.ShipToPostalCode) {
		return shared.NewDomainError(CodeInvalidOrder, "ShipToPostalCode must be a 5-digit number")
	}
	return nil
}

// IsValidState reports whether s is a two character state code.
func IsValidState(s string) bool {
	return len([]rune(s)) == 2
}

// IsValidPostalCode reports whether s is exactly five characters that parse
// as an integer. Leading zeros are kept because the value stays text.
func IsValidPostalCode(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// StringPtr returns nil for a blank value and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
