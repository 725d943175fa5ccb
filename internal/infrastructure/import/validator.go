package csvimport

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/orderimport/backend/internal/domain/order"
)

// Accepted OrderDate layouts. "1" and "2" also match two-digit values, so
// the first layout already covers M/d, MM/dd and the mixed forms.
var orderDateLayouts = []string{"1/2/2006", "01/02/2006"}

// CanonicalDateLayout is the stored form of OrderDate
const CanonicalDateLayout = "01/02/2006"

// OrderLookup reports whether an order number is already stored
type OrderLookup func(ctx context.Context, orderNumber string) (bool, error)

// FieldRule checks one column. Check returns a message, or "" when the
// value is acceptable; it only runs on non-blank values.
type FieldRule struct {
	Column   string
	Required bool
	Check    func(value string) string
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Check sets the format check
func (b *FieldRuleBuilder) Check(fn func(value string) string) *FieldRuleBuilder {
	b.rule.Check = fn
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// Required columns in the order their messages are reported
var requiredRules = []FieldRule{
	Field(ColOrderNumber).Required().Build(),
	Field(ColShipToName).Required().Build(),
	Field(ColShipToAddress1).Required().Build(),
	Field(ColShipToCity).Required().Build(),
	Field(ColShipToState).Required().Build(),
	Field(ColShipToPostalCode).Required().Build(),
	Field(ColShipToCountry).Required().Build(),
	Field(ColSku).Required().Build(),
	Field(ColRequestedWarehouse).Required().Build(),
	Field(ColQuantity).Required().Build(),
}

// Format checks, reported after the duplicate checks
var formatRules = []FieldRule{
	Field(ColOrderDate).Check(checkOrderDate).Build(),
	Field(ColQuantity).Check(checkQuantity).Build(),
	Field(ColShipToPostalCode).Check(checkPostalCode).Build(),
	Field(ColShipToState).Check(checkState).Build(),
}

// OrderValidator turns CandidateOrders into orders or a list of messages
type OrderValidator struct {
	lookup OrderLookup
}

// NewOrderValidator creates a validator that consults lookup for order
// numbers already in the store
func NewOrderValidator(lookup OrderLookup) *OrderValidator {
	return &OrderValidator{lookup: lookup}
}

// Validate evaluates every rule against c. seen holds the order numbers of
// earlier records in the same batch and is not modified.
//
// Exactly one of the order and the messages is non-nil unless err is set;
// err is a store failure from the lookup and should abort the batch.
func (v *OrderValidator) Validate(ctx context.Context, c CandidateOrder, seen map[string]struct{}) (*order.Order, []string, error) {
	var messages []string

	for _, rule := range requiredRules {
		if c.Get(rule.Column) == "" {
			messages = append(messages, fmt.Sprintf("%s is required", rule.Column))
		}
	}

	if c.OrderNumber != "" {
		if _, dup := seen[c.OrderNumber]; dup {
			messages = append(messages, fmt.Sprintf("Duplicate OrderNumber %s in file", c.OrderNumber))
		}

		exists, err := v.lookup(ctx, c.OrderNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up order number %s: %w", c.OrderNumber, err)
		}
		if exists {
			messages = append(messages, fmt.Sprintf("OrderNumber %s already exists", c.OrderNumber))
		}
	}

	for _, rule := range formatRules {
		value := c.Get(rule.Column)
		if value == "" {
			continue
		}
		if msg := rule.Check(value); msg != "" {
			messages = append(messages, msg)
		}
	}

	if len(messages) > 0 {
		return nil, messages, nil
	}

	o, err := order.NewOrder(toDetails(c))
	if err != nil {
		// Unreachable when the rules above pass; surface it as a record message.
		return nil, []string{err.Error()}, nil
	}
	return o, nil, nil
}

func toDetails(c CandidateOrder) order.Details {
	quantity, _ := strconv.Atoi(c.Quantity)
	date, _ := CanonicalizeDate(c.OrderDate)

	return order.Details{
		OrderNumber:          c.OrderNumber,
		AlternateOrderNumber: order.StringPtr(c.AlternateOrderNumber),
		OrderDate:            order.StringPtr(date),
		ShipToName:           c.ShipToName,
		ShipToCompany:        order.StringPtr(c.ShipToCompany),
		ShipToAddress1:       c.ShipToAddress1,
		ShipToAddress2:       order.StringPtr(c.ShipToAddress2),
		ShipToAddress3:       order.StringPtr(c.ShipToAddress3),
		ShipToCity:           c.ShipToCity,
		ShipToState:          c.ShipToState,
		ShipToPostalCode:     c.ShipToPostalCode,
		ShipToCountry:        c.ShipToCountry,
		ShipToPhone:          order.StringPtr(c.ShipToPhone),
		ShipToEmail:          order.StringPtr(c.ShipToEmail),
		Sku:                  c.Sku,
		Quantity:             quantity,
		RequestedWarehouse:   c.RequestedWarehouse,
		DeliveryInstructions: order.StringPtr(c.DeliveryInstructions),
		Tags:                 order.StringPtr(c.Tags),
	}
}

// CanonicalizeDate parses an M/D/YYYY style date and returns it as
// MM/DD/YYYY. A blank value stays blank.
func CanonicalizeDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	var lastErr error
	for _, layout := range orderDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Format(CanonicalDateLayout), nil
		}
		lastErr = err
	}
	return "", lastErr
}

func checkOrderDate(value string) string {
	if _, err := CanonicalizeDate(value); err != nil {
		return fmt.Sprintf("OrderDate %s is not a valid date (expected MM/DD/YYYY)", value)
	}
	return ""
}

func checkQuantity(value string) string {
	q, err := strconv.Atoi(value)
	if err != nil || q <= 0 {
		return "Quantity must be a positive integer"
	}
	return ""
}

func checkPostalCode(value string) string {
	if !order.IsValidPostalCode(value) {
		return "ShipToPostalCode must be a 5-digit number"
	}
	return ""
}

func checkState(value string) string {
	if !order.IsValidState(value) {
		return "ShipToState must be a 2-character code"
	}
	return ""
}
