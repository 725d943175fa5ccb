package orderapp

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
)

// OrderRequest is the body for creating or replacing one order
type OrderRequest struct {
	OrderNumber          string `json:"order_number" binding:"required,max=100"`
	AlternateOrderNumber string `json:"alternate_order_number" binding:"omitempty,max=100"`
	OrderDate            string `json:"order_date" binding:"omitempty,max=10"`
	ShipToName           string `json:"ship_to_name" binding:"required,max=200"`
	ShipToCompany        string `json:"ship_to_company" binding:"omitempty,max=200"`
	ShipToAddress1       string `json:"ship_to_address1" binding:"required,max=255"`
	ShipToAddress2       string `json:"ship_to_address2" binding:"omitempty,max=255"`
	ShipToAddress3       string `json:"ship_to_address3" binding:"omitempty,max=255"`
	ShipToCity           string `json:"ship_to_city" binding:"required,max=100"`
	ShipToState          string `json:"ship_to_state" binding:"required,len=2"`
	ShipToPostalCode     string `json:"ship_to_postal_code" binding:"required,len=5,numeric"`
	ShipToCountry        string `json:"ship_to_country" binding:"required,max=100"`
	ShipToPhone          string `json:"ship_to_phone" binding:"omitempty,max=50"`
	ShipToEmail          string `json:"ship_to_email" binding:"omitempty,email"`
	Sku                  string `json:"sku" binding:"required,max=100"`
	Quantity             int    `json:"quantity" binding:"required,gt=0"`
	RequestedWarehouse   string `json:"requested_warehouse" binding:"required,max=100"`
	DeliveryInstructions string `json:"delivery_instructions"`
	Tags                 string `json:"tags" binding:"omitempty,max=500"`
}

// details trims every field and maps blanks to nil the same way the file
// importer does. OrderDate must already be canonical.
func (r OrderRequest) details(orderDate string) order.Details {
	return order.Details{
		OrderNumber:          strings.TrimSpace(r.OrderNumber),
		AlternateOrderNumber: order.StringPtr(strings.TrimSpace(r.AlternateOrderNumber)),
		OrderDate:            order.StringPtr(orderDate),
		ShipToName:           strings.TrimSpace(r.ShipToName),
		ShipToCompany:        order.StringPtr(strings.TrimSpace(r.ShipToCompany)),
		ShipToAddress1:       strings.TrimSpace(r.ShipToAddress1),
		ShipToAddress2:       order.StringPtr(strings.TrimSpace(r.ShipToAddress2)),
		ShipToAddress3:       order.StringPtr(strings.TrimSpace(r.ShipToAddress3)),
		ShipToCity:           strings.TrimSpace(r.ShipToCity),
		ShipToState:          strings.TrimSpace(r.ShipToState),
		ShipToPostalCode:     strings.TrimSpace(r.ShipToPostalCode),
		ShipToCountry:        strings.TrimSpace(r.ShipToCountry),
		ShipToPhone:          order.StringPtr(strings.TrimSpace(r.ShipToPhone)),
		ShipToEmail:          order.StringPtr(strings.TrimSpace(r.ShipToEmail)),
		Sku:                  strings.TrimSpace(r.Sku),
		Quantity:             r.Quantity,
		RequestedWarehouse:   strings.TrimSpace(r.RequestedWarehouse),
		DeliveryInstructions: order.StringPtr(strings.TrimSpace(r.DeliveryInstructions)),
		Tags:                 order.StringPtr(strings.TrimSpace(r.Tags)),
	}
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID                   uuid.UUID `json:"id"`
	OrderNumber          string    `json:"order_number"`
	AlternateOrderNumber *string   `json:"alternate_order_number"`
	OrderDate            *string   `json:"order_date"`
	ShipToName           string    `json:"ship_to_name"`
	ShipToCompany        *string   `json:"ship_to_company"`
	ShipToAddress1       string    `json:"ship_to_address1"`
	ShipToAddress2       *string   `json:"ship_to_address2"`
	ShipToAddress3       *string   `json:"ship_to_address3"`
	ShipToCity           string    `json:"ship_to_city"`
	ShipToState          string    `json:"ship_to_state"`
	ShipToPostalCode     string    `json:"ship_to_postal_code"`
	ShipToCountry        string    `json:"ship_to_country"`
	ShipToPhone          *string   `json:"ship_to_phone"`
	ShipToEmail          *string   `json:"ship_to_email"`
	Sku                  string    `json:"sku"`
	Quantity             int       `json:"quantity"`
	RequestedWarehouse   string    `json:"requested_warehouse"`
	DeliveryInstructions *string   `json:"delivery_instructions"`
	Tags                 *string   `json:"tags"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// OrderListFilter holds the list query parameters
type OrderListFilter struct {
	Search             string `form:"search"`
	Sku                string `form:"sku"`
	RequestedWarehouse string `form:"requested_warehouse"`
	ShipToState        string `form:"ship_to_state" binding:"omitempty,len=2"`
	ShipToCountry      string `form:"ship_to_country"`
	Page               int    `form:"page" binding:"omitempty,min=1"`
	PageSize           int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy            string `form:"order_by"`
	OrderDir           string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		AlternateOrderNumber: o.AlternateOrderNumber,
		OrderDate:            o.OrderDate,
		ShipToName:           o.ShipToName,
		ShipToCompany:        o.ShipToCompany,
		ShipToAddress1:       o.ShipToAddress1,
		ShipToAddress2:       o.ShipToAddress2,
		ShipToAddress3:       o.ShipToAddress3,
		ShipToCity:           o.ShipToCity,
		ShipToState:          o.ShipToState,
		ShipToPostalCode:     o.ShipToPostalCode,
		ShipToCountry:        o.ShipToCountry,
		ShipToPhone:          o.ShipToPhone,
		ShipToEmail:          o.ShipToEmail,
		Sku:                  o.Sku,
		Quantity:             o.Quantity,
		RequestedWarehouse:   o.RequestedWarehouse,
		DeliveryInstructions: o.DeliveryInstructions,
		Tags:                 o.Tags,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}
