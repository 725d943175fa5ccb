package models

import (
	"github.com/orderimport/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate.
// Optional columns are nullable so a blank cell round-trips as nil.
type OrderModel struct {
	BaseModel
	OrderNumber          string  `gorm:"type:varchar(100);not null;uniqueIndex:uq_orders_order_number"`
	AlternateOrderNumber *string `gorm:"type:varchar(100)"`
	OrderDate            *string `gorm:"type:varchar(10)"`
	ShipToName           string  `gorm:"type:varchar(200);not null"`
	ShipToCompany        *string `gorm:"type:varchar(200)"`
	ShipToAddress1       string  `gorm:"type:varchar(255);not null"`
	ShipToAddress2       *string `gorm:"type:varchar(255)"`
	ShipToAddress3       *string `gorm:"type:varchar(255)"`
	ShipToCity           string  `gorm:"type:varchar(100);not null"`
	ShipToState          string  `gorm:"type:varchar(2);not null"`
	ShipToPostalCode     string  `gorm:"type:varchar(5);not null"`
	ShipToCountry        string  `gorm:"type:varchar(100);not null"`
	ShipToPhone          *string `gorm:"type:varchar(50)"`
	ShipToEmail          *string `gorm:"type:varchar(255)"`
	Sku                  string  `gorm:"type:varchar(100);not null;index"`
	Quantity             int     `gorm:"not null"`
	RequestedWarehouse   string  `gorm:"type:varchar(100);not null"`
	DeliveryInstructions *string `gorm:"type:text"`
	Tags                 *string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseEntity: m.entity(),
		Details: order.Details{
			OrderNumber:          m.OrderNumber,
			AlternateOrderNumber: m.AlternateOrderNumber,
			OrderDate:            m.OrderDate,
			ShipToName:           m.ShipToName,
			ShipToCompany:        m.ShipToCompany,
			ShipToAddress1:       m.ShipToAddress1,
			ShipToAddress2:       m.ShipToAddress2,
			ShipToAddress3:       m.ShipToAddress3,
			ShipToCity:           m.ShipToCity,
			ShipToState:          m.ShipToState,
			ShipToPostalCode:     m.ShipToPostalCode,
			ShipToCountry:        m.ShipToCountry,
			ShipToPhone:          m.ShipToPhone,
			ShipToEmail:          m.ShipToEmail,
			Sku:                  m.Sku,
			Quantity:             m.Quantity,
			RequestedWarehouse:   m.RequestedWarehouse,
			DeliveryInstructions: m.DeliveryInstructions,
			Tags:                 m.Tags,
		},
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.BaseModel = baseModel(o.BaseEntity)
	d := o.Details
	m.OrderNumber = d.OrderNumber
	m.AlternateOrderNumber = d.AlternateOrderNumber
	m.OrderDate = d.OrderDate
	m.ShipToName = d.ShipToName
	m.ShipToCompany = d.ShipToCompany
	m.ShipToAddress1 = d.ShipToAddress1
	m.ShipToAddress2 = d.ShipToAddress2
	m.ShipToAddress3 = d.ShipToAddress3
	m.ShipToCity = d.ShipToCity
	m.ShipToState = d.ShipToState
	m.ShipToPostalCode = d.ShipToPostalCode
	m.ShipToCountry = d.ShipToCountry
	m.ShipToPhone = d.ShipToPhone
	m.ShipToEmail = d.ShipToEmail
	m.Sku = d.Sku
	m.Quantity = d.Quantity
	m.RequestedWarehouse = d.RequestedWarehouse
	m.DeliveryInstructions = d.DeliveryInstructions
	m.Tags = d.Tags
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
