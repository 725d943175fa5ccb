package csvimport

import (
	"strings"
	"unicode"
)

// Column names recognized in the header row
const (
	ColOrderNumber          = "OrderNumber"
	ColAlternateOrderNumber = "AlternateOrderNumber"
	ColOrderDate            = "OrderDate"
	ColShipToName           = "ShipToName"
	ColShipToCompany        = "ShipToCompany"
	ColShipToAddress1       = "ShipToAddress1"
	ColShipToAddress2       = "ShipToAddress2"
	ColShipToAddress3       = "ShipToAddress3"
	ColShipToCity           = "ShipToCity"
	ColShipToState          = "ShipToState"
	ColShipToPostalCode     = "ShipToPostalCode"
	ColShipToCountry        = "ShipToCountry"
	ColShipToPhone          = "ShipToPhone"
	ColShipToEmail          = "ShipToEmail"
	ColSku                  = "Sku"
	ColQuantity             = "Quantity"
	ColRequestedWarehouse   = "RequestedWarehouse"
	ColDeliveryInstructions = "DeliveryInstructions"
	ColTags                 = "Tags"
)

// Columns lists every recognized column in template order
var Columns = []string{
	ColOrderNumber,
	ColAlternateOrderNumber,
	ColOrderDate,
	ColShipToName,
	ColShipToCompany,
	ColShipToAddress1,
	ColShipToAddress2,
	ColShipToAddress3,
	ColShipToCity,
	ColShipToState,
	ColShipToPostalCode,
	ColShipToCountry,
	ColShipToPhone,
	ColShipToEmail,
	ColSku,
	ColQuantity,
	ColRequestedWarehouse,
	ColDeliveryInstructions,
	ColTags,
}

// CandidateOrder is an unvalidated order row with every field as text
type CandidateOrder struct {
	LineNumber           int
	OrderNumber          string
	AlternateOrderNumber string
	OrderDate            string
	ShipToName           string
	ShipToCompany        string
	ShipToAddress1       string
	ShipToAddress2       string
	ShipToAddress3       string
	ShipToCity           string
	ShipToState          string
	ShipToPostalCode     string
	ShipToCountry        string
	ShipToPhone          string
	ShipToEmail          string
	Sku                  string
	Quantity             string
	RequestedWarehouse   string
	DeliveryInstructions string
	Tags                 string
}

// Get returns the field for a column name, or "" for unknown columns
func (c *CandidateOrder) Get(column string) string {
	switch column {
	case ColOrderNumber:
		return c.OrderNumber
	case ColAlternateOrderNumber:
		return c.AlternateOrderNumber
	case ColOrderDate:
		return c.OrderDate
	case ColShipToName:
		return c.ShipToName
	case ColShipToCompany:
		return c.ShipToCompany
	case ColShipToAddress1:
		return c.ShipToAddress1
	case ColShipToAddress2:
		return c.ShipToAddress2
	case ColShipToAddress3:
		return c.ShipToAddress3
	case ColShipToCity:
		return c.ShipToCity
	case ColShipToState:
		return c.ShipToState
	case ColShipToPostalCode:
		return c.ShipToPostalCode
	case ColShipToCountry:
		return c.ShipToCountry
	case ColShipToPhone:
		return c.ShipToPhone
	case ColShipToEmail:
		return c.ShipToEmail
	case ColSku:
		return c.Sku
	case ColQuantity:
		return c.Quantity
	case ColRequestedWarehouse:
		return c.RequestedWarehouse
	case ColDeliveryInstructions:
		return c.DeliveryInstructions
	case ColTags:
		return c.Tags
	}
	return ""
}

// Normalize maps a raw row onto a CandidateOrder. Workbook cells formatted
// as dates come back with a time of day, so for XLSX input OrderDate is cut
// at the first whitespace.
func Normalize(rec *RawRecord, format Format) CandidateOrder {
	get := func(col string) string {
		return strings.TrimSpace(rec.Get(col))
	}

	c := CandidateOrder{
		LineNumber:           rec.LineNumber,
		OrderNumber:          get(ColOrderNumber),
		AlternateOrderNumber: get(ColAlternateOrderNumber),
		OrderDate:            get(ColOrderDate),
		ShipToName:           get(ColShipToName),
		ShipToCompany:        get(ColShipToCompany),
		ShipToAddress1:       get(ColShipToAddress1),
		ShipToAddress2:       get(ColShipToAddress2),
		ShipToAddress3:       get(ColShipToAddress3),
		ShipToCity:           get(ColShipToCity),
		ShipToState:          get(ColShipToState),
		ShipToPostalCode:     get(ColShipToPostalCode),
		ShipToCountry:        get(ColShipToCountry),
		ShipToPhone:          get(ColShipToPhone),
		ShipToEmail:          get(ColShipToEmail),
		Sku:                  get(ColSku),
		Quantity:             get(ColQuantity),
		RequestedWarehouse:   get(ColRequestedWarehouse),
		DeliveryInstructions: get(ColDeliveryInstructions),
		Tags:                 get(ColTags),
	}

	if format == FormatXLSX {
		c.OrderDate = stripTimeOfDay(c.OrderDate)
	}
	return c
}

func stripTimeOfDay(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}
