package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderModel_TableName(t *testing.T) {
	assert.Equal(t, "orders", OrderModel{}.TableName())
}

func TestOrderModel_RoundTrip(t *testing.T) {
	date := "01/15/2024"
	o, err := order.NewOrder(order.Details{
		OrderNumber:        "ORD-1",
		OrderDate:          &date,
		ShipToName:         "Jane Doe",
		ShipToAddress1:     "1 Main St",
		ShipToAddress2:     order.StringPtr("Suite 4"),
		ShipToCity:         "Springfield",
		ShipToState:        "IL",
		ShipToPostalCode:   "01234",
		ShipToCountry:      "US",
		Sku:                "SKU-9",
		Quantity:           3,
		RequestedWarehouse: "WH1",
	})
	require.NoError(t, err)

	model := OrderModelFromDomain(o)
	assert.Equal(t, o.ID, model.ID)
	assert.Equal(t, "ORD-1", model.OrderNumber)
	assert.Equal(t, "01234", model.ShipToPostalCode)
	assert.Nil(t, model.ShipToCompany)

	back := model.ToDomain()
	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, o.Details, back.Details)
}

func TestImportHistoryModel_TableName(t *testing.T) {
	assert.Equal(t, "order_import_histories", ImportHistoryModel{}.TableName())
}

func TestImportHistoryModel_RoundTrip(t *testing.T) {
	h, err := order.NewImportHistory("orders.csv", 128)
	require.NoError(t, err)
	h.Format = "csv"
	require.NoError(t, h.Reject(2, []order.ValidationError{
		{OrderNumber: "A1", Messages: []string{"Sku is required"}},
	}))

	model, err := ImportHistoryModelFromDomain(h)
	require.NoError(t, err)
	assert.Equal(t, order.ImportStatusRejected, model.Status)
	assert.JSONEq(t, `[{"order_number":"A1","messages":["Sku is required"]}]`, model.ErrorDetails)

	back := model.ToDomain()
	assert.Equal(t, h.ID, back.ID)
	assert.Equal(t, 2, back.TotalRows)
	assert.Equal(t, 1, back.RejectedRows)
	require.Len(t, back.ErrorDetails, 1)
	assert.Equal(t, "A1", back.ErrorDetails[0].OrderNumber)
	require.NotNil(t, back.CompletedAt)
}

func TestImportHistoryModel_ToDomain_BadDetails(t *testing.T) {
	model := &ImportHistoryModel{
		BaseModel:    BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		FileName:     "x.csv",
		Status:       order.ImportStatusFailed,
		ErrorDetails: "{not json",
	}

	h := model.ToDomain()
	assert.Empty(t, h.ErrorDetails)
	assert.Equal(t, order.ImportStatusFailed, h.Status)
}

func TestBaseModel_BeforeCreateRequiresDomainID(t *testing.T) {
	assert.ErrorIs(t, (&OrderModel{OrderNumber: "ORD-1"}).BeforeCreate(nil), ErrMissingID)

	o, err := order.NewOrder(order.Details{
		OrderNumber:        "ORD-2",
		ShipToName:         "Jane Doe",
		ShipToAddress1:     "1 Main St",
		ShipToCity:         "Springfield",
		ShipToState:        "IL",
		ShipToPostalCode:   "01234",
		ShipToCountry:      "US",
		Sku:                "SKU-9",
		Quantity:           1,
		RequestedWarehouse: "WH-1",
	})
	require.NoError(t, err)

	model := OrderModelFromDomain(o)
	assert.NoError(t, model.BeforeCreate(nil))
	assert.Equal(t, o.BaseEntity, model.entity())
}
