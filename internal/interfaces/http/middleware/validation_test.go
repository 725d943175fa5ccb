package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/orderimport/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleOrder struct {
	OrderNumber      string `json:"order_number" binding:"required"`
	ShipToState      string `json:"ship_to_state" binding:"required,len=2"`
	ShipToPostalCode string `json:"ship_to_postal_code" binding:"required,numeric"`
	Quantity         int    `json:"quantity" binding:"required,gt=0"`
	ShipToEmail      string `json:"ship_to_email" binding:"omitempty,email"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/orders", func(c *gin.Context) {
		var req sampleOrder
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	t.Run("reports json field names", func(t *testing.T) {
		body := `{"ship_to_state":"ILL","ship_to_postal_code":"12a45","quantity":-1,"ship_to_email":"nope"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		req.Header.Set(RequestIDHeader, "req-v")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-v", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", messages["order_number"])
		assert.Equal(t, "Must be exactly 2 characters", messages["ship_to_state"])
		assert.Equal(t, "Must be numeric", messages["ship_to_postal_code"])
		assert.Equal(t, "Must be greater than 0", messages["quantity"])
		assert.Equal(t, "Invalid email format", messages["ship_to_email"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"quantity":"x"`)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Error.Details)
		assert.Contains(t, resp.Error.Message, "Request validation failed:")
	})

	t.Run("valid body passes", func(t *testing.T) {
		body := `{"order_number":"A","ship_to_state":"IL","ship_to_postal_code":"01234","quantity":2}`
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
