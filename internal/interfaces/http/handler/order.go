package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/orderimport/backend/internal/application/order"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles single-order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Create godoc
//
//	@Summary		Create an order
//	@Description	Creates one order. The order number must not already exist.
//	@Tags			orders
//	@ID				createOrder
//	@Accept			json
//	@Produce		json
//	@Param			request	body		orderapp.OrderRequest	true	"Order"
//	@Success		201		{object}	dto.Response{data=orderapp.OrderResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Failure		422		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Router			/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID godoc
//
//	@Summary		Get an order
//	@Tags			orders
//	@ID				getOrder
//	@Produce		json
//	@Param			id	path		string	true	"Order ID"	format(uuid)
//	@Success		200	{object}	dto.Response{data=orderapp.OrderResponse}
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByOrderNumber godoc
//
//	@Summary		Get an order by its order number
//	@Tags			orders
//	@ID				getOrderByNumber
//	@Produce		json
//	@Param			order_number	path		string	true	"Order number"
//	@Success		200		{object}	dto.Response{data=orderapp.OrderResponse}
//	@Failure		404		{object}	dto.Response
//	@Router			/orders/number/{order_number} [get]
func (h *OrderHandler) GetByOrderNumber(c *gin.Context) {
	resp, err := h.orderService.GetByOrderNumber(c.Request.Context(), c.Param("order_number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List godoc
//
//	@Summary		List orders
//	@Description	Returns a page of orders with optional search and filters
//	@Tags			orders
//	@ID				listOrders
//	@Produce		json
//	@Param			search				query		string	false	"Matches order number, SKU or recipient name"
//	@Param			sku					query		string	false	"Filter by SKU"
//	@Param			requested_warehouse	query		string	false	"Filter by warehouse"
//	@Param			ship_to_state		query		string	false	"Filter by two-letter state"
//	@Param			ship_to_country		query		string	false	"Filter by country"
//	@Param			page				query		int		false	"Page number (default: 1)"
//	@Param			page_size			query		int		false	"Page size (default: 20, max: 100)"
//	@Param			order_by			query		string	false	"Sort field"
//	@Param			order_dir			query		string	false	"asc or desc"
//	@Success		200					{object}	dto.Response{data=[]orderapp.OrderResponse}
//	@Failure		400					{object}	dto.Response
//	@Router			/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Update godoc
//
//	@Summary		Replace an order
//	@Tags			orders
//	@ID				updateOrder
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Order ID"	format(uuid)
//	@Param			request	body		orderapp.OrderRequest	true	"Order"
//	@Success		200		{object}	dto.Response{data=orderapp.OrderResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		409		{object}	dto.Response
//	@Router			/orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req orderapp.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
//
//	@Summary		Delete an order
//	@Tags			orders
//	@ID				deleteOrder
//	@Param			id	path	string	true	"Order ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *OrderHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, false
	}
	return id, true
}
