// Package orderapp serves single-order reads and edits next to the bulk
// importer. Both paths enforce the same Order invariants.
package orderapp

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/domain/shared"
	csvimport "github.com/orderimport/backend/internal/infrastructure/import"
	"github.com/orderimport/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrInvalidOrderDate is returned for an order date outside the accepted layouts
var ErrInvalidOrderDate = shared.NewDomainError(order.CodeInvalidOrder, "OrderDate is not a valid date (expected MM/DD/YYYY)")

// OrderService handles order-related business operations
type OrderService struct {
	orderRepo order.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// Create stores one order. A taken OrderNumber yields order.ErrOrderNumberTaken.
func (s *OrderService) Create(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	details, err := requestDetails(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.orderRepo.ExistsByOrderNumber(ctx, details.OrderNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, order.ErrOrderNumberTaken
	}

	o, err := order.NewOrder(details)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, o); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber))

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order by storage id
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its business key
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves a page of orders
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Sku != "" {
		domainFilter.Filters["sku"] = filter.Sku
	}
	if filter.RequestedWarehouse != "" {
		domainFilter.Filters["requested_warehouse"] = filter.RequestedWarehouse
	}
	if filter.ShipToState != "" {
		domainFilter.Filters["ship_to_state"] = filter.ShipToState
	}
	if filter.ShipToCountry != "" {
		domainFilter.Filters["ship_to_country"] = filter.ShipToCountry
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// Update replaces every business field of an order. Moving to an
// OrderNumber held by another order yields order.ErrOrderNumberTaken.
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req OrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := requestDetails(req)
	if err != nil {
		return nil, err
	}

	if details.OrderNumber != o.OrderNumber {
		existing, err := s.orderRepo.FindByOrderNumber(ctx, details.OrderNumber)
		switch {
		case err == nil && existing.ID != o.ID:
			return nil, order.ErrOrderNumberTaken
		case err != nil && !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}

	if err := o.Update(details); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// Delete removes an order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orderRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	logger.L(ctx).Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

func requestDetails(req OrderRequest) (order.Details, error) {
	orderDate := strings.TrimSpace(req.OrderDate)
	if orderDate != "" {
		canonical, err := csvimport.CanonicalizeDate(orderDate)
		if err != nil {
			return order.Details{}, ErrInvalidOrderDate
		}
		orderDate = canonical
	}
	return req.details(orderDate), nil
}
