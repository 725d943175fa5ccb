package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/shared"
)

// OrderRepository is the persistence gateway for orders
type OrderRepository interface {
	// FindByID returns shared.ErrNotFound when no order has the id
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber returns shared.ErrNotFound when the business key is unknown
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// ExistsByOrderNumber reports whether an order with the business key is stored
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// FindAll returns a page of orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save inserts a single order
	Save(ctx context.Context, order *Order) error

	// Update persists changes to an existing order
	Update(ctx context.Context, order *Order) error

	// DeleteByID removes an order
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// SaveBatch inserts all orders atomically. An empty slice is a no-op.
	SaveBatch(ctx context.Context, orders []*Order) error
}

// ImportHistoryRepository stores the outcome of every import attempt
type ImportHistoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ImportHistory, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ImportHistory, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, history *ImportHistory) error
}
