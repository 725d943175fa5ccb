package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/domain/shared"
	"github.com/orderimport/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// DefaultOrderBatchSize is the number of rows per INSERT statement in SaveBatch
const DefaultOrderBatchSize = 500

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db        *gorm.DB
	batchSize int
}

// OrderRepositoryOption is a functional option for GormOrderRepository
type OrderRepositoryOption func(*GormOrderRepository)

// WithBatchSize sets how many rows go into one INSERT statement
func WithBatchSize(size int) OrderRepositoryOption {
	return func(r *GormOrderRepository) {
		if size > 0 {
			r.batchSize = size
		}
	}
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB, opts ...OrderRepositoryOption) *GormOrderRepository {
	r := &GormOrderRepository{db: db, batchSize: DefaultOrderBatchSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Order %s not found", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its business key
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("OrderNumber %s not found", orderNumber)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByOrderNumber checks if an order with the given business key exists
func (r *GormOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a single order
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error; err != nil {
		return translateOrderError(err)
	}
	return nil
}

// Update persists changes to an existing order
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(models.OrderModelFromDomain(o))
	if result.Error != nil {
		return translateOrderError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByID removes an order
func (r *GormOrderRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveBatch inserts every order inside one transaction, so either all rows
// land or none do. An empty slice never touches the database.
func (r *GormOrderRepository) SaveBatch(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	rows := make([]*models.OrderModel, len(orders))
	for i, o := range orders {
		rows[i] = models.OrderModelFromDomain(o)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("bulk insert of %d orders: %w", len(orders), translateOrderError(err))
	}
	return nil
}

// translateOrderError maps a unique violation on order_number to the domain error.
// Requires gorm.Config.TranslateError.
func translateOrderError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(order.ErrOrderNumberTaken, err)
	}
	return err
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return query.Order(orderSort.orderBy(filter.OrderBy, filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(ship_to_name) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "sku":
			query = query.Where("sku = ?", value)
		case "requested_warehouse":
			query = query.Where("requested_warehouse = ?", value)
		case "ship_to_state":
			query = query.Where("ship_to_state = ?", value)
		case "ship_to_country":
			query = query.Where("ship_to_country = ?", value)
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
