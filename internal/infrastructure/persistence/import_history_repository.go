package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/domain/shared"
	"github.com/orderimport/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormImportHistoryRepository implements ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

// FindByID finds an import history by ID
func (r *GormImportHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.ImportHistory, error) {
	var model models.ImportHistoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Import %s not found", id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns import histories with pagination and filtering, most recent first by default
func (r *GormImportHistoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.ImportHistory, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	query = query.Order(importHistorySort.orderBy(filter.OrderBy, filter.OrderDir))

	var rows []models.ImportHistoryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	histories := make([]order.ImportHistory, len(rows))
	for i := range rows {
		histories[i] = *rows[i].ToDomain()
	}
	return histories, nil
}

// Count counts import histories matching the filter
func (r *GormImportHistoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts the history or overwrites the stored copy with the same ID
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *order.ImportHistory) error {
	model, err := models.ImportHistoryModelFromDomain(history)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// applyFilters applies search and field filters
func (r *GormImportHistoryRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(file_name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "format":
			query = query.Where("format = ?", value)
		}
	}

	return query
}

// Ensure GormImportHistoryRepository implements ImportHistoryRepository
var _ order.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
