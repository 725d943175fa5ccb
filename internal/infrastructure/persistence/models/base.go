package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ErrMissingID rejects a row that was not built from a domain entity
var ErrMissingID = errors.New("models: row has no id")

// BaseModel holds the id and audit columns of the orders and
// import_histories tables. Its fields mirror shared.BaseEntity one to one.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate refuses inserts without an id. Orders and import histories
// get their ids from the domain constructors, never from the database.
func (m *BaseModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		return ErrMissingID
	}
	return nil
}

func (m BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity(m)
}

func baseModel(e shared.BaseEntity) BaseModel {
	return BaseModel(e)
}
