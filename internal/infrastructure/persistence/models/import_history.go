package models

import (
	"time"

	"github.com/orderimport/backend/internal/domain/order"
)

// ImportHistoryModel is the persistence model for the ImportHistory domain entity.
type ImportHistoryModel struct {
	BaseModel
	FileName      string             `gorm:"type:varchar(255);not null"`
	FileSize      int64              `gorm:"not null;default:0"`
	Format        string             `gorm:"type:varchar(10)"`
	TotalRows     int                `gorm:"not null;default:0"`
	ImportedRows  int                `gorm:"not null;default:0"`
	RejectedRows  int                `gorm:"not null;default:0"`
	Status        order.ImportStatus `gorm:"type:varchar(20);not null;default:'processing';index"`
	ErrorDetails  string             `gorm:"type:jsonb;default:'[]'"`
	FailureReason string             `gorm:"type:text"`
	ArchiveKey    string             `gorm:"type:varchar(500)"`
	StartedAt     time.Time          `gorm:"not null"`
	CompletedAt   *time.Time
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "order_import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory entity.
// Malformed error details are dropped rather than failing the read.
func (m *ImportHistoryModel) ToDomain() *order.ImportHistory {
	history := &order.ImportHistory{
		BaseEntity:    m.entity(),
		FileName:      m.FileName,
		FileSize:      m.FileSize,
		Format:        m.Format,
		TotalRows:     m.TotalRows,
		ImportedRows:  m.ImportedRows,
		RejectedRows:  m.RejectedRows,
		Status:        m.Status,
		FailureReason: m.FailureReason,
		ArchiveKey:    m.ArchiveKey,
		StartedAt:     m.StartedAt,
		CompletedAt:   m.CompletedAt,
	}
	if err := history.SetErrorDetailsFromJSON(m.ErrorDetails); err != nil {
		history.ErrorDetails = make([]order.ValidationError, 0)
	}
	return history
}

// FromDomain populates the persistence model from a domain ImportHistory.
func (m *ImportHistoryModel) FromDomain(h *order.ImportHistory) error {
	details, err := h.ErrorDetailsJSON()
	if err != nil {
		return err
	}
	m.BaseModel = baseModel(h.BaseEntity)
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.Format = h.Format
	m.TotalRows = h.TotalRows
	m.ImportedRows = h.ImportedRows
	m.RejectedRows = h.RejectedRows
	m.Status = h.Status
	m.ErrorDetails = details
	m.FailureReason = h.FailureReason
	m.ArchiveKey = h.ArchiveKey
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt
	return nil
}

// ImportHistoryModelFromDomain creates a new persistence model from a domain ImportHistory.
func ImportHistoryModelFromDomain(h *order.ImportHistory) (*ImportHistoryModel, error) {
	m := &ImportHistoryModel{}
	if err := m.FromDomain(h); err != nil {
		return nil, err
	}
	return m, nil
}
