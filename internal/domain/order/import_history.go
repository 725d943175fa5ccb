package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orderimport/backend/internal/domain/shared"
)

// ImportStatus represents the status of an import operation
type ImportStatus string

const (
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusRejected   ImportStatus = "rejected"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusProcessing, ImportStatusCompleted, ImportStatusRejected, ImportStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusRejected || s == ImportStatusFailed
}

// ImportHistory records the outcome of one uploaded batch
type ImportHistory struct {
	shared.BaseEntity
	FileName      string            `json:"file_name"`
	FileSize      int64             `json:"file_size"`
	Format        string            `json:"format"`
	TotalRows     int               `json:"total_rows"`
	ImportedRows  int               `json:"imported_rows"`
	RejectedRows  int               `json:"rejected_rows"`
	Status        ImportStatus      `json:"status"`
	ErrorDetails  []ValidationError `json:"error_details,omitempty"`
	FailureReason string            `json:"failure_reason,omitempty"`
	ArchiveKey    string            `json:"archive_key,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// NewImportHistory creates a new import history record in processing state
func NewImportHistory(fileName string, fileSize int64) (*ImportHistory, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	base := shared.NewBaseEntity()
	return &ImportHistory{
		BaseEntity:   base,
		FileName:     fileName,
		FileSize:     fileSize,
		Status:       ImportStatusProcessing,
		ErrorDetails: make([]ValidationError, 0),
		StartedAt:    base.CreatedAt,
	}, nil
}

// Complete marks the batch as committed
func (h *ImportHistory) Complete(totalRows, importedRows int, archiveKey string) error {
	if err := h.ensureProcessing(); err != nil {
		return err
	}
	h.TotalRows = totalRows
	h.ImportedRows = importedRows
	h.ArchiveKey = archiveKey
	h.finish(ImportStatusCompleted)
	return nil
}

// Reject marks the batch as refused because of validation errors
func (h *ImportHistory) Reject(totalRows int, errs []ValidationError) error {
	if err := h.ensureProcessing(); err != nil {
		return err
	}
	h.TotalRows = totalRows
	h.RejectedRows = len(errs)
	h.ErrorDetails = errs
	h.finish(ImportStatusRejected)
	return nil
}

// Fail marks the batch as aborted by an input or storage error
func (h *ImportHistory) Fail(reason string) error {
	if err := h.ensureProcessing(); err != nil {
		return err
	}
	h.FailureReason = reason
	h.finish(ImportStatusFailed)
	return nil
}

func (h *ImportHistory) ensureProcessing() error {
	if h.Status.IsTerminal() {
		return shared.ErrInvalidState.WithMessage("Cannot change import from terminal state: %s", h.Status)
	}
	return nil
}

func (h *ImportHistory) finish(status ImportStatus) {
	h.Status = status
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
}

// ErrorDetailsJSON returns the error details as a JSON string
func (h *ImportHistory) ErrorDetailsJSON() (string, error) {
	if len(h.ErrorDetails) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return "", fmt.Errorf("failed to marshal error details: %w", err)
	}
	return string(data), nil
}

// SetErrorDetailsFromJSON parses error details from a JSON string
func (h *ImportHistory) SetErrorDetailsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		h.ErrorDetails = make([]ValidationError, 0)
		return nil
	}
	var details []ValidationError
	if err := json.Unmarshal([]byte(jsonStr), &details); err != nil {
		return fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	h.ErrorDetails = details
	return nil
}

// Duration returns how long the import ran
func (h *ImportHistory) Duration() time.Duration {
	if h.CompletedAt == nil {
		return time.Since(h.StartedAt)
	}
	return h.CompletedAt.Sub(h.StartedAt)
}
