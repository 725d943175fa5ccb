package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
)

// ImportHistoryListRequest holds the import history query parameters
type ImportHistoryListRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=processing completed rejected failed"`
	Format   string `form:"format" binding:"omitempty,oneof=csv xlsx"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TemplateRequest selects the template encoding
type TemplateRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// ImportHistoryResponse is the API view of one import attempt
type ImportHistoryResponse struct {
	ID            uuid.UUID               `json:"id"`
	FileName      string                  `json:"file_name"`
	FileSize      int64                   `json:"file_size"`
	Format        string                  `json:"format"`
	Status        string                  `json:"status"`
	TotalRows     int                     `json:"total_rows"`
	ImportedRows  int                     `json:"imported_rows"`
	RejectedRows  int                     `json:"rejected_rows"`
	ErrorDetails  []order.ValidationError `json:"error_details,omitempty"`
	FailureReason string                  `json:"failure_reason,omitempty"`
	HasArchive    bool                    `json:"has_archive"`
	StartedAt     time.Time               `json:"started_at"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	DurationMs    int64                   `json:"duration_ms"`
}

// NewImportHistoryResponse converts a domain ImportHistory
func NewImportHistoryResponse(h *order.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:            h.ID,
		FileName:      h.FileName,
		FileSize:      h.FileSize,
		Format:        h.Format,
		Status:        string(h.Status),
		TotalRows:     h.TotalRows,
		ImportedRows:  h.ImportedRows,
		RejectedRows:  h.RejectedRows,
		ErrorDetails:  h.ErrorDetails,
		FailureReason: h.FailureReason,
		HasArchive:    h.ArchiveKey != "",
		StartedAt:     h.StartedAt,
		CompletedAt:   h.CompletedAt,
		DurationMs:    h.Duration().Milliseconds(),
	}
}

// NewImportHistoryResponses converts a page of histories
func NewImportHistoryResponses(items []order.ImportHistory) []ImportHistoryResponse {
	responses := make([]ImportHistoryResponse, len(items))
	for i := range items {
		responses[i] = NewImportHistoryResponse(&items[i])
	}
	return responses
}

// RecordDetails turns rejected import records into error details, in file order
func RecordDetails(errs []order.ValidationError) []ValidationDetail {
	details := make([]ValidationDetail, len(errs))
	for i, e := range errs {
		details[i] = ValidationDetail{
			OrderNumber: e.OrderNumber,
			Messages:    e.Messages,
		}
	}
	return details
}
