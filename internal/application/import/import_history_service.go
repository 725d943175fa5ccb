package importapp

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/domain/shared"
	"github.com/orderimport/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrArchiveNotFound is returned when an import has no archived upload
var ErrArchiveNotFound = shared.NewDomainError("ARCHIVE_NOT_FOUND", "No archived upload for this import")

// ErrArchiveUnavailable is returned when archiving is not configured
var ErrArchiveUnavailable = shared.NewDomainError("ARCHIVE_UNAVAILABLE", "Upload archiving is not enabled")

// ErrNoRejectedRecords is returned when an error report is requested for an
// import that rejected nothing
var ErrNoRejectedRecords = shared.ErrInvalidState.WithMessage("This import has no rejected records")

// ArchiveReader gives access to archived uploads
type ArchiveReader interface {
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// ArchiveLink is a time-limited download link to an archived upload
type ArchiveLink struct {
	ImportID  uuid.UUID `json:"import_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ImportHistoryService serves the record of past import attempts
type ImportHistoryService struct {
	historyRepo order.ImportHistoryRepository
	archive     ArchiveReader
	linkTTL     time.Duration
}

// ImportHistoryServiceOption configures an ImportHistoryService
type ImportHistoryServiceOption func(*ImportHistoryService)

// WithArchive enables the archive link and purge operations
func WithArchive(archive ArchiveReader, linkTTL time.Duration) ImportHistoryServiceOption {
	return func(s *ImportHistoryService) {
		s.archive = archive
		s.linkTTL = linkTTL
	}
}

// NewImportHistoryService creates a new ImportHistoryService
func NewImportHistoryService(historyRepo order.ImportHistoryRepository, opts ...ImportHistoryServiceOption) *ImportHistoryService {
	s := &ImportHistoryService{
		historyRepo: historyRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHistory retrieves a specific import history by ID
func (s *ImportHistoryService) GetHistory(ctx context.Context, historyID uuid.UUID) (*order.ImportHistory, error) {
	return s.historyRepo.FindByID(ctx, historyID)
}

// ListHistory retrieves import history with pagination. A "status" entry in
// filter.Filters is dropped unless it names a known status.
func (s *ImportHistoryService) ListHistory(ctx context.Context, filter shared.Filter) (shared.Paginated[order.ImportHistory], error) {
	if status, ok := filter.Filters["status"].(string); ok {
		if !order.ImportStatus(status).IsValid() {
			delete(filter.Filters, "status")
		}
	}

	items, err := s.historyRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[order.ImportHistory]{}, fmt.Errorf("failed to list import history: %w", err)
	}
	total, err := s.historyRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[order.ImportHistory]{}, fmt.Errorf("failed to count import history: %w", err)
	}

	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ArchiveDownloadURL returns a presigned link to the archived upload of a
// completed import.
func (s *ImportHistoryService) ArchiveDownloadURL(ctx context.Context, historyID uuid.UUID) (*ArchiveLink, error) {
	h, err := s.archivedHistory(ctx, historyID)
	if err != nil {
		return nil, err
	}

	exists, err := s.archive.ObjectExists(ctx, h.ArchiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check archive: %w", err)
	}
	if !exists {
		return nil, ErrArchiveNotFound
	}

	url, expiresAt, err := s.archive.GenerateDownloadURL(ctx, h.ArchiveKey, s.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate archive link: %w", err)
	}

	return &ArchiveLink{
		ImportID:  h.ID,
		FileName:  h.FileName,
		URL:       url,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteArchive removes the archived upload and clears the reference on the
// history record. The imported orders are untouched.
func (s *ImportHistoryService) DeleteArchive(ctx context.Context, historyID uuid.UUID) error {
	h, err := s.archivedHistory(ctx, historyID)
	if err != nil {
		return err
	}

	if err := s.archive.DeleteObject(ctx, h.ArchiveKey); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}

	key := h.ArchiveKey
	h.ArchiveKey = ""
	h.Touch()
	if err := s.historyRepo.Save(ctx, h); err != nil {
		return fmt.Errorf("failed to update import history: %w", err)
	}

	logger.L(ctx).Info("Import archive deleted",
		zap.String(logger.FieldImportID, h.ID.String()),
		zap.String("archive_key", key))
	return nil
}

// ErrorReportCSV renders the rejected records of an import as CSV, one row per
// message, and a download file name.
func (s *ImportHistoryService) ErrorReportCSV(ctx context.Context, historyID uuid.UUID) ([]byte, string, error) {
	h, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return nil, "", err
	}
	if len(h.ErrorDetails) == 0 {
		return nil, "", ErrNoRejectedRecords
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"OrderNumber", "Message"}); err != nil {
		return nil, "", fmt.Errorf("failed to write error report: %w", err)
	}
	for _, e := range h.ErrorDetails {
		for _, msg := range e.Messages {
			if err := w.Write([]string{e.OrderNumber, msg}); err != nil {
				return nil, "", fmt.Errorf("failed to write error report: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to write error report: %w", err)
	}

	fileName := fmt.Sprintf("import_errors_%s.csv", h.ID.String()[:8])
	return buf.Bytes(), fileName, nil
}

func (s *ImportHistoryService) archivedHistory(ctx context.Context, historyID uuid.UUID) (*order.ImportHistory, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	h, err := s.historyRepo.FindByID(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if h.ArchiveKey == "" {
		return nil, ErrArchiveNotFound
	}
	return h, nil
}
