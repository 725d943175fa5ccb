package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/domain/shared"
	csvimport "github.com/orderimport/backend/internal/infrastructure/import"
	"github.com/orderimport/backend/internal/infrastructure/logger"
	"github.com/orderimport/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxFileSize is the upload limit used when none is configured (10 MiB)
const DefaultMaxFileSize int64 = 10 << 20

// ErrDuplicateSubmission is returned when an idempotency key was already used
// for a committed import
var ErrDuplicateSubmission = shared.NewDomainError("DUPLICATE_SUBMISSION", "This upload has already been imported")

// ArchiveStorage keeps a copy of accepted uploads
type ArchiveStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// MetricsRecorder receives one observation per finished import
type MetricsRecorder interface {
	RecordImport(ctx context.Context, format string, status order.ImportStatus, totalRows, importedRows int, duration time.Duration)
}

// ImportBatchInput is one uploaded file
type ImportBatchInput struct {
	Data           []byte
	FileName       string
	IdempotencyKey string
}

// ImportResult describes a committed batch
type ImportResult struct {
	ImportID      uuid.UUID `json:"import_id"`
	FileName      string    `json:"file_name"`
	Format        string    `json:"format"`
	TotalRows     int       `json:"total_rows"`
	ImportedCount int       `json:"imported_count"`
	OrderNumbers  []string  `json:"order_numbers"`
	ArchiveKey    string    `json:"archive_key,omitempty"`
}

// OrderImportService imports order files as a single all-or-nothing batch
type OrderImportService struct {
	orderRepo      order.OrderRepository
	historyRepo    order.ImportHistoryRepository
	archive        ArchiveStorage
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        MetricsRecorder
	logger         *zap.Logger
	maxFileSize    int64
	parserOpts     []csvimport.ParserOption
}

// OrderImportServiceOption is a functional option for OrderImportService
type OrderImportServiceOption func(*OrderImportService)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) OrderImportServiceOption {
	return func(s *OrderImportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryRepository records every import attempt
func WithHistoryRepository(repo order.ImportHistoryRepository) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.historyRepo = repo
	}
}

// WithArchiveStorage archives accepted uploads
func WithArchiveStorage(archive ArchiveStorage) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.archive = archive
	}
}

// WithIdempotencyStore refuses uploads whose idempotency key was already
// committed within ttl
func WithIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.idempotency = store
		if ttl > 0 {
			s.idempotencyTTL = ttl
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m MetricsRecorder) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.metrics = m
	}
}

// WithMaxFileSize sets the upload size limit in bytes
func WithMaxFileSize(n int64) OrderImportServiceOption {
	return func(s *OrderImportService) {
		if n > 0 {
			s.maxFileSize = n
		}
	}
}

// WithParserOptions passes options through to the record reader
func WithParserOptions(opts ...csvimport.ParserOption) OrderImportServiceOption {
	return func(s *OrderImportService) {
		s.parserOpts = append(s.parserOpts, opts...)
	}
}

// NewOrderImportService creates a new OrderImportService
func NewOrderImportService(orderRepo order.OrderRepository, opts ...OrderImportServiceOption) *OrderImportService {
	s := &OrderImportService{
		orderRepo:      orderRepo,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:         zap.NewNop(),
		maxFileSize:    DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxFileSize returns the configured upload limit
func (s *OrderImportService) MaxFileSize() int64 {
	return s.maxFileSize
}

// ImportBatch parses, validates and stores every order in the file. Nothing
// is stored unless every record is valid.
//
// Errors: csvimport input errors for unreadable files,
// *order.ValidationFailure when any record is invalid, ErrDuplicateSubmission
// for a reused idempotency key, and wrapped repository errors otherwise.
func (s *OrderImportService) ImportBatch(ctx context.Context, input ImportBatchInput) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_import", "import_batch")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrFileName, input.FileName,
		telemetry.SpanAttrFileSize, len(input.Data),
	)

	startedAt := time.Now()
	history, err := order.NewImportHistory(historyFileName(input.FileName), int64(len(input.Data)))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrImportID, history.ID.String())

	format, _ := csvimport.DetectFormat(input.FileName)
	ctx, log := logger.WithImport(ctx, s.logger, logger.ImportScope{
		ID:       history.ID.String(),
		FileName: input.FileName,
		Format:   string(format),
	})

	var result *ImportResult
	telemetry.WithImportProfileLabels(ctx, string(format), func(ctx context.Context) {
		result, err = s.importBatch(ctx, input, history, log)
	})

	s.finish(ctx, history, err, log)
	if s.metrics != nil {
		s.metrics.RecordImport(ctx, history.Format, history.Status, history.TotalRows, history.ImportedRows, time.Since(startedAt))
	}

	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTotalRows, result.TotalRows,
		telemetry.SpanAttrImportedRows, result.ImportedCount,
	)
	telemetry.SetOK(span)
	return result, nil
}

func (s *OrderImportService) importBatch(
	ctx context.Context,
	input ImportBatchInput,
	history *order.ImportHistory,
	log *zap.Logger,
) (*ImportResult, error) {
	if len(input.Data) == 0 {
		return nil, csvimport.ErrEmptyInput
	}
	if int64(len(input.Data)) > s.maxFileSize {
		return nil, csvimport.ErrFileTooLarge
	}

	if err := s.checkIdempotency(ctx, input.IdempotencyKey, log); err != nil {
		return nil, err
	}

	reader, err := csvimport.NewRecordReader(input.Data, input.FileName, s.parserOpts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			log.Warn("Failed to close record reader", zap.Error(cerr))
		}
	}()
	history.Format = string(reader.Format())

	validator := csvimport.NewOrderValidator(s.orderRepo.ExistsByOrderNumber)
	seen := make(map[string]struct{})
	accepted := make([]*order.Order, 0)
	var failures []order.ValidationError
	total := 0

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		total++

		candidate := csvimport.Normalize(rec, reader.Format())
		o, messages, err := validator.Validate(ctx, candidate, seen)
		if err != nil {
			return nil, fmt.Errorf("failed to validate line %d: %w", rec.LineNumber, err)
		}

		// A number counts as seen whether or not its record passed, so a later
		// repeat is always flagged.
		if candidate.OrderNumber != "" {
			seen[candidate.OrderNumber] = struct{}{}
		}

		if len(messages) > 0 {
			failures = append(failures, order.ValidationError{
				OrderNumber: candidate.OrderNumber,
				Messages:    messages,
			})
			continue
		}
		accepted = append(accepted, o)
	}
	history.TotalRows = total

	if len(failures) > 0 {
		log.Info("Order import rejected",
			zap.Int("total_rows", total),
			zap.Int("rejected_rows", len(failures)))
		return nil, order.NewValidationFailure(failures)
	}

	result := &ImportResult{
		ImportID:     history.ID,
		FileName:     input.FileName,
		Format:       string(reader.Format()),
		TotalRows:    total,
		OrderNumbers: make([]string, 0, len(accepted)),
	}

	if len(accepted) == 0 {
		log.Info("Order import contained no records")
		return result, nil
	}

	if err := s.orderRepo.SaveBatch(ctx, accepted); err != nil {
		log.Error("Failed to store order batch", zap.Error(err))
		return nil, fmt.Errorf("failed to save orders: %w", err)
	}

	for _, o := range accepted {
		result.OrderNumbers = append(result.OrderNumbers, o.OrderNumber)
	}
	result.ImportedCount = len(accepted)

	s.markProcessed(ctx, input.IdempotencyKey, log)
	result.ArchiveKey = s.archiveUpload(ctx, history, input, log)

	log.Info("Order import completed",
		zap.Int("total_rows", total),
		zap.Int("imported_rows", result.ImportedCount))
	return result, nil
}

func (s *OrderImportService) checkIdempotency(ctx context.Context, key string, log *zap.Logger) error {
	if s.idempotency == nil || key == "" {
		return nil
	}
	processed, err := s.idempotency.IsProcessed(ctx, idempotencyKey(key))
	if err != nil {
		// The unique index on order_number still guards against double inserts.
		log.Warn("Idempotency check failed, continuing", zap.Error(err))
		return nil
	}
	if processed {
		return ErrDuplicateSubmission
	}
	return nil
}

func (s *OrderImportService) markProcessed(ctx context.Context, key string, log *zap.Logger) {
	if s.idempotency == nil || key == "" {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, idempotencyKey(key), s.idempotencyTTL); err != nil {
		log.Warn("Failed to record idempotency key", zap.Error(err))
	}
}

func (s *OrderImportService) archiveUpload(ctx context.Context, history *order.ImportHistory, input ImportBatchInput, log *zap.Logger) string {
	if s.archive == nil {
		return ""
	}
	key := ArchiveKey(history.ID, input.FileName, history.StartedAt)
	if err := s.archive.Upload(ctx, key, input.Data, contentType(history.Format)); err != nil {
		log.Warn("Failed to archive upload", zap.String("archive_key", key), zap.Error(err))
		return ""
	}
	history.ArchiveKey = key
	return key
}

// finish moves the history record to its terminal state and stores it. A
// failure here is logged and never replaces the import's own outcome.
func (s *OrderImportService) finish(ctx context.Context, history *order.ImportHistory, importErr error, log *zap.Logger) {
	var err error
	if vf, ok := order.AsValidationFailure(importErr); ok {
		err = history.Reject(history.TotalRows, vf.Errors)
	} else if importErr != nil {
		err = history.Fail(importErr.Error())
	} else {
		err = history.Complete(history.TotalRows, history.TotalRows, history.ArchiveKey)
	}
	if err != nil {
		log.Warn("Failed to finish import history", zap.Error(err))
		return
	}

	if s.historyRepo == nil {
		return
	}
	if err := s.historyRepo.Save(ctx, history); err != nil {
		log.Warn("Failed to save import history", zap.Error(err))
	}
}

// ArchiveKey builds the object key for an archived upload:
// imports/orders/YYYY/MM/DD/<import-id>/<file>
func ArchiveKey(importID uuid.UUID, fileName string, at time.Time) string {
	return path.Join("imports", "orders", at.UTC().Format("2006/01/02"), importID.String(), historyFileName(fileName))
}

func historyFileName(fileName string) string {
	base := path.Base(fileName)
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}

func idempotencyKey(key string) string {
	return "order_import:" + key
}

func contentType(format string) string {
	switch csvimport.Format(format) {
	case csvimport.FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}
