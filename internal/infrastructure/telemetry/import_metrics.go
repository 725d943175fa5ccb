package telemetry

import (
	"context"
	"time"

	"github.com/orderimport/backend/internal/domain/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrFormat = attribute.Key("format")
	AttrStatus = attribute.Key("status")
)

// Metric names
const (
	MetricImportsTotal   = "oimp_order_imports_total"
	MetricRowsTotal      = "oimp_order_import_rows_total"
	MetricOrdersImported = "oimp_orders_imported_total"
	MetricImportDuration = "oimp_order_import_duration_seconds"
)

var importDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ImportMetrics counts import outcomes and times each batch.
type ImportMetrics struct {
	imports  *Counter
	rows     *Counter
	orders   *Counter
	duration *Histogram
}

// NewImportMetrics registers the import instruments on meter.
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	imports, err := NewCounter(meter, MetricImportsTotal, "Import attempts by format and outcome", "{imports}")
	if err != nil {
		return nil, err
	}
	rows, err := NewCounter(meter, MetricRowsTotal, "Data rows read from uploaded files", "{rows}")
	if err != nil {
		return nil, err
	}
	orders, err := NewCounter(meter, MetricOrdersImported, "Orders stored by committed imports", "{orders}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        MetricImportDuration,
		Description: "Time to parse, validate and store one upload",
		Unit:        "s",
		Buckets:     importDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ImportMetrics{imports: imports, rows: rows, orders: orders, duration: duration}, nil
}

// RecordImport records one finished import.
func (m *ImportMetrics) RecordImport(
	ctx context.Context,
	format string,
	status order.ImportStatus,
	totalRows, importedRows int,
	duration time.Duration,
) {
	if format == "" {
		format = "unknown"
	}
	attrs := []attribute.KeyValue{AttrFormat.String(format), AttrStatus.String(string(status))}

	m.imports.Inc(ctx, attrs...)
	m.rows.Add(ctx, int64(totalRows), attrs...)
	if importedRows > 0 {
		m.orders.Add(ctx, int64(importedRows), AttrFormat.String(format))
	}
	m.duration.RecordDuration(ctx, duration, attrs...)
}
