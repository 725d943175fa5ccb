package telemetry

import (
	"context"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profile label keys. Values must stay low cardinality: never put import or
// order ids here, those belong on spans.
const (
	ProfileLabelOperation = "operation"
	ProfileLabelFormat    = "import_format"
)

// maxProfileLabelValue caps label values
const maxProfileLabelValue = 64

// WithImportProfileLabels runs fn with the import operation and file format
// attached as profile labels, so CPU and allocation profiles can be split
// between CSV and workbook parsing.
func WithImportProfileLabels(ctx context.Context, format string, fn func(context.Context)) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "unknown"
	}
	if len(format) > maxProfileLabelValue {
		format = format[:maxProfileLabelValue]
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(
		ProfileLabelOperation, "order_import",
		ProfileLabelFormat, format,
	), fn)
}
