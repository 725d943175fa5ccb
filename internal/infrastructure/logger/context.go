package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Field names shared by the HTTP, import service and SQL logs
const (
	FieldRequestID = "request_id"
	FieldImportID  = "import_id"
	FieldFileName  = "file_name"
	FieldFormat    = "import_format"
)

type scopeKey struct{}

// scope is everything the logger package keeps in a context
type scope struct {
	logger    *zap.Logger
	requestID string
	importID  string
}

// ImportScope identifies one uploaded batch in the logs
type ImportScope struct {
	ID       string
	FileName string
	Format   string
}

func scopeFrom(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, s scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithContext attaches logger to ctx, keeping any request or import IDs
// already there.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	s := scopeFrom(ctx)
	s.logger = logger
	return withScope(ctx, s)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l := scopeFrom(ctx).logger; l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the HTTP request ID and returns the logger that
// carries it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeFrom(ctx)
	s.requestID = requestID
	s.logger = logger.With(zap.String(FieldRequestID, requestID))
	return withScope(ctx, s), s.logger
}

// WithImport records the batch being imported. Empty file name or format
// are left out of the log fields.
func WithImport(ctx context.Context, logger *zap.Logger, imp ImportScope) (context.Context, *zap.Logger) {
	fields := []zap.Field{zap.String(FieldImportID, imp.ID)}
	if imp.FileName != "" {
		fields = append(fields, zap.String(FieldFileName, imp.FileName))
	}
	if imp.Format != "" {
		fields = append(fields, zap.String(FieldFormat, imp.Format))
	}

	s := scopeFrom(ctx)
	s.importID = imp.ID
	s.logger = logger.With(fields...)
	return withScope(ctx, s), s.logger
}

// RequestID returns the request ID recorded in ctx
func RequestID(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ImportID returns the import batch ID recorded in ctx
func ImportID(ctx context.Context) string {
	return scopeFrom(ctx).importID
}

// WithTraceContext adds trace_id and span_id of the span in ctx, if any
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L returns the scoped logger from ctx correlated with the active span.
//
//	logger.L(ctx).Info("Order created", zap.String("order_number", n))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
