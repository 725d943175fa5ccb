package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func spanContext(t *testing.T, ctx context.Context) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("b7ad6b7169203331")
	require.NoError(t, err)
	return trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

func TestFromContext_WithoutLoggerIsNop(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("dropped") })
}

func TestWithContext_RoundTrip(t *testing.T) {
	log, _ := observedLogger()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestWithRequestID_ThenImport(t *testing.T) {
	base, recorded := observedLogger()

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, imp := WithImport(ctx, FromContext(ctx), ImportScope{ID: "imp-7", FileName: "march.xlsx", Format: "xlsx"})

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "imp-7", ImportID(ctx))
	assert.Same(t, imp, FromContext(ctx))

	L(ctx).Info("Batch saved")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields[FieldRequestID])
	assert.Equal(t, "imp-7", fields[FieldImportID])
	assert.Equal(t, "march.xlsx", fields[FieldFileName])
	assert.Equal(t, "xlsx", fields[FieldFormat])
}

func TestWithImport_OmitsEmptyFileAndFormat(t *testing.T) {
	base, recorded := observedLogger()

	_, log := WithImport(context.Background(), base, ImportScope{ID: "imp-8"})
	log.Info("Import started")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "imp-8", fields[FieldImportID])
	assert.NotContains(t, fields, FieldFileName)
	assert.NotContains(t, fields, FieldFormat)
}

func TestWithContext_KeepsScopeIDs(t *testing.T) {
	base, _ := observedLogger()

	ctx, _ := WithRequestID(context.Background(), base, "req-2")
	ctx, _ = WithImport(ctx, base, ImportScope{ID: "imp-9"})
	ctx = WithContext(ctx, zap.NewNop())

	assert.Equal(t, "req-2", RequestID(ctx))
	assert.Equal(t, "imp-9", ImportID(ctx))
}

func TestScopeIDs_EmptyWithoutScope(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	assert.Empty(t, ImportID(context.Background()))
}

func TestL_AddsActiveSpan(t *testing.T) {
	base, recorded := observedLogger()
	ctx := spanContext(t, WithContext(context.Background(), base))

	L(ctx).Warn("Row rejected")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", fields["trace_id"])
	assert.Equal(t, "b7ad6b7169203331", fields["span_id"])
}

func TestWithTraceContext_WithoutSpan(t *testing.T) {
	base, recorded := observedLogger()

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	invalid := trace.ContextWithSpanContext(context.Background(), trace.SpanContext{})
	WithTraceContext(invalid, base).Info("no span")
	assert.NotContains(t, recorded.All()[0].ContextMap(), "trace_id")
}
