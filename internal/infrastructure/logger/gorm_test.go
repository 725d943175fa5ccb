package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlText(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewGormLogger_Defaults(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Warn)
	assert.Equal(t, defaultSlowThreshold, l.slowThreshold)
	assert.Equal(t, defaultMaxSQLLength, l.maxSQLLength)

	l, _ = newObservedGorm(gormlogger.Warn, WithSlowThreshold(time.Second), WithMaxSQLLength(0))
	assert.Equal(t, time.Second, l.slowThreshold)
	assert.Zero(t, l.maxSQLLength)
}

func TestGormLogger_LogModeReturnsCopy(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Info)

	quiet, ok := l.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, quiet.level)
	assert.Equal(t, gormlogger.Info, l.level)
}

func TestGormLogger_MessagesRespectLevel(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	l.Info(ctx, "migrated %d tables", 2)
	l.Warn(ctx, "pool exhausted: %d", 25)
	l.Error(ctx, "connection lost")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "pool exhausted: 25", logs[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
	assert.Equal(t, "gorm", logs[0].LoggerName)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		elapsed time.Duration
		err     error
		wantMsg string
		wantLvl zapcore.Level
	}{
		{"failed insert", gormlogger.Error, 0, errors.New("duplicate key"), "SQL failed", zapcore.ErrorLevel},
		{"slow batch", gormlogger.Warn, time.Second, nil, "Slow SQL", zapcore.WarnLevel},
		{"plain query at info", gormlogger.Info, 0, nil, "SQL executed", zapcore.DebugLevel},
		{"plain query at warn", gormlogger.Warn, 0, nil, "", 0},
		{"slow query at error", gormlogger.Error, time.Second, nil, "", 0},
		{"silent", gormlogger.Silent, time.Second, errors.New("boom"), "", 0},
		{"record not found", gormlogger.Info, 0, gormlogger.ErrRecordNotFound, "SQL executed", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, recorded := newObservedGorm(tt.level)
			begin := time.Now().Add(-tt.elapsed)

			l.Trace(context.Background(), begin, sqlText(`INSERT INTO "orders" ("order_number") VALUES ('A1')`, 1), tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, recorded.Len())
				return
			}
			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.wantMsg, entry.Message)
			assert.Equal(t, tt.wantLvl, entry.Level)
			assert.EqualValues(t, 1, entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_TraceTruncatesBatchInsert(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Info, WithMaxSQLLength(64))

	values := strings.Repeat("('ORD-1','SKU-1',1),", 200)
	l.Trace(context.Background(), time.Now(), sqlText(`INSERT INTO "orders" VALUES `+values, 200), nil)

	sql, ok := recorded.All()[0].ContextMap()["sql"].(string)
	require.True(t, ok)
	assert.Len(t, sql, 64+len("..."))
	assert.True(t, strings.HasPrefix(sql, `INSERT INTO "orders"`))
}

func TestGormLogger_TraceCarriesImportScope(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Warn)

	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")
	ctx, _ = WithImport(ctx, zap.NewNop(), ImportScope{ID: "imp-42"})
	l.Trace(ctx, time.Now(), sqlText(`INSERT INTO "orders" ("order_number") VALUES ('A')`, 0), errors.New("deadlock detected"))
	l.Warn(ctx, "pool exhausted: %d", 25)

	require.Equal(t, 2, recorded.Len())
	for _, entry := range recorded.All() {
		fields := entry.ContextMap()
		assert.Equal(t, "req-9", fields[FieldRequestID])
		assert.Equal(t, "imp-42", fields[FieldImportID])
	}
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"ERROR", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), tt.level)
	}
}
