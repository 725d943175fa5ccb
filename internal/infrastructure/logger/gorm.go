package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultSlowThreshold = 200 * time.Millisecond
	// A batch insert of an import repeats one VALUES tuple per order
	defaultMaxSQLLength = 2048
)

// GormLogger routes GORM statements into zap, tagged with the request and
// import batch that issued them.
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	maxSQLLength  int
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which statements log as slow;
// zero disables slow statement logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithMaxSQLLength caps the logged statement text; zero logs it whole
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(l *GormLogger) {
		l.maxSQLLength = n
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		level:         level,
		slowThreshold: defaultSlowThreshold,
		maxSQLLength:  defaultMaxSQLLength,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MapGormLogLevel maps the database.log_level setting to a GORM level.
// Unknown names fall back to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.contextLogger(ctx).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.contextLogger(ctx).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.contextLogger(ctx).Sugar().Errorf(msg, data...)
	}
}

// contextLogger correlates a statement with the request, import batch and
// span that issued it.
func (l *GormLogger) contextLogger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.logger
	}
	lg := WithTraceContext(ctx, l.logger)
	if requestID := RequestID(ctx); requestID != "" {
		lg = lg.With(zap.String(FieldRequestID, requestID))
	}
	if importID := ImportID(ctx); importID != "" {
		lg = lg.With(zap.String(FieldImportID, importID))
	}
	return lg
}

func (l *GormLogger) statement(sql string) zap.Field {
	if l.maxSQLLength > 0 && len(sql) > l.maxSQLLength {
		return zap.String("sql", sql[:l.maxSQLLength]+"...")
	}
	return zap.String("sql", sql)
}

// Trace implements gormlogger.Interface. Failed statements log at error,
// slow ones at warn and the rest at debug. A missing record is an expected
// lookup outcome and is not logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	if err == nil && !(slow && l.level >= gormlogger.Warn) && l.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		l.statement(sql),
	}
	lg := l.contextLogger(ctx)

	switch {
	case err != nil:
		lg.Error("SQL failed", append(fields, zap.Error(err))...)
	case slow:
		lg.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	default:
		lg.Debug("SQL executed", fields...)
	}
}
