package persistence

import (
	"fmt"
	"time"

	"github.com/orderimport/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the orders store connection shared by the repositories
type Database struct {
	DB *gorm.DB
}

// SetupHook runs against the verified connection, e.g. to register tracing
// callbacks. An error aborts Open and closes the connection.
type SetupHook func(db *gorm.DB) error

// OpenOption configures Open
type OpenOption func(*openOptions)

type openOptions struct {
	logger logger.Interface
	hooks  []SetupHook
}

// WithGormLogger routes statement logging through l. Silent by default.
func WithGormLogger(l logger.Interface) OpenOption {
	return func(o *openOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSetupHooks appends hooks that run in order once the connection is up
func WithSetupHooks(hooks ...SetupHook) OpenOption {
	return func(o *openOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// Open connects to the orders database described by cfg.
//
// Errors are translated (a unique violation comes back as
// gorm.ErrDuplicatedKey) so the order repository can report a taken order
// number. Writes outside SaveBatch skip gorm's implicit transaction.
func Open(cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	return open(postgres.Open(cfg.DSN()), cfg, opts...)
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, opts ...OpenOption) (*Database, error) {
	o := openOptions{logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to orders database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping orders database: %w", err)
	}

	for _, hook := range o.hooks {
		if err := hook(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to set up orders database: %w", err)
		}
	}

	return &Database{DB: db}, nil
}

// Close releases the pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping reports whether the database is reachable; the health endpoint calls it
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
