package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	importapp "github.com/orderimport/backend/internal/application/import"
	orderapp "github.com/orderimport/backend/internal/application/order"
	"github.com/orderimport/backend/internal/infrastructure/cache"
	"github.com/orderimport/backend/internal/infrastructure/config"
	csvimport "github.com/orderimport/backend/internal/infrastructure/import"
	"github.com/orderimport/backend/internal/infrastructure/logger"
	"github.com/orderimport/backend/internal/infrastructure/migration"
	"github.com/orderimport/backend/internal/infrastructure/persistence"
	"github.com/orderimport/backend/internal/infrastructure/storage"
	"github.com/orderimport/backend/internal/infrastructure/telemetry"
	"github.com/orderimport/backend/internal/interfaces/http/handler"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
	"github.com/orderimport/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OpenTelemetry providers; each is a no-op when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Version:         version,
		ProfileTypes:    cfg.Telemetry.ProfilingTypes,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := telemetry.NewBridgedLogger(baseLog, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: loggerProvider,
		Level:          logger.ParseLevel(cfg.Log.Level),
	}))
	zap.ReplaceGlobals(log)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting order import service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)

	db, err := persistence.Open(&cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithSetupHooks(dbTracing.Register),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := runMigrations(&cfg.Database, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB, persistence.WithBatchSize(cfg.Import.BatchSize))
	historyRepo := persistence.NewGormImportHistoryRepository(db.DB)

	// Idempotency keys for uploads
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(
		cfg.Import.IdempotencyBackend,
		cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()

	importMetrics, err := telemetry.NewImportMetrics(meterProvider.Meter("order-import"))
	if err != nil {
		log.Fatal("Failed to create import metrics", zap.Error(err))
	}

	importOpts := []importapp.OrderImportServiceOption{
		importapp.WithLogger(log),
		importapp.WithHistoryRepository(historyRepo),
		importapp.WithIdempotencyStore(idempotencyStore, cfg.Import.IdempotencyTTL),
		importapp.WithMetrics(importMetrics),
		importapp.WithMaxFileSize(cfg.Import.MaxFileSize),
		importapp.WithParserOptions(csvimport.WithDelimiter(cfg.Import.Delimiter())),
	}
	var historyOpts []importapp.ImportHistoryServiceOption

	if cfg.Import.ArchiveEnabled {
		archive, err := newArchive(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize archive storage", zap.Error(err))
		}
		importOpts = append(importOpts, importapp.WithArchiveStorage(archive))
		historyOpts = append(historyOpts, importapp.WithArchive(archive, cfg.Storage.PresignExpiration))
		log.Info("Upload archiving enabled", zap.String("backend", cfg.Storage.Backend))
	}

	// Initialize application services
	importService := importapp.NewOrderImportService(orderRepo, importOpts...)
	historyService := importapp.NewImportHistoryService(historyRepo, historyOpts...)
	orderService := orderapp.NewOrderService(orderRepo)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Orders:  handler.NewOrderHandler(orderService),
		Import:  handler.NewOrderImportHandler(importService),
		History: handler.NewImportHistoryHandler(historyService),
		System:  handler.NewSystemHandler(cfg.App.Name, version, db),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server span per request
	// 5. Metrics - Request counters and latency
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("order-import/http"), meterProvider.IsEnabled()))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Body size and rate limits guard the upload endpoint only
	uploadMiddleware := []gin.HandlerFunc{middleware.BodyLimit(cfg.HTTP.MaxBodySize)}
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		uploadMiddleware = append(uploadMiddleware, middleware.RateLimit(rateLimiter))
		log.Info("Upload rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.Setup(engine, handlers, uploadMiddleware)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Warn("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runMigrations applies the embedded schema migrations over a dedicated
// connection, since closing the migrator closes its database handle.
func runMigrations(cfg *config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up()
}

// newArchive builds the object store selected by storage.backend
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.ObjectStorage, error) {
	if cfg.Storage.Backend == config.StorageBackendMemory {
		log.Warn("Archiving to process memory; archived files are lost on restart")
		return storage.NewMemoryObjectStorage(), nil
	}

	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3, nil
}
