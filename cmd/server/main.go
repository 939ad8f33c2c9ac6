package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/infrastructure/cache"
	"github.com/rental/backend/internal/infrastructure/config"
	"github.com/rental/backend/internal/infrastructure/logger"
	"github.com/rental/backend/internal/infrastructure/persistence"
	"github.com/rental/backend/internal/infrastructure/restapi"
	"github.com/rental/backend/internal/infrastructure/telemetry"
	"github.com/rental/backend/internal/interfaces/http/handler"
	"github.com/rental/backend/internal/interfaces/http/middleware"
	"github.com/rental/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const meterName = "github.com/rental/backend"

// backend is where contracts and reference data are read and written
type backend struct {
	directory contract.ReferenceDirectory
	reader    contract.ContractReader
	writer    appcontract.ContractWriter
	db        handler.DatabaseStatus
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The OTLP log bridge needs a logger of its own before the main one exists
	bootLog, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, telemetry.NewZapOTELCore(logProvider, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting rental contract service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("gateway", cfg.Gateway.Mode),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(meterName)

	be, err := newBackend(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize contract backend", zap.Error(err))
	}
	defer be.close()

	var invalidator handler.ProductCacheInvalidator
	if cfg.Gateway.ReferenceCacheTTL > 0 {
		store, err := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
		if err != nil {
			log.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn("Error closing cache store", zap.Error(err))
			}
		}()
		cached := cache.NewCachedDirectory(be.directory, store, cfg.Gateway.ReferenceCacheTTL, log)
		be.directory = cached
		invalidator = cached
	}

	service := appcontract.NewSessionService(be.directory, be.reader, be.writer, appcontract.SessionConfig{
		RentalDays: cfg.Draft.RentalDays,
		Policy: contract.ReconciliationPolicy{
			LowerRatio: decimal.NewFromFloat(cfg.Reconciliation.LowerRatio),
			UpperRatio: decimal.NewFromFloat(cfg.Reconciliation.UpperRatio),
		},
	}, log)
	contractMetrics, err := telemetry.NewContractMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register contract metrics", zap.Error(err))
	}
	service.SetMetrics(contractMetrics)

	sessions := appcontract.NewSessionStore(cfg.Draft.SessionTTL, log)
	go sessions.Run(ctx, cfg.Draft.SweepInterval)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		Meter:          meter,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	drafts := handler.NewContractDraftHandler(service, sessions)
	if invalidator != nil {
		drafts.SetProductCacheInvalidator(invalidator)
	}
	router.NewRouter(engine).Register(drafts).Setup()
	engine.GET("/health", handler.NewHealthHandler(be.db, sessions, version).Check)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Warn("Error shutting down log provider", zap.Error(err))
	}
}

// newBackend wires the contract store selected by gateway.mode
func newBackend(cfg *config.Config, log *zap.Logger) (*backend, error) {
	if cfg.Gateway.Mode == config.GatewayModeREST {
		client, err := restapi.NewClient(cfg.Gateway, restapi.WithLogger(log))
		if err != nil {
			return nil, err
		}
		log.Info("Using REST contract gateway", zap.String("base_url", cfg.Gateway.BaseURL))
		return &backend{directory: client, reader: client, writer: client, close: func() {}}, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}

	tracing := telemetry.DefaultDBTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if cfg.Database.Driver == "sqlite" {
		tracing.DBSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, tracing, log); err != nil {
		closeDB()
		return nil, err
	}

	// postgres schemas come from cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			closeDB()
			return nil, err
		}
	}

	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	repo := persistence.NewGormContractRepository(db.DB)
	return &backend{
		directory: persistence.NewGormReferenceDirectory(db.DB),
		reader:    repo,
		writer:    repo,
		db:        db,
		close:     closeDB,
	}, nil
}
