package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/application/ledger"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/scheduler"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/erp/ledger/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Inventory Ledger API
//	@version		1.0
//	@description	Multi-tenant stock ledger with sales, receiving, transfers, returns, stock alerts and cash ledgers

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := &logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// OpenTelemetry log export wraps the primary logger once the provider is up
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		return fmt.Errorf("failed to initialize log export: %w", err)
	}
	log, err := logger.New(logCfg, logProvider.Core(serviceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting inventory ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(serviceName)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(logger.NewGormLogger(
		log,
		logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)))
	if err != nil {
		return err
	}
	log.Info("Database connected")

	dbMetrics, err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, meter, log)
	if err != nil {
		return fmt.Errorf("failed to instrument database: %w", err)
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:         meter,
		Logger:        log,
		AlertProvider: persistence.NewGormAlertMetricsProvider(db.DB),
	})
	if err != nil {
		return fmt.Errorf("failed to create ledger metrics: %w", err)
	}

	coordination, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateCoordination(ctx)
	if err != nil {
		return err
	}

	unfunded, err := tradeapp.ParseUnfundedRefundPolicy(cfg.Ledger.UnfundedRefundPolicy)
	if err != nil {
		return err
	}

	bus := event.NewInMemoryEventBus(log)
	exec := ledger.NewExecutor(ledger.Config{
		Scope:     persistence.NewGormTransactionScope(db.DB),
		Timeout:   cfg.Ledger.TransactionTimeout,
		Publisher: bus,
		Metrics:   ledgerMetrics,
		Logger:    log,
	})
	policy := inventory.NewFIFOConsumptionPolicy()
	stock := inventory.NewStockLedger(policy)

	alertEngine, err := inventoryapp.NewAlertEngine(inventoryapp.AlertEngineConfig{
		Executor:    exec,
		Lease:       coordination.Lease,
		Retries:     coordination.Retries,
		Metrics:     ledgerMetrics,
		Logger:      log,
		LeaseTTL:    cfg.Ledger.AlertLeaseTTL,
		ScanTimeout: cfg.Ledger.AlertScanTimeout,
		MaxAttempts: cfg.Ledger.AlertRetryMaxAttempts,
	})
	if err != nil {
		return err
	}
	bus.Subscribe(inventoryapp.NewAlertScanHandler(alertEngine))
	if err := bus.Start(ctx); err != nil {
		return err
	}
	ledgerMetrics.StartPeriodicCollection(ctx, alertEngine, time.Minute)

	jobs := scheduler.New(log)
	if cfg.Scheduler.Enabled {
		if err := scheduler.RegisterAll(jobs, scheduler.AlertJobs(cfg.Scheduler, alertEngine, log)...); err != nil {
			return err
		}
		if err := jobs.Start(ctx); err != nil {
			return err
		}
	}

	engine, err := newEngine(cfg, log, meter, db, router.Handlers{
		Sale:       handler.NewSaleHandler(tradeapp.NewSaleService(exec, stock)),
		Receiving:  handler.NewReceivingHandler(tradeapp.NewReceivingService(exec, stock, cfg.Ledger.ReceivingExpenseCategory)),
		Return:     handler.NewReturnHandler(tradeapp.NewReturnService(exec, stock, unfunded)),
		Transfer:   handler.NewTransferHandler(inventoryapp.NewTransferService(exec, stock)),
		Stock:      handler.NewStockHandler(inventoryapp.NewAdjustmentService(exec, stock), inventoryapp.NewStockQueryService(exec, policy)),
		Alert:      handler.NewAlertHandler(alertEngine),
		CashDrawer: handler.NewCashDrawerHandler(financeapp.NewCashDrawerService(exec)),
		Credit:     handler.NewCreditHandler(financeapp.NewCreditService(exec)),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	alertEngine.Wait()
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	ledgerMetrics.Stop()
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := coordination.Close(); err != nil {
		log.Warn("Error closing alert coordination", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	return nil
}

func newEngine(cfg *config.Config, log *zap.Logger, meter metric.Meter, db *persistence.Database, handlers router.Handlers) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORS(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.Telemetry.Enabled {
		name := cfg.Telemetry.ServiceName
		if name == "" {
			name = cfg.App.Name
		}
		engine.Use(middleware.Tracing(name, "/health", "/ping"), middleware.SpanEnricher())
	}
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		return nil, err
	}
	engine.Use(httpMetrics, middleware.Profiling(cfg.Telemetry.ProfilingEnabled))

	system := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{"database": db})
	engine.GET("/health", system.Health)
	engine.GET("/ping", system.Ping)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger.Enabled, cfg.Swagger.AllowedIPs),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var verifier *auth.Verifier
	if cfg.JWT.Secret != "" {
		verifier = auth.NewVerifier(cfg.JWT)
	}
	router.NewRouter(engine, router.WithMiddleware(middleware.Identity(middleware.IdentityConfig{
		Verifier:     verifier,
		AllowHeaders: cfg.JWT.HeaderIdentity,
		Logger:       log,
	}))).Register(router.LedgerGroups(handlers)...).Setup()

	return engine, nil
}
