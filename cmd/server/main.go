package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/billydoc/backend/internal/app"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/logger"
	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/billydoc/backend/internal/interfaces/http/handler"
	"github.com/billydoc/backend/internal/interfaces/http/middleware"
	"github.com/billydoc/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/billydoc/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Billy Doc API
//	@version		1.0
//	@description	Generates Thai quotations, invoices and receipts as PDF with exact VAT totals.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/billydoc/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry: traces, metrics, logs bridge and continuous profiling
	tel := cfg.Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		ServiceVersion:    version,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.Enabled && tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.MetricsInterval,
		ServiceName:       tel.ServiceName,
		ServiceVersion:    version,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tel.Enabled && tel.LogsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ServiceName:       tel.ServiceName,
		ServiceVersion:    version,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdown(log, "logger provider", loggerProvider.Shutdown)

	logsLevel, err := zapcore.ParseLevel(tel.LogsLevel)
	if err != nil {
		logsLevel = zapcore.InfoLevel
	}
	log = telemetry.Bridge(log, loggerProvider, tel.ServiceName, logsLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              tel.Profiling.Enabled,
		ServerAddress:        tel.Profiling.ServerAddress,
		ApplicationName:      tel.ServiceName,
		BasicAuthUser:        tel.Profiling.BasicAuthUser,
		BasicAuthPassword:    tel.Profiling.BasicAuthPassword,
		Tags:                 map[string]string{"env": cfg.App.Env, "version": version},
		MutexProfileFraction: tel.Profiling.MutexProfileRate,
		BlockProfileRate:     tel.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if tel.Profiling.SpanProfiles && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	log.Info("Starting Billy Doc",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database, storage, renderer, number source and the document service
	components, err := app.Build(ctx, cfg, log, app.Options{
		Version:       version,
		MeterProvider: meterProvider,
	})
	if err != nil {
		log.Fatal("Failed to initialize document service", zap.Error(err))
	}
	defer func() {
		if err := components.Close(context.Background()); err != nil {
			log.Error("Error closing components", zap.Error(err))
		}
	}()
	if meterProvider.IsEnabled() {
		components.Metrics.StartPeriodicCollection(ctx, tel.MetricsInterval)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
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
	// 3. Tracing - Server span per request
	// 4. Logger - Log requests with trace ids
	// 5. Security, CORS and body size limit
	// 6. Metrics and profiling labels
	// 7. RateLimit (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: tel.ServiceName,
		Enabled:     tel.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(meterProvider))

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
		go rateLimiter.Run(ctx)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
	}

	// Health check endpoint (outside API versioning)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, components.Health)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Versioned API
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	documentHandler := handler.NewDocumentHandler(components.Service)
	r.Register(handler.SystemRoutes(systemHandler))
	r.Register(handler.DocumentRoutes(documentHandler))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", zap.Error(err))
			stop()
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// shutdown flushes a telemetry provider with its own deadline
func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
