// Package app assembles the document service from configuration. The HTTP
// server and the command line tool share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	documentapp "github.com/billydoc/backend/internal/application/document"
	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/printing"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/cache"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/event"
	"github.com/billydoc/backend/internal/infrastructure/logger"
	"github.com/billydoc/backend/internal/infrastructure/migration"
	"github.com/billydoc/backend/internal/infrastructure/persistence"
	infra "github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/billydoc/backend/internal/infrastructure/storage"
	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// Options tune Build. The zero value is valid.
type Options struct {
	Version string
	// MeterProvider feeds document and database metrics; nil records nothing
	MeterProvider *telemetry.MeterProvider
	// Migrate runs the embedded migrations regardless of database.auto_migrate
	Migrate bool
}

// Components are the wired collaborators of the document service
type Components struct {
	Config      *config.Config
	Database    *persistence.Database
	Repository  *persistence.GormDocumentRepository
	Redis       redis.UniversalClient
	Idempotency shared.IdempotencyStore
	Renderer    infra.PDFRenderer
	Storage     infra.PDFStorage
	Assets      *infra.AssetResolver
	EventBus    *event.InMemoryEventBus
	Metrics     *telemetry.DocumentMetrics
	Service     *documentapp.Service
	Health      *documentapp.HealthService

	logger  *zap.Logger
	closers []func(ctx context.Context) error
}

// Build opens every backend named by cfg and wires the document service.
// On error everything opened so far is closed again.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (c *Components, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	c = &Components{Config: cfg, logger: log}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
			c = nil
		}
	}()

	if err = c.openDatabase(ctx, opts); err != nil {
		return nil, err
	}
	if err = c.openIdempotency(ctx); err != nil {
		return nil, err
	}

	if c.Renderer, err = NewRenderer(cfg.Renderer, log); err != nil {
		return nil, err
	}
	c.onClose(func(context.Context) error { return c.Renderer.Close() })

	if c.Storage, err = NewStorage(ctx, cfg.Storage, log); err != nil {
		return nil, err
	}
	c.Assets = infra.NewAssetResolver(cfg.Document.AssetsDir, cfg.Document.MaxAssetSize)

	var templateOpts []infra.TemplateEngineOption
	if cfg.Document.TemplatesDir != "" {
		templateOpts = append(templateOpts, infra.WithTemplatesDir(cfg.Document.TemplatesDir))
	}
	templates, err := infra.NewTemplateEngine(templateOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	meter := noop.NewMeterProvider().Meter("billy-doc")
	if opts.MeterProvider != nil {
		meter = opts.MeterProvider.DocumentMeter()
	}
	if c.Metrics, err = telemetry.NewDocumentMetrics(telemetry.DocumentMetricsConfig{
		Meter:   meter,
		Logger:  log,
		Counter: c.Repository,
	}); err != nil {
		return nil, fmt.Errorf("failed to register document metrics: %w", err)
	}
	c.onClose(func(context.Context) error { c.Metrics.Stop(); return nil })

	c.EventBus = event.NewInMemoryEventBus(log)
	c.EventBus.Subscribe(event.NewIdempotentHandler(
		event.NewDocumentEventHandler(log, c.Metrics), c.Idempotency, log))
	if err = c.EventBus.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}
	c.onClose(c.EventBus.Stop)

	source, err := documentapp.NewSequenceSource(ctx, cfg.Document, documentapp.SourceBackends{
		Redis:    c.Redis,
		RedisKey: cfg.Redis.KeyPrefix + "seq",
		DB:       c.Database.DB,
		History:  c.Repository,
	})
	if err != nil {
		return nil, err
	}
	assembler := document.NewAssembler(document.NewNumberGenerator(source),
		document.WithMaxTotal(cfg.Document.MaxAmount),
		document.WithStrictThai(cfg.Document.StrictThai),
	)

	page, err := PageSetup(cfg.Renderer)
	if err != nil {
		return nil, err
	}

	c.Service = documentapp.NewService(documentapp.Dependencies{
		Assembler:   assembler,
		Repository:  c.Repository,
		Renderer:    c.Renderer,
		Storage:     c.Storage,
		Templates:   templates,
		Images:      c.Assets,
		Events:      c.EventBus,
		Idempotency: c.Idempotency,
		Metrics:     c.Metrics,
	}, documentapp.Settings{
		DefaultTaxRate: cfg.Document.DefaultTaxRate,
		MaxAmount:      cfg.Document.MaxAmount,
		Company:        Company(cfg.Document.Company),
		Page:           page,
		RenderTimeout:  cfg.Renderer.Timeout,
		IdempotencyTTL: cfg.Document.IdempotencyTTL,
	}, log)

	c.Health = documentapp.NewHealthService(opts.Version, c.Repository, log, c.checks()...)

	log.Info("Document service ready",
		zap.String("renderer", c.Renderer.Name()),
		zap.String("storage", cfg.Storage.Type),
		zap.String("number_source", cfg.Document.NumberSource),
		zap.String("database", c.Database.Driver()),
	)
	return c, nil
}

func (c *Components) openDatabase(ctx context.Context, opts Options) error {
	cfg := c.Config
	gormLogger := logger.NewGormLogger(c.logger, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQuery))

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLogger))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Database = db
	c.onClose(func(context.Context) error { return db.Close() })

	if cfg.Database.AutoMigrate || opts.Migrate {
		if err := Migrate(db, c.logger); err != nil {
			return err
		}
	}

	dbSystem := telemetry.DBSystemFor(db.Driver())
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQuery,
		DBSystem:        dbSystem,
	}, c.logger)
	if err := tracing.RegisterOtelGorm(db.DB); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	metricsCfg := telemetry.DefaultDBMetricsConfig()
	metricsCfg.Enabled = cfg.Telemetry.MetricsEnabled
	metricsCfg.DBSystem = dbSystem
	if cfg.Telemetry.DBSlowQuery > 0 {
		metricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQuery
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, opts.MeterProvider, metricsCfg, c.logger)
	if err != nil {
		return fmt.Errorf("failed to register database metrics: %w", err)
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		c.onClose(func(context.Context) error { dbMetrics.Stop(); return nil })
	}

	c.Repository = persistence.NewGormDocumentRepository(db.DB)
	return nil
}

func (c *Components) openIdempotency(ctx context.Context) error {
	backends, err := cache.OpenBackends(ctx, c.Config.Redis,
		cache.WithLogger(c.logger),
		cache.WithInMemoryFallback(c.Config.Document.NumberSource != config.NumberSourceRedis),
	)
	if err != nil {
		return err
	}
	c.Idempotency = backends.Idempotency
	c.Redis = backends.Redis
	c.onClose(func(context.Context) error { return backends.Close() })
	return nil
}

func (c *Components) checks() []documentapp.Check {
	checks := []documentapp.Check{
		{Name: "database", Ping: c.Database.Ping},
		{Name: "storage", Ping: c.Storage.Ping},
		{Name: "assets", Optional: true, Ping: func(context.Context) error { return c.Assets.Ping() }},
	}
	if c.Redis != nil {
		checks = append(checks, documentapp.Check{
			Name:     "redis",
			Optional: c.Config.Document.NumberSource != config.NumberSourceRedis,
			Ping:     func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}

func (c *Components) onClose(fn func(ctx context.Context) error) {
	c.closers = append(c.closers, fn)
}

// Close releases everything Build opened, newest first
func (c *Components) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Migrate applies the embedded migrations for the database driver
func Migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, db.Driver(), log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

// NewRenderer builds the PDF engine named by renderer.engine
func NewRenderer(cfg config.RendererConfig, log *zap.Logger) (infra.PDFRenderer, error) {
	switch cfg.Engine {
	case config.EngineGofpdf:
		return infra.NewGofpdfRenderer(&infra.GofpdfConfig{
			FontPath:     cfg.FontPath,
			BoldFontPath: cfg.BoldFontPath,
			Logger:       log,
		})
	case config.EngineChromedp, "":
		return infra.NewChromedpRenderer(&infra.ChromedpConfig{
			DefaultTimeout: cfg.Timeout,
			RemoteURL:      cfg.RemoteURL,
			NoSandbox:      cfg.NoSandbox,
			Logger:         log,
		})
	default:
		return nil, fmt.Errorf("unknown renderer engine %q", cfg.Engine)
	}
}

// NewStorage builds the PDF store named by storage.type
func NewStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (infra.PDFStorage, error) {
	switch cfg.Type {
	case config.StorageS3:
		s3, err := storage.NewS3PDFStorage(&cfg,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.PresignExpiration),
		)
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3, nil
	case config.StorageLocal, "":
		return infra.NewFileSystemStorage(&infra.FileSystemStorageConfig{
			BasePath:    cfg.LocalPath,
			MaxFileSize: cfg.MaxFileSize,
			Logger:      log,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// PageSetup converts renderer settings into a validated page
func PageSetup(cfg config.RendererConfig) (printing.PageSetup, error) {
	page := printing.DefaultPageSetup()

	size, err := printing.ParsePaperSize(cfg.PaperSize)
	if err != nil {
		return page, err
	}
	page.PaperSize = size

	if cfg.Orientation != "" {
		o := printing.Orientation(strings.ToUpper(cfg.Orientation))
		if !o.IsValid() {
			return page, fmt.Errorf("invalid orientation %q", cfg.Orientation)
		}
		page.Orientation = o
	}

	if cfg.MarginMM > 0 {
		m, err := printing.UniformMargins(cfg.MarginMM)
		if err != nil {
			return page, err
		}
		page.Margins = m
	}
	return page, nil
}

// Company maps the configured issuer onto the domain type
func Company(cfg config.CompanyConfig) document.Company {
	return document.Company{
		Name:        cfg.Name,
		Address1:    cfg.Address1,
		Address2:    cfg.Address2,
		Tel:         cfg.Tel,
		TaxID:       cfg.TaxID,
		BankAccount: cfg.BankAccount,
		HeaderLogo:  cfg.HeaderLogo,
		FooterLogo:  cfg.FooterLogo,
		Signature:   cfg.Signature,
	}
}

// CleanupOlderThan removes stored PDFs older than age
func (c *Components) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	return c.Storage.CleanupOlderThan(ctx, age)
}
