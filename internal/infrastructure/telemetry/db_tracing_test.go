package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func newRecorderProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "sqlite", cfg.DBSystem)
}

func TestDBSystemFor(t *testing.T) {
	tests := map[string]string{
		"postgres":   "postgresql",
		"postgresql": "postgresql",
		"sqlite":     "sqlite",
		"sqlite3":    "sqlite",
		"":           "sqlite",
		"mysql":      "mysql",
	}
	for driver, want := range tests {
		assert.Equal(t, want, DBSystemFor(driver), driver)
	}
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)

	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
	assert.Equal(t, "sqlite", plugin.config.DBSystem)
	assert.NotNil(t, plugin.logger)
}

func TestDBTracingPlugin_RegisterOtelGorm(t *testing.T) {
	t.Run("disabled registers nothing", func(t *testing.T) {
		db := setupTracedDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
	})

	t.Run("enabled registers timing callbacks", func(t *testing.T) {
		db := setupTracedDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: DBSystemFor("sqlite")}, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.NotNil(t, db.Callback().Create().Get("otel_timing:before_create"))
		assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
		assert.NotNil(t, db.Callback().Raw().Get("otel_slow_query:raw"))
	})

	t.Run("queries still work and produce spans", func(t *testing.T) {
		db := setupTracedDB(t)
		tp, sr := newRecorderProvider(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, LogFullSQL: true}, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))

		ctx, span := tp.Tracer("test").Start(context.Background(), "document.save")
		tx := db.WithContext(ctx)
		require.NoError(t, tx.Create(&tracedRow{Name: "INV-000001"}).Error)

		var found tracedRow
		require.NoError(t, tx.First(&found, "name = ?", "INV-000001").Error)
		assert.Equal(t, "INV-000001", found.Name)
		span.End()

		assert.NotEmpty(t, sr.Ended())
	})
}

func runSlowQueryCallback(t *testing.T, plugin *DBTracingPlugin, prepare func(context.Context, *gorm.DB) (context.Context, *gorm.DB)) sdktrace.ReadOnlySpan {
	t.Helper()
	db := setupTracedDB(t)
	tp, sr := newRecorderProvider(t)

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	ctx, tx := prepare(ctx, db.WithContext(ctx))
	tx.Statement.Context = ctx
	plugin.slowQueryCallback(tx)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestSlowQueryCallback(t *testing.T) {
	t.Run("adds table and rows", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Hour}, zap.NewNop())
		span := runSlowQueryCallback(t, plugin, func(ctx context.Context, tx *gorm.DB) (context.Context, *gorm.DB) {
			tx.Statement.Table = "documents"
			tx.Statement.RowsAffected = 3
			return ctx, tx
		})

		attrs := map[string]any{}
		for _, kv := range span.Attributes() {
			attrs[string(kv.Key)] = kv.Value.AsInterface()
		}
		assert.Equal(t, "documents", attrs["db.sql.table"])
		assert.Equal(t, int64(3), attrs["db.rows_affected"])
		assert.NotContains(t, attrs, "db.slow_query")
	})

	t.Run("marks slow queries", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Nanosecond}, zap.NewNop())
		span := runSlowQueryCallback(t, plugin, func(ctx context.Context, tx *gorm.DB) (context.Context, *gorm.DB) {
			ctx = WithQueryStartTime(ctx)
			time.Sleep(2 * time.Millisecond)
			return ctx, tx
		})

		var names []string
		for _, e := range span.Events() {
			names = append(names, e.Name)
		}
		assert.Contains(t, names, "slow_query_warning")
	})

	t.Run("records errors except not found", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Hour}, zap.NewNop())

		failed := runSlowQueryCallback(t, plugin, func(ctx context.Context, tx *gorm.DB) (context.Context, *gorm.DB) {
			tx.Error = errors.New("database is locked")
			return ctx, tx
		})
		assert.Equal(t, codes.Error, failed.Status().Code)

		missing := runSlowQueryCallback(t, plugin, func(ctx context.Context, tx *gorm.DB) (context.Context, *gorm.DB) {
			tx.Error = gorm.ErrRecordNotFound
			return ctx, tx
		})
		assert.NotEqual(t, codes.Error, missing.Status().Code)
	})

	t.Run("ignores statements without a recording span", func(t *testing.T) {
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
		db := setupTracedDB(t)
		assert.NotPanics(t, func() {
			plugin.slowQueryCallback(db)
			plugin.slowQueryCallback(db.WithContext(context.Background()))
		})
	})
}
