package document_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/application/document"
	domain "github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/infrastructure/cache"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/migration"
	"github.com/billydoc/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSequenceSource(t *testing.T) {
	ctx := context.Background()

	t.Run("counter by default", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{}, document.SourceBackends{})
		require.NoError(t, err)
		assert.IsType(t, &domain.CounterSource{}, source)

		suffix, err := source.Next(ctx, domain.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "000001", suffix)
	})

	t.Run("counter width", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{
			NumberSource: config.NumberSourceCounter,
			CounterWidth: 4,
		}, document.SourceBackends{})
		require.NoError(t, err)
		suffix, err := source.Next(ctx, domain.DocumentTypeReceipt)
		require.NoError(t, err)
		assert.Equal(t, "0001", suffix)
	})

	t.Run("uuid", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{
			NumberSource:     config.NumberSourceUUID,
			UUIDSuffixLength: 10,
		}, document.SourceBackends{})
		require.NoError(t, err)
		suffix, err := source.Next(ctx, domain.DocumentTypeQuotation)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9A-F]{10}$`, suffix)
	})

	t.Run("dated prefix", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{DatePrefix: true}, document.SourceBackends{
			Clock: func() time.Time { return time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC) },
		})
		require.NoError(t, err)

		number, err := domain.NewNumberGenerator(source).Generate(ctx, domain.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV-202503000001", number)
	})

	t.Run("redis", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
		defer client.Close()

		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{NumberSource: config.NumberSourceRedis},
			document.SourceBackends{Redis: client, RedisKey: "billy:seq"})
		require.NoError(t, err)
		assert.IsType(t, &cache.RedisSequenceSource{}, source)
	})

	t.Run("database", func(t *testing.T) {
		db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		defer db.Close()

		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{NumberSource: config.NumberSourceDatabase},
			document.SourceBackends{DB: db.DB})
		require.NoError(t, err)
		assert.IsType(t, &persistence.GormSequenceSource{}, source)
	})

	t.Run("missing backends", func(t *testing.T) {
		for _, name := range []string{config.NumberSourceRedis, config.NumberSourceDatabase} {
			_, err := document.NewSequenceSource(ctx, config.DocumentConfig{NumberSource: name}, document.SourceBackends{})
			assert.Error(t, err, name)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := document.NewSequenceSource(ctx, config.DocumentConfig{NumberSource: "snowflake"}, document.SourceBackends{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown number source")
	})
}

type fakeHistory map[domain.DocumentType]uint64

func (h fakeHistory) LastCounter(_ context.Context, docType domain.DocumentType, _ bool) (uint64, error) {
	return h[docType], nil
}

type failingHistory struct{}

func (failingHistory) LastCounter(context.Context, domain.DocumentType, bool) (uint64, error) {
	return 0, errors.New("no such table: documents")
}

func TestNewSequenceSource_Resume(t *testing.T) {
	ctx := context.Background()

	t.Run("counter continues after stored numbers", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{}, document.SourceBackends{
			History: fakeHistory{domain.DocumentTypeInvoice: 41},
		})
		require.NoError(t, err)
		gen := domain.NewNumberGenerator(source)

		number, err := gen.Generate(ctx, domain.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV-000042", number)

		number, err = gen.Generate(ctx, domain.DocumentTypeReceipt)
		require.NoError(t, err)
		assert.Equal(t, "REC-000001", number)
	})

	t.Run("dated counter continues", func(t *testing.T) {
		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{DatePrefix: true}, document.SourceBackends{
			History: fakeHistory{domain.DocumentTypeQuotation: 7},
			Clock:   func() time.Time { return time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC) },
		})
		require.NoError(t, err)
		number, err := domain.NewNumberGenerator(source).Generate(ctx, domain.DocumentTypeQuotation)
		require.NoError(t, err)
		assert.Equal(t, "QT-202504000008", number)
	})

	t.Run("sequence table raises the floor", func(t *testing.T) {
		db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		defer db.Close()
		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		m, err := migration.New(sqlDB, migration.DriverSQLite, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, m.Up())
		require.NoError(t, persistence.NewGormSequenceSource(db.DB, 0).Seed(ctx, domain.DocumentTypeReceipt, 120))

		source, err := document.NewSequenceSource(ctx, config.DocumentConfig{}, document.SourceBackends{
			DB:      db.DB,
			History: fakeHistory{domain.DocumentTypeReceipt: 100},
		})
		require.NoError(t, err)
		suffix, err := source.Next(ctx, domain.DocumentTypeReceipt)
		require.NoError(t, err)
		assert.Equal(t, "000121", suffix)
	})

	t.Run("uuid ignores history", func(t *testing.T) {
		_, err := document.NewSequenceSource(ctx, config.DocumentConfig{NumberSource: config.NumberSourceUUID},
			document.SourceBackends{History: failingHistory{}})
		assert.NoError(t, err)
	})

	t.Run("history failure", func(t *testing.T) {
		_, err := document.NewSequenceSource(ctx, config.DocumentConfig{}, document.SourceBackends{History: failingHistory{}})
		assert.ErrorContains(t, err, "resume document numbers")
	})
}
