package document

import (
	"context"
	"fmt"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/infrastructure/cache"
	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/persistence"
	"github.com/billydoc/backend/internal/infrastructure/persistence/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NumberHistory reports the highest counter already stored for a type
type NumberHistory interface {
	LastCounter(ctx context.Context, docType document.DocumentType, dated bool) (uint64, error)
}

// SourceBackends holds the stores a sequence source may need. Only the one
// selected by configuration has to be set.
type SourceBackends struct {
	Redis    redis.UniversalClient
	RedisKey string
	DB       *gorm.DB
	// History resumes counters after previously issued numbers
	History NumberHistory
	Clock   func() time.Time
}

type seedFunc func(ctx context.Context, docType document.DocumentType, last uint64) error

// NewSequenceSource builds the document number source named by
// document.number_source, wrapped with a yyyymm prefix when date_prefix is set.
// Counter backed sources continue after the highest number already issued.
func NewSequenceSource(ctx context.Context, cfg config.DocumentConfig, backends SourceBackends) (document.SequenceSource, error) {
	var (
		source document.SequenceSource
		seed   seedFunc
	)

	switch cfg.NumberSource {
	case "", config.NumberSourceCounter:
		counter := document.NewCounterSource(cfg.CounterWidth)
		source = counter
		seed = func(_ context.Context, docType document.DocumentType, last uint64) error {
			counter.Seed(docType, last)
			return nil
		}
	case config.NumberSourceUUID:
		source = document.NewUUIDSource(cfg.UUIDSuffixLength)
	case config.NumberSourceRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("number source %q requires redis to be enabled", cfg.NumberSource)
		}
		counter := cache.NewRedisSequenceSource(backends.Redis, backends.RedisKey, cfg.CounterWidth)
		source = counter
		seed = func(ctx context.Context, docType document.DocumentType, last uint64) error {
			return counter.Seed(ctx, docType, int64(last))
		}
	case config.NumberSourceDatabase:
		if backends.DB == nil {
			return nil, fmt.Errorf("number source %q requires a database", cfg.NumberSource)
		}
		counter := persistence.NewGormSequenceSource(backends.DB, cfg.CounterWidth)
		source = counter
		seed = func(ctx context.Context, docType document.DocumentType, last uint64) error {
			return counter.Seed(ctx, docType, int64(last))
		}
	default:
		return nil, fmt.Errorf("unknown number source %q", cfg.NumberSource)
	}

	if seed != nil {
		if err := resume(ctx, cfg.DatePrefix, backends, seed); err != nil {
			return nil, fmt.Errorf("resume document numbers: %w", err)
		}
	}
	if cfg.DatePrefix {
		source = document.NewDatedSource(source, backends.Clock)
	}
	return source, nil
}

// resume seeds every type with the higher of the last stored document counter
// and the document_sequences row, when that table exists
func resume(ctx context.Context, dated bool, backends SourceBackends, seed seedFunc) error {
	var table *persistence.GormSequenceSource
	if backends.DB != nil && backends.DB.Migrator().HasTable(&models.DocumentSequenceModel{}) {
		table = persistence.NewGormSequenceSource(backends.DB, 0)
	}

	for _, docType := range document.AllDocumentTypes() {
		var last uint64
		if backends.History != nil {
			n, err := backends.History.LastCounter(ctx, docType, dated)
			if err != nil {
				return fmt.Errorf("last %s number: %w", docType, err)
			}
			last = n
		}
		if table != nil {
			n, err := table.Current(ctx, docType)
			if err != nil {
				return fmt.Errorf("%s sequence: %w", docType, err)
			}
			if n > 0 && uint64(n) > last {
				last = uint64(n)
			}
		}
		if last == 0 {
			continue
		}
		if err := seed(ctx, docType, last); err != nil {
			return err
		}
	}
	return nil
}
