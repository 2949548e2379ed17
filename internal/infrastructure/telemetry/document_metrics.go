package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Pipeline stages used to label failures.
const (
	StageValidate = "validate"
	StageNumber   = "number"
	StageRender   = "render"
	StageStore    = "store"
	StagePersist  = "persist"
)

// DocumentCounter reports how many documents are stored. The document
// repository satisfies it.
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DocumentMetrics records document generation activity.
type DocumentMetrics struct {
	logger *zap.Logger

	generatedTotal *Counter
	failedTotal    *Counter
	replayedTotal  *Counter
	renderDuration *Histogram
	documentTotal  *Histogram
	pdfSize        *Histogram
	storedCount    *Gauge

	counter     DocumentCounter
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// DocumentMetricsConfig configures DocumentMetrics.
type DocumentMetricsConfig struct {
	Meter   metric.Meter
	Logger  *zap.Logger
	Counter DocumentCounter
}

// NewDocumentMetrics registers the document instruments on cfg.Meter.
func NewDocumentMetrics(cfg DocumentMetricsConfig) (*DocumentMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dm := &DocumentMetrics{
		logger:   logger,
		counter:  cfg.Counter,
		stopChan: make(chan struct{}),
	}

	var err error
	if dm.generatedTotal, err = NewCounter(cfg.Meter,
		"billy_documents_generated_total", "Documents generated and stored", "{documents}"); err != nil {
		return nil, err
	}
	if dm.failedTotal, err = NewCounter(cfg.Meter,
		"billy_documents_failed_total", "Document generations that failed, by stage", "{documents}"); err != nil {
		return nil, err
	}
	if dm.replayedTotal, err = NewCounter(cfg.Meter,
		"billy_documents_replayed_total", "Generate requests answered from the idempotency store", "{requests}"); err != nil {
		return nil, err
	}
	if dm.renderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "billy_render_duration_seconds",
		Description: "PDF render duration",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.documentTotal, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "billy_document_total_thb",
		Description: "Grand total of generated documents",
		Unit:        "THB",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.pdfSize, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "billy_pdf_size_bytes",
		Description: "Size of rendered PDFs",
		Unit:        "By",
		Boundaries:  SizeBuckets,
	}); err != nil {
		return nil, err
	}
	if dm.storedCount, err = NewGauge(cfg.Meter,
		"billy_documents_stored", "Documents currently persisted", "{documents}"); err != nil {
		return nil, err
	}

	return dm, nil
}

// RecordGenerated records a successfully generated document.
func (dm *DocumentMetrics) RecordGenerated(ctx context.Context, docType, language string, total decimal.Decimal, size int64) {
	dm.generatedTotal.Inc(ctx, AttrDocumentType.String(docType), AttrLanguage.String(language))
	dm.documentTotal.Record(ctx, total.InexactFloat64(), AttrDocumentType.String(docType))
	dm.pdfSize.Record(ctx, float64(size), AttrDocumentType.String(docType))
}

// RecordFailure records a generation that stopped at stage.
func (dm *DocumentMetrics) RecordFailure(ctx context.Context, docType, stage string) {
	dm.failedTotal.Inc(ctx, AttrDocumentType.String(docType), AttrStage.String(stage))
}

// RecordReplay records an idempotent replay.
func (dm *DocumentMetrics) RecordReplay(ctx context.Context, docType string) {
	dm.replayedTotal.Inc(ctx, AttrDocumentType.String(docType))
}

// RecordRender records how long one render took on engine.
func (dm *DocumentMetrics) RecordRender(ctx context.Context, engine string, d time.Duration) {
	dm.renderDuration.RecordDuration(ctx, d, AttrEngine.String(engine))
}

// StartPeriodicCollection samples the stored document count every interval
// (5 minutes when interval is not positive) until Stop or ctx is done.
func (dm *DocumentMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if dm.counter == nil {
		return
	}
	dm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go dm.runPeriodicCollection(ctx, interval)
	})
}

func (dm *DocumentMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dm.collectStoredCount(ctx)
	for {
		select {
		case <-dm.stopChan:
			dm.logger.Info("Stopping document metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.collectStoredCount(ctx)
		}
	}
}

func (dm *DocumentMetrics) collectStoredCount(ctx context.Context) {
	count, err := dm.counter.Count(ctx)
	if err != nil {
		dm.logger.Warn("Failed to count stored documents", zap.Error(err))
		return
	}
	dm.storedCount.Record(ctx, count)
}

// Stop stops periodic collection.
func (dm *DocumentMetrics) Stop() {
	dm.stopOnce.Do(func() {
		close(dm.stopChan)
	})
}

// ErrMeterNil is returned when a metrics constructor receives no meter.
var ErrMeterNil = &MetricsError{Op: "NewDocumentMetrics", Err: "meter cannot be nil"}

// MetricsError is a metrics construction error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
