package event

import (
	"context"
	"fmt"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GenerationRecorder receives document outcomes. telemetry.DocumentMetrics
// implements it.
type GenerationRecorder interface {
	RecordGenerated(ctx context.Context, docType, language string, total decimal.Decimal, size int64)
	RecordFailure(ctx context.Context, docType, stage string)
}

// DocumentEventHandler logs document lifecycle events and feeds the
// generation metrics.
type DocumentEventHandler struct {
	logger   *zap.Logger
	recorder GenerationRecorder
}

// NewDocumentEventHandler returns a handler; recorder may be nil.
func NewDocumentEventHandler(logger *zap.Logger, recorder GenerationRecorder) *DocumentEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentEventHandler{logger: logger, recorder: recorder}
}

func (h *DocumentEventHandler) EventTypes() []string {
	return []string{document.EventTypeGenerated, document.EventTypeRenderFailed}
}

func (h *DocumentEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *document.GeneratedEvent:
		total, err := decimal.NewFromString(e.Total)
		if err != nil {
			return fmt.Errorf("event %s: invalid total %q: %w", e.EventID(), e.Total, err)
		}
		h.logger.Info("Document generated",
			zap.String("document_id", e.AggregateID().String()),
			zap.String("document_no", e.Number),
			zap.String("document_type", string(e.DocumentType)),
			zap.String("total", e.Total),
			zap.Int("item_count", e.ItemCount),
			zap.String("file_key", e.FileKey),
			zap.Int64("file_size", e.FileSize),
		)
		if h.recorder != nil {
			h.recorder.RecordGenerated(ctx, string(e.DocumentType), string(e.Language), total, e.FileSize)
		}
	case *document.RenderFailedEvent:
		h.logger.Warn("Document render failed",
			zap.String("document_id", e.AggregateID().String()),
			zap.String("document_no", e.Number),
			zap.String("document_type", string(e.DocumentType)),
			zap.String("reason", e.Reason),
		)
		if h.recorder != nil {
			h.recorder.RecordFailure(ctx, string(e.DocumentType), telemetry.StageRender)
		}
	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	return nil
}

var (
	_ shared.EventHandler = (*DocumentEventHandler)(nil)
	_ GenerationRecorder  = (*telemetry.DocumentMetrics)(nil)
)
