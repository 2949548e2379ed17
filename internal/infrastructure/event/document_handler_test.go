package event

import (
	"context"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordGenerated(ctx context.Context, docType, language string, total decimal.Decimal, size int64) {
	m.Called(ctx, docType, language, total.StringFixed(2), size)
}

func (m *MockRecorder) RecordFailure(ctx context.Context, docType, stage string) {
	m.Called(ctx, docType, stage)
}

func generatedEvent(total string) *document.GeneratedEvent {
	return &document.GeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypeGenerated, document.AggregateType, uuid.New(), time.Now()),
		DocumentType:    document.DocumentTypeInvoice,
		Language:        document.LanguageThai,
		Number:          "INV-000001",
		Total:           total,
		ItemCount:       2,
		FileKey:         "2025/01/x.pdf",
		FileSize:        4096,
	}
}

func TestDocumentEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("generated", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		rec := new(MockRecorder)
		rec.On("RecordGenerated", ctx, "invoice", "th", "117700.00", int64(4096)).Once()

		h := NewDocumentEventHandler(zap.New(core), rec)
		require.NoError(t, h.Handle(ctx, generatedEvent("117700.00")))

		rec.AssertExpectations(t)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "Document generated", entry.Message)
		assert.Equal(t, "INV-000001", entry.ContextMap()["document_no"])
	})

	t.Run("render failed", func(t *testing.T) {
		rec := new(MockRecorder)
		rec.On("RecordFailure", ctx, "receipt", "render").Once()

		h := NewDocumentEventHandler(nil, rec)
		err := h.Handle(ctx, &document.RenderFailedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypeRenderFailed, document.AggregateType, uuid.New(), time.Now()),
			DocumentType:    document.DocumentTypeReceipt,
			Number:          "REC-000003",
			Reason:          "font missing",
		})
		require.NoError(t, err)
		rec.AssertExpectations(t)
	})

	t.Run("bad total", func(t *testing.T) {
		h := NewDocumentEventHandler(nil, nil)
		assert.Error(t, h.Handle(ctx, generatedEvent("lots")))
	})

	t.Run("nil recorder", func(t *testing.T) {
		h := NewDocumentEventHandler(nil, nil)
		assert.NoError(t, h.Handle(ctx, generatedEvent("80250.00")))
	})

	t.Run("unknown event", func(t *testing.T) {
		h := NewDocumentEventHandler(nil, nil)
		assert.Error(t, h.Handle(ctx, newTestEvent("Other")))
	})

	t.Run("subscribes to both lifecycle events", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		rec := new(MockRecorder)
		rec.On("RecordGenerated", mock.Anything, "invoice", "th", "32100.00", int64(4096)).Once()
		bus.Subscribe(NewIdempotentHandler(NewDocumentEventHandler(nil, rec), newMemoryStore(t), nil))

		event := generatedEvent("32100.00")
		require.NoError(t, bus.Publish(ctx, event, event))
		rec.AssertExpectations(t)
	})
}
