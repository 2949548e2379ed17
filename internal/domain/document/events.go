package document

import (
	"github.com/billydoc/backend/internal/domain/shared"
)

// Event types
const (
	AggregateType         = "Document"
	EventTypeGenerated    = "DocumentGenerated"
	EventTypeRenderFailed = "DocumentRenderFailed"
)

// GeneratedEvent is published once a document has been rendered and stored
type GeneratedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	Language     Language     `json:"language"`
	Number       string       `json:"document_no"`
	Total        string       `json:"total"`
	ItemCount    int          `json:"item_count"`
	FileKey      string       `json:"file_key"`
	FileSize     int64        `json:"file_size"`
}

// NewGeneratedEvent builds a GeneratedEvent for doc
func NewGeneratedEvent(doc *Document, fileKey string, fileSize int64) *GeneratedEvent {
	return &GeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGenerated, AggregateType, doc.ID(), doc.CreatedAt()),
		DocumentType:    doc.Type(),
		Language:        doc.Language(),
		Number:          doc.Number(),
		Total:           doc.Total().StringFixed(TaxPlaces),
		ItemCount:       doc.ItemCount(),
		FileKey:         fileKey,
		FileSize:        fileSize,
	}
}

// RenderFailedEvent is published when an assembled document could not be rendered
type RenderFailedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	Number       string       `json:"document_no"`
	Reason       string       `json:"reason"`
}

// NewRenderFailedEvent builds a RenderFailedEvent for doc
func NewRenderFailedEvent(doc *Document, reason string) *RenderFailedEvent {
	return &RenderFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRenderFailed, AggregateType, doc.ID(), doc.CreatedAt()),
		DocumentType:    doc.Type(),
		Number:          doc.Number(),
		Reason:          reason,
	}
}
