package document

import (
	"context"

	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status of a stored document record
type Status string

const (
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
)

// Record is a stored document together with its rendered file
type Record struct {
	Snapshot
	Status   Status
	FileKey  string
	FileSize int64
}

// NewRecord creates a record for a rendered document
func NewRecord(doc *Document, fileKey string, fileSize int64) *Record {
	return &Record{
		Snapshot: doc.Snapshot(),
		Status:   StatusGenerated,
		FileKey:  fileKey,
		FileSize: fileSize,
	}
}

// ListFilter narrows a record listing
type ListFilter struct {
	shared.Filter
	DocumentType DocumentType
}

// Repository persists document records
type Repository interface {
	Save(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	FindByNumber(ctx context.Context, number string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
	Count(ctx context.Context) (int64, error)
}
