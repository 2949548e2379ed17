package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceSource issues document number suffixes from the
// document_sequences table. The increment and the read happen in one
// transaction, so concurrent callers never receive the same value.
type GormSequenceSource struct {
	db    *gorm.DB
	width int
}

// NewGormSequenceSource creates a sequence source. width <= 0 uses document.DefaultCounterWidth.
func NewGormSequenceSource(db *gorm.DB, width int) *GormSequenceSource {
	if width <= 0 {
		width = document.DefaultCounterWidth
	}
	return &GormSequenceSource{db: db, width: width}
}

// Next implements document.SequenceSource
func (s *GormSequenceSource) Next(ctx context.Context, docType document.DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", &document.InvalidDocumentTypeError{Value: docType.String()}
	}

	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.DocumentSequenceModel{
			DocumentType: docType.String(),
			LastValue:    1,
			UpdatedAt:    time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "document_type"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("document_sequences.last_value + 1"),
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		var current models.DocumentSequenceModel
		if err := tx.Where("document_type = ?", docType.String()).First(&current).Error; err != nil {
			return err
		}
		value = current.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to advance %s sequence: %w", docType, err)
	}

	return fmt.Sprintf("%0*d", s.width, value), nil
}

// Current returns the last issued value for docType, 0 if none was issued
func (s *GormSequenceSource) Current(ctx context.Context, docType document.DocumentType) (int64, error) {
	var row models.DocumentSequenceModel
	err := s.db.WithContext(ctx).
		Where("document_type = ?", docType.String()).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return 0, err
	}
	return row.LastValue, nil
}

// Seed raises the last issued value of docType to value. A lower value is ignored.
func (s *GormSequenceSource) Seed(ctx context.Context, docType document.DocumentType, value int64) error {
	row := models.DocumentSequenceModel{
		DocumentType: docType.String(),
		LastValue:    value,
		UpdatedAt:    time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_value": gorm.Expr("CASE WHEN document_sequences.last_value < ? THEN ? ELSE document_sequences.last_value END", value, value),
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed %s sequence: %w", docType, err)
	}
	return nil
}

// Ensure GormSequenceSource implements document.SequenceSource
var _ document.SequenceSource = (*GormSequenceSource)(nil)
