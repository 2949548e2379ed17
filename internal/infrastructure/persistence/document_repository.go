package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Save inserts a document record with its items
func (r *GormDocumentRepository) Save(ctx context.Context, record *document.Record) error {
	model, err := models.DocumentModelFromDomain(record)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.NewDomainError(shared.ErrAlreadyExists.Code,
					fmt.Sprintf("document %s already exists", record.Number))
			}
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

// FindByID finds a document record by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Record, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document record by its document number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*document.Record, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("document_no = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of records and the number of records matching the filter
func (r *GormDocumentRepository) List(ctx context.Context, filter document.ListFilter) ([]document.Record, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.DocumentModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyFilter(r.db.WithContext(ctx), filter)
	var docModels []models.DocumentModel
	if err := r.applyPagination(query, filter.Filter).
		Preload("Items", orderedItems).
		Find(&docModels).Error; err != nil {
		return nil, 0, err
	}

	records := make([]document.Record, len(docModels))
	for i := range docModels {
		records[i] = *docModels[i].ToDomain()
	}
	return records, total, nil
}

// Count returns the number of stored records
func (r *GormDocumentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// counterScanLimit bounds how many of the longest numbers LastCounter inspects
const counterScanLimit = 50

// LastCounter returns the highest counter stored for docType, 0 when none.
// Numbers that carry no counter, such as UUID suffixes, are skipped.
func (r *GormDocumentRepository) LastCounter(ctx context.Context, docType document.DocumentType, dated bool) (uint64, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("document_type = ?", docType.String()).
		Order("LENGTH(document_no) DESC").
		Order("document_no DESC").
		Limit(counterScanLimit).
		Pluck("document_no", &numbers).Error; err != nil {
		return 0, err
	}

	var last uint64
	for _, number := range numbers {
		if _, n, err := document.CounterOf(number, dated); err == nil && n > last {
			last = n
		}
	}
	return last, nil
}

// applyFilter applies the type and search filters
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter document.ListFilter) *gorm.DB {
	if filter.DocumentType != "" {
		query = query.Where("document_type = ?", filter.DocumentType.String())
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(document_no) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?",
			pattern, pattern, pattern)
	}

	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	return query
}

// applyPagination applies ordering, limit and offset
func (r *GormDocumentRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Order(documentOrder(filter.OrderBy, filter.OrderDir))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}

// Ensure GormDocumentRepository implements document.Repository
var _ document.Repository = (*GormDocumentRepository)(nil)
