package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famvault/server/internal/domain/record"
	"github.com/famvault/server/internal/infra/persistence/entity"
)

// RecordRepository implements record.Repository.
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

var _ record.Repository = (*RecordRepository)(nil)

func (r *RecordRepository) Create(ctx context.Context, rec *record.HealthRecord) error {
	e := entity.FromDomainRecord(rec)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.HealthRecord, error) {
	var e entity.HealthRecordEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, record.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get record by ID: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter record.ListFilter) ([]*record.HealthRecord, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.Category != nil {
		q = q.Where("category = ?", filter.Category.String())
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var entities []entity.HealthRecordEntity
	if err := q.Order("date DESC, created_at DESC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	records := make([]*record.HealthRecord, len(entities))
	for i := range entities {
		records[i] = entities[i].ToDomain()
	}
	return records, nil
}

func (r *RecordRepository) Update(ctx context.Context, rec *record.HealthRecord) error {
	e := entity.FromDomainRecord(rec)
	result := r.db.WithContext(ctx).
		Model(&entity.HealthRecordEntity{}).
		Where("id = ?", rec.ID).
		Updates(map[string]any{
			"title":       e.Title,
			"description": e.Description,
			"category":    e.Category,
			"date":        e.Date,
			"tags":        e.Tags,
			"updated_at":  e.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return record.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record and its document references in one transaction.
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", id).Delete(&entity.DocumentEntity{}).Error; err != nil {
			return fmt.Errorf("delete record documents: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&entity.HealthRecordEntity{})
		if result.Error != nil {
			return fmt.Errorf("delete record: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return record.ErrRecordNotFound
		}
		return nil
	})
}

// DocumentRepository implements record.DocumentRepository.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var _ record.DocumentRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) Create(ctx context.Context, doc *record.Document) error {
	e := entity.FromDomainDocument(doc)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.Document, error) {
	var e entity.DocumentEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, record.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document by ID: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *DocumentRepository) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*record.Document, error) {
	var entities []entity.DocumentEntity
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]*record.Document, len(entities))
	for i := range entities {
		docs[i] = entities[i].ToDomain()
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DocumentEntity{})
	if result.Error != nil {
		return fmt.Errorf("delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return record.ErrDocumentNotFound
	}
	return nil
}
