package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/famvault/server/internal/domain/record"
)

// HealthRecordEntity is the GORM entity for health records.
type HealthRecordEntity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description string
	Category    string         `gorm:"not null;index"`
	Date        time.Time      `gorm:"not null;index"`
	Tags        pq.StringArray `gorm:"type:text[]"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name.
func (HealthRecordEntity) TableName() string {
	return "health_records"
}

// ToDomain converts to domain entity.
func (e *HealthRecordEntity) ToDomain() *record.HealthRecord {
	return &record.HealthRecord{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Title:       e.Title,
		Description: e.Description,
		Category:    record.Category(e.Category),
		Date:        e.Date,
		Tags:        []string(e.Tags),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromDomainRecord converts from domain entity.
func FromDomainRecord(r *record.HealthRecord) *HealthRecordEntity {
	return &HealthRecordEntity{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category.String(),
		Date:        r.Date,
		Tags:        pq.StringArray(r.Tags),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// DocumentEntity is the GORM entity for record attachments.
type DocumentEntity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecordID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"not null"`
	ContentType string
	Size        int64
	StorageKey  string `gorm:"uniqueIndex;not null"`
	CreatedAt   time.Time
}

// TableName returns the table name.
func (DocumentEntity) TableName() string {
	return "record_documents"
}

// ToDomain converts to domain entity.
func (e *DocumentEntity) ToDomain() *record.Document {
	return &record.Document{
		ID:          e.ID,
		RecordID:    e.RecordID,
		FileName:    e.FileName,
		ContentType: e.ContentType,
		Size:        e.Size,
		StorageKey:  e.StorageKey,
		CreatedAt:   e.CreatedAt,
	}
}

// FromDomainDocument converts from domain entity.
func FromDomainDocument(d *record.Document) *DocumentEntity {
	return &DocumentEntity{
		ID:          d.ID,
		RecordID:    d.RecordID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		StorageKey:  d.StorageKey,
		CreatedAt:   d.CreatedAt,
	}
}
