package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of health-record categories.
type Category string

const (
	CategorySymptoms     Category = "symptoms"
	CategoryMedications  Category = "medications"
	CategoryAppointments Category = "appointments"
	CategoryLabResults   Category = "lab_results"
)

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is known.
func (c Category) IsValid() bool {
	switch c {
	case CategorySymptoms, CategoryMedications, CategoryAppointments, CategoryLabResults:
		return true
	default:
		return false
	}
}

// ParseCategory parses a category from its wire form.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// HealthRecord is one entry in a user's health history. It belongs to
// exactly one owner; family members reach it through permission edges.
type HealthRecord struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Category    Category
	Date        time.Time
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewHealthRecord creates a record owned by ownerID.
func NewHealthRecord(ownerID uuid.UUID, title, description string, category Category, date time.Time) *HealthRecord {
	now := time.Now()
	return &HealthRecord{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Document is an attachment on a health record. The content lives in the
// object store under StorageKey; this is only the reference.
type Document struct {
	ID          uuid.UUID
	RecordID    uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string
	CreatedAt   time.Time
}

// NewDocument creates a document reference for a record.
func NewDocument(recordID uuid.UUID, fileName, contentType string, size int64, storageKey string) *Document {
	return &Document{
		ID:          uuid.New(),
		RecordID:    recordID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		StorageKey:  storageKey,
		CreatedAt:   time.Now(),
	}
}
