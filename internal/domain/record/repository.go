package record

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/family"
)

// ListFilter narrows a record listing.
type ListFilter struct {
	Category *Category
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Repository persists health records.
type Repository interface {
	Create(ctx context.Context, record *HealthRecord) error

	// GetByID retrieves a record, or ErrRecordNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error)

	// ListByOwner lists an owner's records, newest date first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*HealthRecord, error)

	Update(ctx context.Context, record *HealthRecord) error

	// Delete removes the record and its document references.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentRepository persists document references.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error

	// GetByID retrieves a document reference, or ErrDocumentNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// ListByRecord lists a record's documents.
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Document, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentStore is the object store holding attachment content, addressed
// by opaque key.
type DocumentStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// AccessResolver decides whether an actor may operate on another user's
// records. Implemented by the family module. Call sites enumerate the full
// qualifying tier set for each operation; nothing is implied by tier rank.
type AccessResolver interface {
	CanAccess(ctx context.Context, actorID, ownerID uuid.UUID, required family.PermissionSet) (bool, error)
}

// NotificationSink receives the owner-facing notification emitted when a
// family member mutates a record. Failures are logged, never propagated.
type NotificationSink interface {
	RecordMutated(ctx context.Context, ownerID, actorID uuid.UUID, action Action, record *HealthRecord) error
}

// Action names a record mutation for notification purposes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)
