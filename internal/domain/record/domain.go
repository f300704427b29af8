package record

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/utils/random"
)

// Domain implements access-gated health-record operations. Every cross-user
// path runs through the permission resolver before touching storage; denial
// surfaces as family.ErrAccessDenied.
type Domain struct {
	records       Repository
	documents     DocumentRepository
	store         DocumentStore
	access        AccessResolver
	notifications NotificationSink
	logger        *zap.Logger
}

// NewDomain creates a record domain. notifications may be nil in contexts
// without a notification sink (summaries, tooling).
func NewDomain(
	records Repository,
	documents DocumentRepository,
	store DocumentStore,
	access AccessResolver,
	notifications NotificationSink,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		records:       records,
		documents:     documents,
		store:         store,
		access:        access,
		notifications: notifications,
		logger:        logger,
	}
}

// CreateInput carries the fields for a new record.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Date        time.Time
	Tags        []string
}

// UpdateInput carries the mutable fields of a record. Nil fields are left
// untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Date        *time.Time
	Tags        *[]string
}

// Create creates a record owned by ownerID. A non-owner actor needs an edit
// tier; the owner is then notified of who added what.
func (d *Domain) Create(ctx context.Context, actorID, ownerID uuid.UUID, in CreateInput) (*HealthRecord, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	category, err := ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	if err := d.require(ctx, actorID, ownerID, family.EditTiers); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	rec := NewHealthRecord(ownerID, title, in.Description, category, date)
	rec.Tags = in.Tags
	if err := d.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	if actorID != ownerID {
		d.notifyOwner(ctx, ownerID, actorID, ActionCreated, rec)
	}
	return rec, nil
}

// Get retrieves one record, gated at view tier.
func (d *Domain) Get(ctx context.Context, actorID, recordID uuid.UUID) (*HealthRecord, error) {
	rec, err := d.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.ViewTiers); err != nil {
		return nil, err
	}
	return rec, nil
}

// List lists ownerID's records, gated at view tier.
func (d *Domain) List(ctx context.Context, actorID, ownerID uuid.UUID, filter ListFilter) ([]*HealthRecord, error) {
	if err := d.require(ctx, actorID, ownerID, family.ViewTiers); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return d.records.ListByOwner(ctx, ownerID, filter)
}

// Update mutates a record, gated at edit tier. A non-owner mutation
// notifies the owner.
func (d *Domain) Update(ctx context.Context, actorID, recordID uuid.UUID, in UpdateInput) (*HealthRecord, error) {
	rec, err := d.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.EditTiers); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		rec.Title = title
	}
	if in.Description != nil {
		rec.Description = *in.Description
	}
	if in.Category != nil {
		category, err := ParseCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		rec.Category = category
	}
	if in.Date != nil {
		rec.Date = *in.Date
	}
	if in.Tags != nil {
		rec.Tags = *in.Tags
	}
	rec.UpdatedAt = time.Now()

	if err := d.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	if actorID != rec.OwnerID {
		d.notifyOwner(ctx, rec.OwnerID, actorID, ActionUpdated, rec)
	}
	return rec, nil
}

// Delete removes a record and its stored documents. Destructive, so a
// non-owner needs the admin tier specifically; edit does not qualify.
func (d *Domain) Delete(ctx context.Context, actorID, recordID uuid.UUID) error {
	rec, err := d.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.AdminTiers); err != nil {
		return err
	}

	docs, err := d.documents.ListByRecord(ctx, recordID)
	if err != nil {
		return err
	}

	if err := d.records.Delete(ctx, recordID); err != nil {
		return err
	}

	// Object-store cleanup is best effort; the references are already gone.
	for _, doc := range docs {
		if err := d.store.Delete(ctx, doc.StorageKey); err != nil {
			d.logger.Warn("orphaned document content",
				zap.String("storage_key", doc.StorageKey),
				zap.Error(err),
			)
		}
	}

	if actorID != rec.OwnerID {
		d.notifyOwner(ctx, rec.OwnerID, actorID, ActionDeleted, rec)
	}
	return nil
}

// AttachDocument stores content and links it to the record, gated at edit
// tier.
func (d *Domain) AttachDocument(ctx context.Context, actorID, recordID uuid.UUID, fileName, contentType string, size int64, body io.Reader) (*Document, error) {
	rec, err := d.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.EditTiers); err != nil {
		return nil, err
	}

	suffix, err := random.Hex(16)
	if err != nil {
		return nil, fmt.Errorf("generate storage key: %w", err)
	}
	key := fmt.Sprintf("records/%s/%s", recordID, suffix)

	if err := d.store.Put(ctx, key, body, contentType, size); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc := NewDocument(recordID, fileName, contentType, size, key)
	if err := d.documents.Create(ctx, doc); err != nil {
		if delErr := d.store.Delete(ctx, key); delErr != nil {
			d.logger.Warn("orphaned document content",
				zap.String("storage_key", key),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	if actorID != rec.OwnerID {
		d.notifyOwner(ctx, rec.OwnerID, actorID, ActionUpdated, rec)
	}
	return doc, nil
}

// OpenDocument returns a document's metadata and a reader over its content,
// gated at view tier. The caller closes the reader.
func (d *Domain) OpenDocument(ctx context.Context, actorID, documentID uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := d.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := d.records.GetByID(ctx, doc.RecordID)
	if err != nil {
		return nil, nil, err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.ViewTiers); err != nil {
		return nil, nil, err
	}

	body, err := d.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document: %w", err)
	}
	return doc, body, nil
}

// ListDocuments lists a record's documents, gated at view tier.
func (d *Domain) ListDocuments(ctx context.Context, actorID, recordID uuid.UUID) ([]*Document, error) {
	rec, err := d.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.ViewTiers); err != nil {
		return nil, err
	}
	return d.documents.ListByRecord(ctx, recordID)
}

// DeleteDocument removes a document reference and its content. Destructive,
// admin tier for non-owners.
func (d *Domain) DeleteDocument(ctx context.Context, actorID, documentID uuid.UUID) error {
	doc, err := d.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	rec, err := d.records.GetByID(ctx, doc.RecordID)
	if err != nil {
		return err
	}
	if err := d.require(ctx, actorID, rec.OwnerID, family.AdminTiers); err != nil {
		return err
	}

	if err := d.documents.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := d.store.Delete(ctx, doc.StorageKey); err != nil {
		d.logger.Warn("orphaned document content",
			zap.String("storage_key", doc.StorageKey),
			zap.Error(err),
		)
	}

	if actorID != rec.OwnerID {
		d.notifyOwner(ctx, rec.OwnerID, actorID, ActionUpdated, rec)
	}
	return nil
}

// Summarize renders the user's most recent records as a short plain-text
// digest for chat grounding. Same-user only; no gate.
func (d *Domain) Summarize(ctx context.Context, userID uuid.UUID, limit int) (string, error) {
	if limit <= 0 {
		limit = 10
	}
	records, err := d.records.ListByOwner(ctx, userID, ListFilter{Limit: limit})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, rec := range records {
		desc := rec.Description
		if len(desc) > 160 {
			desc = desc[:160] + "..."
		}
		fmt.Fprintf(&b, "- %s [%s] %s", rec.Date.Format("2006-01-02"), rec.Category, rec.Title)
		if desc != "" {
			fmt.Fprintf(&b, ": %s", desc)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// require collapses the resolver decision to an error.
func (d *Domain) require(ctx context.Context, actorID, ownerID uuid.UUID, tiers family.PermissionSet) error {
	ok, err := d.access.CanAccess(ctx, actorID, ownerID, tiers)
	if err != nil {
		return err
	}
	if !ok {
		return family.ErrAccessDenied
	}
	return nil
}

// notifyOwner emits the single owner notification for a non-owner mutation.
// Failures are logged; the mutation has already happened.
func (d *Domain) notifyOwner(ctx context.Context, ownerID, actorID uuid.UUID, action Action, rec *HealthRecord) {
	if d.notifications == nil {
		return
	}
	if err := d.notifications.RecordMutated(ctx, ownerID, actorID, action, rec); err != nil {
		d.logger.Warn("owner notification failed",
			zap.String("owner_id", ownerID.String()),
			zap.String("record_id", rec.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
