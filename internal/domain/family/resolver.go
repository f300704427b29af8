package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Resolver answers "may this actor perform this class of operation on
// resources owned by that user". It is a pure read: ownership short-circuits
// everything, otherwise the single edge (owner → actor) decides by set
// membership against the operation's qualifying tiers.
type Resolver struct {
	edges EdgeRepository
}

// NewResolver creates a permission resolver over the edge store.
func NewResolver(edges EdgeRepository) *Resolver {
	return &Resolver{edges: edges}
}

// CanAccess reports whether actorID may act on resources owned by ownerID
// at the given operation class. Owners always pass. A missing edge denies;
// storage failures propagate as errors, never as a silent deny-or-allow.
func (r *Resolver) CanAccess(ctx context.Context, actorID, ownerID uuid.UUID, required PermissionSet) (bool, error) {
	if actorID == ownerID {
		return true, nil
	}

	edge, err := r.edges.Find(ctx, ownerID, actorID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("resolve family edge: %w", err)
	}

	return required.Contains(edge.Permission), nil
}

// Require is CanAccess collapsed to an error: ErrAccessDenied on a negative
// decision, for call sites that gate and bail.
func (r *Resolver) Require(ctx context.Context, actorID, ownerID uuid.UUID, required PermissionSet) error {
	ok, err := r.CanAccess(ctx, actorID, ownerID, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}
