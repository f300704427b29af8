package family

import "fmt"

// Permission is the tier carried by a family-member edge.
//
// Tiers are deliberately unordered: access decisions compare a tier against
// an operation's qualifying set by exact membership, never by rank. An admin
// edge does not pass a check unless admin is listed in that check's set.
type Permission string

const (
	PermissionView  Permission = "view"
	PermissionEdit  Permission = "edit"
	PermissionAdmin Permission = "admin"
)

// String returns the string representation.
func (p Permission) String() string {
	return string(p)
}

// IsValid checks if the permission is a known tier.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	default:
		return false
	}
}

// ParsePermission parses a permission tier from its wire form.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, s)
	}
	return p, nil
}

// PermissionSet is the set of tiers that qualify for one operation.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given tiers.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports whether p is a member of the set.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Qualifying sets per operation class. Every operation enumerates the full
// set of tiers that pass it; nothing is implied by tier name.
var (
	ViewTiers  = NewPermissionSet(PermissionView, PermissionEdit, PermissionAdmin)
	EditTiers  = NewPermissionSet(PermissionEdit, PermissionAdmin)
	AdminTiers = NewPermissionSet(PermissionAdmin)
)
