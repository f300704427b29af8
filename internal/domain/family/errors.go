package family

import "errors"

// Domain errors for the family module.
var (
	// Edge errors
	ErrMemberNotFound = errors.New("family member not found")
	ErrAlreadyMember  = errors.New("user is already a family member")
	ErrSelfEdge       = errors.New("cannot add yourself as a family member")

	// Permission errors
	ErrInvalidPermission = errors.New("invalid permission tier")
	ErrAccessDenied      = errors.New("access denied")

	// Invitation errors
	ErrEmailRequired      = errors.New("invitee email is required")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationPending  = errors.New("invitation already pending for this email")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationConsumed = errors.New("invitation has already been used")
	ErrInvitationNotYours = errors.New("invitation is addressed to a different email")
)
