package user

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain errors for the user module.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNameRequired = errors.New("display name is required")
)

// Role is a coarse account role.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleStandard || r == RoleAdmin
}

// ConsentSettings are the user's data-processing consents. Analytics and
// AIProcessing are the known flags; Extensions holds flags this version does
// not know about, preserved so newer and older deployments can share rows.
type ConsentSettings struct {
	Analytics    bool
	AIProcessing bool
	Extensions   map[string]bool
}

// Known consent keys. Everything else lands in Extensions.
const (
	consentKeyAnalytics    = "analytics"
	consentKeyAIProcessing = "aiProcessing"
)

// MarshalJSON flattens known flags and extensions into one object, so
// unknown keys written by a newer version survive a read-modify-write here.
func (c ConsentSettings) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, len(c.Extensions)+2)
	for k, v := range c.Extensions {
		out[k] = v
	}
	out[consentKeyAnalytics] = c.Analytics
	out[consentKeyAIProcessing] = c.AIProcessing
	return json.Marshal(out)
}

// UnmarshalJSON lifts known flags out and keeps the rest as extensions.
func (c *ConsentSettings) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Analytics = raw[consentKeyAnalytics]
	c.AIProcessing = raw[consentKeyAIProcessing]
	delete(raw, consentKeyAnalytics)
	delete(raw, consentKeyAIProcessing)
	if len(raw) > 0 {
		c.Extensions = raw
	} else {
		c.Extensions = nil
	}
	return nil
}

// User is an account identity. Accounts are never hard-deleted here;
// deletion requests are handled elsewhere.
type User struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Role       Role
	Consent    ConsentSettings
	MFAEnabled bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewUser creates a standard-role user.
func NewUser(email, name string) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      RoleStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
