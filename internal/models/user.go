package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role inside their family.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is unique across the service and used for login.
	Email string `json:"email"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// PasswordHash is the bcrypt hash of the user's password. Never serialized.
	PasswordHash string `json:"-"`

	// FamilyID is the family this user belongs to.
	FamilyID string `json:"family_id"`

	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Active is false for accounts disabled by the family admin.
	Active bool `json:"active"`

	RegisteredAt time.Time  `json:"registered_at"`
	LastAccessAt *time.Time `json:"last_access_at,omitempty"`
}

// NewUser creates an active user with a fresh ID.
func NewUser(email, firstName, lastName, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Role:         RoleMember,
		Active:       true,
		RegisteredAt: time.Now().UTC(),
	}
}

// IsAdmin reports whether the user administers their family.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
