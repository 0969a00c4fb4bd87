package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvitationCodeLength is the number of characters in a family invitation code.
const InvitationCodeLength = 8

// Family is the sharing boundary: albums and photos are visible to its members.
type Family struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// InvitationCode lets new users join on registration. Stored upper-cased.
	InvitationCode string `json:"invitation_code,omitempty"`

	// AdminID is the single administrator; always a member of this family.
	AdminID string `json:"admin_id"`

	CreatedAt time.Time      `json:"created_at"`
	Settings  map[string]any `json:"settings"`
}

// FamilyWithMembers is a family together with its member accounts.
type FamilyWithMembers struct {
	Family
	Members []*User `json:"members"`
}

// NewInvitationCode returns a random 8-character uppercase alphanumeric code.
func NewInvitationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:InvitationCodeLength])
}

// NormalizeInvitationCode makes user-entered codes comparable with stored ones.
func NormalizeInvitationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
