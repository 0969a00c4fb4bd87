package models

import (
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestNewInvitationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := NewInvitationCode()
		if !codePattern.MatchString(code) {
			t.Fatalf("code %q is not 8 uppercase alphanumerics", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("expected codes to be mostly unique, got %d distinct of 50", len(seen))
	}
}

func TestNormalizeInvitationCode(t *testing.T) {
	if got := NormalizeInvitationCode("  ab12cd34 "); got != "AB12CD34" {
		t.Errorf("NormalizeInvitationCode() = %q, want AB12CD34", got)
	}
}

func TestNewUserDefaults(t *testing.T) {
	u := NewUser("ana@example.com", "Ana", "García", "hash")
	if u.ID == "" {
		t.Error("expected ID to be generated")
	}
	if !u.Active {
		t.Error("new users should be active")
	}
	if u.Role != RoleMember || u.IsAdmin() {
		t.Errorf("new users default to member, got %q", u.Role)
	}
}

func TestEnumsValid(t *testing.T) {
	for _, k := range []ReactionKind{ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if ReactionKind("angry").Valid() {
		t.Error("angry is not a supported reaction")
	}
	if !VisibilityFamily.Valid() || !VisibilityPrivate.Valid() {
		t.Error("family and private should be valid visibilities")
	}
	if Visibility("public").Valid() {
		t.Error("public is not a supported visibility")
	}
}
