package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("album %s not found", "a1"), KindNotFound},
		{"wrapped forbidden", fmt.Errorf("outer: %w", Forbidden("no access")), KindForbidden},
		{"conflict", Conflict("email already registered"), KindConflict},
		{"validation", Validation("title is required"), KindValidation},
		{"unauthorized", Unauthorized("invalid token", errors.New("bad sig")), KindUnauthorized},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading album: %w", NotFound("album not found"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("did not expect errors.Is to match ErrForbidden")
	}
}

func TestUnauthorizedKeepsCause(t *testing.T) {
	cause := errors.New("token expired")
	err := Unauthorized("session expired", cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	if MessageOf(err) != "session expired" {
		t.Errorf("MessageOf() = %q", MessageOf(err))
	}
}

func TestMessageOfPlainError(t *testing.T) {
	if got := MessageOf(errors.New("db exploded")); got != "internal error" {
		t.Errorf("MessageOf() = %q, want internal error", got)
	}
}
