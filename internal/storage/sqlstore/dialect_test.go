package sqlstore

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/mmynk/memoria/internal/storage"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite keeps placeholders", SQLiteDialect{}, "SELECT * FROM users WHERE id = ? AND email = ?", "SELECT * FROM users WHERE id = ? AND email = ?"},
		{"postgres numbers placeholders", PostgresDialect{}, "SELECT * FROM users WHERE id = ? AND email = ?", "SELECT * FROM users WHERE id = $1 AND email = $2"},
		{"postgres without placeholders", PostgresDialect{}, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"sqlite", "postgres", "POSTGRES"} {
		if _, ok := DialectFor(name); !ok {
			t.Errorf("DialectFor(%q) not found", name)
		}
	}
	if _, ok := DialectFor("mysql"); ok {
		t.Error("mysql is not supported")
	}
}

func TestConflictClassification(t *testing.T) {
	sqlite := SQLiteDialect{}
	if err := sqlite.Conflict(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")); !errors.Is(err, storage.ErrEmailTaken) {
		t.Errorf("sqlite email conflict = %v", err)
	}
	if err := sqlite.Conflict(errors.New("constraint failed: UNIQUE constraint failed: families.invitation_code (2067)")); !errors.Is(err, storage.ErrCodeTaken) {
		t.Errorf("sqlite code conflict = %v", err)
	}
	if err := sqlite.Conflict(errors.New("disk I/O error")); err != nil {
		t.Errorf("non-constraint error classified as %v", err)
	}

	pg := PostgresDialect{}
	err := pg.Conflict(&pq.Error{Code: "23505", Constraint: "idx_users_email"})
	if !errors.Is(err, storage.ErrEmailTaken) || !errors.Is(err, storage.ErrConflict) {
		t.Errorf("postgres email conflict = %v", err)
	}
	if err := pg.Conflict(&pq.Error{Code: "23503"}); err != nil {
		t.Errorf("foreign key violation classified as %v", err)
	}
}
