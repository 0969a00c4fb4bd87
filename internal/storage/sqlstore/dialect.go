package sqlstore

import (
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/memoria/internal/storage"
)

// Dialect hides the differences between the supported SQL databases.
type Dialect interface {
	// Name is the value used in configuration ("sqlite", "postgres").
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// Rebind converts ? placeholders to the driver's syntax.
	Rebind(query string) string

	// ConfigureConnection applies pool settings after opening.
	ConfigureConnection(db *sql.DB) error

	// Conflict translates a unique violation into a storage conflict error,
	// or returns nil if err is not one.
	Conflict(err error) error
}

// Dialects by configuration name.
var dialects = map[string]Dialect{
	"sqlite":   SQLiteDialect{},
	"postgres": PostgresDialect{},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

var placeholderRegexp = regexp.MustCompile(`\?`)

func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// SQLiteDialect uses modernc.org/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string       { return "sqlite" }
func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) Rebind(query string) string {
	return query
}

// ConfigureConnection serializes access through one connection; SQLite
// allows a single writer and pragmas are per connection.
func (SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return err
	}
	return nil
}

func (SQLiteDialect) Conflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	return storage.ConflictFor(msg)
}

// PostgresDialect uses github.com/lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string       { return "postgres" }
func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) Rebind(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func (PostgresDialect) Conflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return nil
	}
	return storage.ConflictFor(pqErr.Constraint)
}
