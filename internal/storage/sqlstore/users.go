package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

const userColumns = `id, email, first_name, last_name, password_hash, family_id, role, avatar_url, active, registered_at, last_access_at`

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var role string
	var registeredAt int64
	var lastAccess sql.NullInt64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.FamilyID,
		&role,
		&user.AvatarURL,
		&user.Active,
		&registeredAt,
		&lastAccess,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	user.RegisteredAt = fromMillis(registeredAt)
	user.LastAccessAt = fromNullMillis(lastAccess)
	return user, nil
}

func (s *Store) insertUser(ctx context.Context, e execer, user *models.User) error {
	_, err := s.exec(ctx, e,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.FamilyID,
		string(user.Role),
		user.AvatarURL,
		user.Active,
		toMillis(user.RegisteredAt),
		nullMillis(user.LastAccessAt),
	)
	return err
}

// CreateUser inserts a new user into an existing family.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.insertUser(ctx, s.db, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ListFamilyMembers returns the family's users in registration order.
func (s *Store) ListFamilyMembers(ctx context.Context, familyID string) ([]*models.User, error) {
	rows, err := s.query(ctx,
		`SELECT `+userColumns+` FROM users WHERE family_id = ? ORDER BY registered_at, id`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// TouchUser records a login.
func (s *Store) TouchUser(ctx context.Context, id string, at time.Time) error {
	res, err := s.exec(ctx, s.db, `UPDATE users SET last_access_at = ? WHERE id = ?`, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to update last access: %w", err)
	}
	return requireRow(res)
}

// SetUserActive enables or disables an account.
func (s *Store) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.exec(ctx, s.db, `UPDATE users SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res)
}
