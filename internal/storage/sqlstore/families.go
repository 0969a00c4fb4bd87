package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

const familyColumns = `id, name, description, invitation_code, admin_id, settings, created_at`

func scanFamily(row scanner) (*models.Family, error) {
	family := &models.Family{}
	var settings string
	var createdAt int64
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.Description,
		&family.InvitationCode,
		&family.AdminID,
		&settings,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	family.CreatedAt = fromMillis(createdAt)
	if err := decodeJSON(settings, &family.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if family.Settings == nil {
		family.Settings = map[string]any{}
	}
	return family, nil
}

// CreateFamilyWithAdmin inserts the family and its admin in one transaction.
func (s *Store) CreateFamilyWithAdmin(ctx context.Context, family *models.Family, admin *models.User) error {
	settings, err := encodeJSON(family.Settings, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = s.exec(ctx, tx,
		`INSERT INTO families (`+familyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		family.ID,
		family.Name,
		family.Description,
		family.InvitationCode,
		family.AdminID,
		settings,
		toMillis(family.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert family: %w", err)
	}

	if err := s.insertUser(ctx, tx, admin); err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetFamily retrieves a family by ID.
func (s *Store) GetFamily(ctx context.Context, id string) (*models.Family, error) {
	family, err := scanFamily(s.queryRow(ctx, `SELECT `+familyColumns+` FROM families WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetFamilyByCode retrieves a family by invitation code.
func (s *Store) GetFamilyByCode(ctx context.Context, code string) (*models.Family, error) {
	family, err := scanFamily(s.queryRow(ctx,
		`SELECT `+familyColumns+` FROM families WHERE invitation_code = ?`,
		models.NormalizeInvitationCode(code),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family by code: %w", err)
	}
	return family, nil
}

// UpdateFamilySettings replaces the settings map.
func (s *Store) UpdateFamilySettings(ctx context.Context, id string, settings map[string]any) error {
	raw, err := encodeJSON(settings, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	res, err := s.exec(ctx, s.db, `UPDATE families SET settings = ? WHERE id = ?`, raw, id)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return requireRow(res)
}
