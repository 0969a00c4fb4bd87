package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

const albumColumns = `id, title, description, family_id, creator_id, visibility, tags, cover_photo_id, created_at`

// visibleAlbum restricts a query aliased "a" to the family's albums a viewer
// may see. It takes the family ID and viewer ID as arguments.
const visibleAlbum = `a.family_id = ? AND (a.visibility = 'family' OR a.creator_id = ?)`

func scanAlbum(row scanner) (*models.Album, error) {
	album := &models.Album{}
	var visibility, tags string
	var createdAt int64
	err := row.Scan(
		&album.ID,
		&album.Title,
		&album.Description,
		&album.FamilyID,
		&album.CreatorID,
		&visibility,
		&tags,
		&album.CoverPhotoID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	album.Visibility = models.Visibility(visibility)
	album.CreatedAt = fromMillis(createdAt)
	if err := decodeJSON(tags, &album.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return album, nil
}

// CreateAlbum persists a new album.
func (s *Store) CreateAlbum(ctx context.Context, album *models.Album) error {
	tags, err := encodeJSON(album.Tags, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	_, err = s.exec(ctx, s.db,
		`INSERT INTO albums (`+albumColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		album.ID,
		album.Title,
		album.Description,
		album.FamilyID,
		album.CreatorID,
		string(album.Visibility),
		tags,
		album.CoverPhotoID,
		toMillis(album.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetAlbum retrieves an album by ID.
func (s *Store) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	album, err := scanAlbum(s.queryRow(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return album, nil
}

// ListAlbums returns the albums of a family visible to viewerID, newest first.
func (s *Store) ListAlbums(ctx context.Context, familyID, viewerID string) ([]*models.Album, error) {
	rows, err := s.query(ctx,
		`SELECT `+albumColumns+` FROM albums a WHERE `+visibleAlbum+` ORDER BY a.created_at DESC, a.id`,
		familyID, viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating albums: %w", err)
	}
	return albums, nil
}
