package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

const photoFields = `id, filename, storage_key, file_url, thumbnail_url, album_id, family_id, uploaded_by, uploaded_at, captured_at, lat, lng, place_name, tagged_people, description, anecdote, metadata`

// photoColumns selects photoFields from a table aliased "p".
const photoColumns = `p.id, p.filename, p.storage_key, p.file_url, p.thumbnail_url, p.album_id, p.family_id, p.uploaded_by, p.uploaded_at, p.captured_at, p.lat, p.lng, p.place_name, p.tagged_people, p.description, p.anecdote, p.metadata`

func scanPhoto(row scanner) (*models.Photo, error) {
	photo := &models.Photo{}
	var uploadedAt int64
	var capturedAt sql.NullInt64
	var lat, lng sql.NullFloat64
	var tagged, metadata string
	err := row.Scan(
		&photo.ID,
		&photo.Filename,
		&photo.StorageKey,
		&photo.FileURL,
		&photo.ThumbnailURL,
		&photo.AlbumID,
		&photo.FamilyID,
		&photo.UploadedBy,
		&uploadedAt,
		&capturedAt,
		&lat,
		&lng,
		&photo.PlaceName,
		&tagged,
		&photo.Description,
		&photo.Anecdote,
		&metadata,
	)
	if err != nil {
		return nil, err
	}
	photo.UploadedAt = fromMillis(uploadedAt)
	photo.CapturedAt = fromNullMillis(capturedAt)
	if lat.Valid && lng.Valid {
		photo.Location = &models.Location{Lat: lat.Float64, Lng: lng.Float64}
	}
	if err := decodeJSON(tagged, &photo.TaggedPeople); err != nil {
		return nil, fmt.Errorf("failed to decode tagged people: %w", err)
	}
	if err := decodeJSON(metadata, &photo.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return photo, nil
}

func scanPhotos(rows *sql.Rows) ([]*models.Photo, error) {
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// CreatePhoto persists a new photo record.
func (s *Store) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	tagged, err := encodeJSON(photo.TaggedPeople, "[]")
	if err != nil {
		return fmt.Errorf("failed to encode tagged people: %w", err)
	}
	metadata, err := encodeJSON(photo.Metadata, "{}")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	var lat, lng sql.NullFloat64
	if photo.Location != nil {
		lat = sql.NullFloat64{Float64: photo.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: photo.Location.Lng, Valid: true}
	}

	_, err = s.exec(ctx, s.db,
		`INSERT INTO photos (`+photoFields+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		photo.ID,
		photo.Filename,
		photo.StorageKey,
		photo.FileURL,
		photo.ThumbnailURL,
		photo.AlbumID,
		photo.FamilyID,
		photo.UploadedBy,
		toMillis(photo.UploadedAt),
		nullMillis(photo.CapturedAt),
		lat,
		lng,
		photo.PlaceName,
		tagged,
		photo.Description,
		photo.Anecdote,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetPhoto retrieves a photo by ID.
func (s *Store) GetPhoto(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := scanPhoto(s.queryRow(ctx, `SELECT `+photoColumns+` FROM photos p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return photo, nil
}

// ListAlbumPhotos returns an album's photos in upload order.
func (s *Store) ListAlbumPhotos(ctx context.Context, albumID string) ([]*models.Photo, error) {
	rows, err := s.query(ctx,
		`SELECT `+photoColumns+` FROM photos p WHERE p.album_id = ? ORDER BY p.uploaded_at, p.id`,
		albumID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list album photos: %w", err)
	}
	return scanPhotos(rows)
}
