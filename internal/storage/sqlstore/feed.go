package sqlstore

import (
	"context"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

const feedFrom = ` FROM photos p JOIN albums a ON a.id = p.album_id WHERE ` + visibleAlbum

// Timeline returns the viewer's visible photos, newest capture first.
func (s *Store) Timeline(ctx context.Context, q storage.FeedQuery) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + feedFrom +
		` ORDER BY p.captured_at DESC NULLS LAST, p.uploaded_at DESC, p.id`
	args := []any{q.FamilyID, q.ViewerID}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	return scanPhotos(rows)
}

// MapPhotos returns the viewer's visible geotagged photos in upload order.
func (s *Store) MapPhotos(ctx context.Context, q storage.FeedQuery) ([]*models.Photo, error) {
	query := `SELECT ` + photoColumns + feedFrom +
		` AND p.lat IS NOT NULL AND p.lng IS NOT NULL ORDER BY p.uploaded_at, p.id`
	args := []any{q.FamilyID, q.ViewerID}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query map photos: %w", err)
	}
	return scanPhotos(rows)
}
