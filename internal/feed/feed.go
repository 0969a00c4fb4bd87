// Package feed builds the family timeline and map views.
package feed

import (
	"context"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// Service answers timeline and map queries for a viewer.
type Service struct {
	store storage.FeedStore
	limit int
}

// New creates a service whose timeline returns at most storage.DefaultFeedLimit photos.
func New(store storage.FeedStore) *Service {
	return &Service{store: store, limit: storage.DefaultFeedLimit}
}

// Timeline returns the viewer's family photos ordered by capture time
// (undated last), then upload time, newest first.
func (s *Service) Timeline(ctx context.Context, viewer *models.User) ([]*models.Photo, error) {
	if viewer == nil {
		return nil, apperr.Unauthorized("authentication required", nil)
	}
	photos, err := s.store.Timeline(ctx, storage.FeedQuery{
		FamilyID: viewer.FamilyID,
		ViewerID: viewer.ID,
		Limit:    s.limit,
	})
	if err != nil {
		return nil, apperr.Internal("failed to load timeline", err)
	}
	if len(photos) > s.limit {
		photos = photos[:s.limit]
	}
	return nonNil(photos), nil
}

// Map returns the viewer's family photos that carry a location.
func (s *Service) Map(ctx context.Context, viewer *models.User) ([]*models.Photo, error) {
	if viewer == nil {
		return nil, apperr.Unauthorized("authentication required", nil)
	}
	photos, err := s.store.MapPhotos(ctx, storage.FeedQuery{
		FamilyID: viewer.FamilyID,
		ViewerID: viewer.ID,
	})
	if err != nil {
		return nil, apperr.Internal("failed to load map", err)
	}

	located := photos[:0]
	for _, p := range photos {
		if p.Location != nil {
			located = append(located, p)
		}
	}
	return nonNil(located), nil
}

// nonNil makes empty results encode as [] rather than null.
func nonNil(photos []*models.Photo) []*models.Photo {
	if photos == nil {
		return []*models.Photo{}
	}
	return photos
}
