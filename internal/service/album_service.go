package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// AlbumStore is the persistence AlbumService needs.
type AlbumStore interface {
	storage.AlbumStore
	ListAlbumPhotos(ctx context.Context, albumID string) ([]*models.Photo, error)
}

// AlbumService implements the AlbumService RPC interface.
type AlbumService struct {
	store  AlbumStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAlbumService(store AlbumStore, logger *slog.Logger) *AlbumService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlbumService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateAlbum creates an album in the caller's family. Visibility defaults
// to family.
func (s *AlbumService) CreateAlbum(ctx context.Context, req *CreateAlbumRequest) (*AlbumResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityFamily
	}
	if !visibility.Valid() {
		return nil, apperr.Validation("unknown visibility %q", visibility)
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	album := &models.Album{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		FamilyID:    user.FamilyID,
		CreatorID:   user.ID,
		Visibility:  visibility,
		Tags:        tags,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateAlbum(ctx, album); err != nil {
		return nil, apperr.Internal("failed to create album", err)
	}

	s.logger.Info("Album created", "album_id", album.ID, "family_id", album.FamilyID, "visibility", album.Visibility)
	return &AlbumResponse{Album: album}, nil
}

// ListAlbums returns the albums the caller can see, newest first.
func (s *AlbumService) ListAlbums(ctx context.Context, _ *ListAlbumsRequest) (*ListAlbumsResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	albums, err := s.store.ListAlbums(ctx, user.FamilyID, user.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list albums", err)
	}
	if albums == nil {
		albums = []*models.Album{}
	}
	return &ListAlbumsResponse{Albums: albums}, nil
}

// GetAlbum returns an album with its photos.
func (s *AlbumService) GetAlbum(ctx context.Context, req *GetAlbumRequest) (*AlbumWithPhotosResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	album, err := visibleAlbum(ctx, s.store, user, req.AlbumID)
	if err != nil {
		return nil, err
	}

	photos, err := s.store.ListAlbumPhotos(ctx, album.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list photos", err)
	}
	if photos == nil {
		photos = []*models.Photo{}
	}
	return &AlbumWithPhotosResponse{Album: &models.AlbumWithPhotos{Album: *album, Photos: photos}}, nil
}
