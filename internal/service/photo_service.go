package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/ingest"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// PhotoStore is the persistence PhotoService needs.
type PhotoStore interface {
	storage.PhotoStore
	storage.SocialStore
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
}

// Uploader runs uploads through the ingestion pipeline.
type Uploader interface {
	Ingest(ctx context.Context, uploader *models.User, batch ingest.Batch) (*ingest.Result, error)
}

// PhotoService implements the PhotoService RPC interface.
type PhotoService struct {
	store    PhotoStore
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

func NewPhotoService(store PhotoStore, uploader Uploader, logger *slog.Logger) *PhotoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotoService{
		store:    store,
		uploader: uploader,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UploadPhotos stores the image files of the request in an album. Non-image
// files are skipped and per-file failures are reported in Files.
func (s *PhotoService) UploadPhotos(ctx context.Context, req *UploadPhotosRequest) (*UploadPhotosResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.AlbumID == "" {
		return nil, apperr.Validation("album_id is required")
	}
	if len(req.Files) == 0 {
		return nil, apperr.Validation("at least one file is required")
	}

	batch := ingest.Batch{
		AlbumID:     req.AlbumID,
		PlaceName:   strings.TrimSpace(req.PlaceName),
		Description: strings.TrimSpace(req.Description),
		Files:       make([]ingest.File, len(req.Files)),
	}
	for i, f := range req.Files {
		batch.Files[i] = ingest.File{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data}
	}

	res, err := s.uploader.Ingest(ctx, user, batch)
	if err != nil {
		return nil, err
	}
	photos := res.Photos
	if photos == nil {
		photos = []*models.Photo{}
	}
	return &UploadPhotosResponse{Photos: photos, Count: res.Count(), Files: res.Files}, nil
}

func (s *PhotoService) GetPhoto(ctx context.Context, req *GetPhotoRequest) (*PhotoResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	photo, err := visiblePhoto(ctx, s.store, user, req.PhotoID)
	if err != nil {
		return nil, err
	}
	return &PhotoResponse{Photo: photo}, nil
}

// AddComment appends a comment to a visible photo.
func (s *PhotoService) AddComment(ctx context.Context, req *AddCommentRequest) (*CommentResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	photo, err := visiblePhoto(ctx, s.store, user, req.PhotoID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PhotoID:   photo.ID,
		AuthorID:  user.ID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, apperr.Internal("failed to add comment", err)
	}
	return &CommentResponse{Comment: comment}, nil
}

func (s *PhotoService) ListComments(ctx context.Context, req *ListCommentsRequest) (*ListCommentsResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	photo, err := visiblePhoto(ctx, s.store, user, req.PhotoID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, photo.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list comments", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &ListCommentsResponse{Comments: comments}, nil
}

// React sets the caller's reaction to a photo, replacing any earlier kind.
func (s *PhotoService) React(ctx context.Context, req *ReactRequest) (*ReactionResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if !req.Kind.Valid() {
		return nil, apperr.Validation("unknown reaction %q", req.Kind)
	}
	photo, err := visiblePhoto(ctx, s.store, user, req.PhotoID)
	if err != nil {
		return nil, err
	}

	reaction, err := s.store.UpsertReaction(ctx, &models.Reaction{
		ID:        uuid.New().String(),
		PhotoID:   photo.ID,
		AuthorID:  user.ID,
		Kind:      req.Kind,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, apperr.Internal("failed to save reaction", err)
	}
	return &ReactionResponse{Reaction: reaction}, nil
}

func (s *PhotoService) ListReactions(ctx context.Context, req *ListReactionsRequest) (*ListReactionsResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	photo, err := visiblePhoto(ctx, s.store, user, req.PhotoID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.store.ListReactions(ctx, photo.ID)
	if err != nil {
		return nil, apperr.Internal("failed to list reactions", err)
	}
	if reactions == nil {
		reactions = []*models.Reaction{}
	}
	return &ListReactionsResponse{Reactions: reactions}, nil
}
