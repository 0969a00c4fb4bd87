package service

import (
	"context"
	"errors"

	"github.com/mmynk/memoria/internal/access"
	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// visibleAlbum loads an album and checks the user may see it.
func visibleAlbum(ctx context.Context, albums storage.AlbumStore, user *models.User, id string) (*models.Album, error) {
	if id == "" {
		return nil, apperr.Validation("album_id is required")
	}
	album, err := albums.GetAlbum(ctx, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("failed to load album", err)
	}
	if err := access.Album(user, album); err != nil {
		return nil, err
	}
	return album, nil
}

// visiblePhoto loads a photo with its album and checks the user may see it.
func visiblePhoto(ctx context.Context, store photoLookup, user *models.User, id string) (*models.Photo, error) {
	if id == "" {
		return nil, apperr.Validation("photo_id is required")
	}
	photo, err := store.GetPhoto(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, access.Photo(user, nil, nil)
	}
	if err != nil {
		return nil, apperr.Internal("failed to load photo", err)
	}

	album, err := store.GetAlbum(ctx, photo.AlbumID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("failed to load album", err)
	}
	if err := access.Photo(user, photo, album); err != nil {
		return nil, err
	}
	return photo, nil
}

type photoLookup interface {
	GetPhoto(ctx context.Context, id string) (*models.Photo, error)
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
}
