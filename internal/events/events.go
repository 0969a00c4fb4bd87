// Package events announces completed uploads to other services.
package events

import (
	"context"
	"time"
)

// DefaultQueue is the queue photos.uploaded events are published to.
const DefaultQueue = "photos.uploaded"

// PhotosUploaded is published after a batch stored at least one photo.
type PhotosUploaded struct {
	FamilyID   string    `json:"family_id"`
	AlbumID    string    `json:"album_id"`
	UploadedBy string    `json:"uploaded_by"`
	PhotoIDs   []string  `json:"photo_ids"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Publisher delivers events.
type Publisher interface {
	PublishPhotosUploaded(ctx context.Context, event PhotosUploaded) error
	Close() error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishPhotosUploaded(context.Context, PhotosUploaded) error { return nil }
func (Noop) Close() error                                                { return nil }
