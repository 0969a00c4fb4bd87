// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/memoria/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")

	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrCodeTaken  = fmt.Errorf("%w: invitation code already in use", ErrConflict)
)

// ConflictFor picks the specific conflict error from the name of the violated
// column, constraint or index.
func ConflictFor(detail string) error {
	switch {
	case strings.Contains(detail, "email"):
		return ErrEmailTaken
	case strings.Contains(detail, "invitation_code"):
		return ErrCodeTaken
	default:
		return ErrConflict
	}
}

// DefaultFeedLimit bounds the timeline.
const DefaultFeedLimit = 100

// FeedQuery selects the photos a viewer may see in their family.
type FeedQuery struct {
	FamilyID string
	ViewerID string
	// Limit caps the result; zero means no limit.
	Limit int
}

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts a user joining an existing family.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListFamilyMembers(ctx context.Context, familyID string) ([]*models.User, error)
	TouchUser(ctx context.Context, id string, at time.Time) error
	SetUserActive(ctx context.Context, id string, active bool) error
}

// FamilyStore persists families.
type FamilyStore interface {
	// CreateFamilyWithAdmin inserts a family and its admin atomically.
	// Returns ErrEmailTaken or ErrCodeTaken on uniqueness violations.
	CreateFamilyWithAdmin(ctx context.Context, family *models.Family, admin *models.User) error
	GetFamily(ctx context.Context, id string) (*models.Family, error)
	// GetFamilyByCode looks up a family by its normalized invitation code.
	GetFamilyByCode(ctx context.Context, code string) (*models.Family, error)
	UpdateFamilySettings(ctx context.Context, id string, settings map[string]any) error
}

// AlbumStore persists albums.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, album *models.Album) error
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
	// ListAlbums returns the family's albums the viewer may see, newest first.
	ListAlbums(ctx context.Context, familyID, viewerID string) ([]*models.Album, error)
}

// PhotoStore persists photos.
type PhotoStore interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	GetPhoto(ctx context.Context, id string) (*models.Photo, error)
	ListAlbumPhotos(ctx context.Context, albumID string) ([]*models.Photo, error)
}

// SocialStore persists comments and reactions.
type SocialStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, photoID string) ([]*models.Comment, error)
	// UpsertReaction stores the author's reaction to a photo, replacing the
	// kind of any earlier one. It returns the stored reaction.
	UpsertReaction(ctx context.Context, reaction *models.Reaction) (*models.Reaction, error)
	ListReactions(ctx context.Context, photoID string) ([]*models.Reaction, error)
}

// FeedStore answers the aggregation queries. Visibility and family come from
// the photo's album.
type FeedStore interface {
	// Timeline orders by capture time descending with undated photos last,
	// then by upload time descending.
	Timeline(ctx context.Context, q FeedQuery) ([]*models.Photo, error)
	// MapPhotos returns visible photos that have a location, in storage order.
	MapPhotos(ctx context.Context, q FeedQuery) ([]*models.Photo, error)
}

// Store is the full persistence surface. Implementations: SQL (SQLite,
// PostgreSQL) and MongoDB.
type Store interface {
	UserStore
	FamilyStore
	AlbumStore
	PhotoStore
	SocialStore
	FeedStore

	// Close releases any resources held by the store.
	Close() error
}
