package models

import "time"

// Visibility controls who inside a family can see an album.
type Visibility string

const (
	// VisibilityFamily albums are visible to every member of the owning family.
	VisibilityFamily Visibility = "family"
	// VisibilityPrivate albums are visible only to their creator.
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityFamily || v == VisibilityPrivate
}

// Album groups photos of one family.
type Album struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	FamilyID     string     `json:"family_id"`
	CreatorID    string     `json:"creator_id"`
	Visibility   Visibility `json:"visibility"`
	Tags         []string   `json:"tags"`
	CoverPhotoID string     `json:"cover_photo_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AlbumWithPhotos is an album together with its photos.
type AlbumWithPhotos struct {
	Album
	Photos []*Photo `json:"photos"`
}
