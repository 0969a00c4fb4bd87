package models

import "time"

// Location is a point in signed decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Photo is an uploaded image and its extracted metadata.
type Photo struct {
	ID string `json:"id"`

	// Filename is the name the file had on the uploader's device.
	Filename string `json:"filename"`

	// StorageKey is the unique blob-store key; FileURL is where clients fetch it.
	StorageKey   string `json:"storage_key"`
	FileURL      string `json:"file_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	AlbumID    string `json:"album_id"`
	FamilyID   string `json:"family_id"`
	UploadedBy string `json:"uploaded_by"`

	UploadedAt time.Time  `json:"uploaded_at"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`

	Location  *Location `json:"location,omitempty"`
	PlaceName string    `json:"place_name,omitempty"`

	TaggedPeople []string `json:"tagged_people"`
	Description  string   `json:"description,omitempty"`
	Anecdote     string   `json:"anecdote,omitempty"`

	// Metadata holds extracted attributes: camera_make, camera_model, width,
	// height, format and altitude.
	Metadata map[string]any `json:"metadata"`
}
