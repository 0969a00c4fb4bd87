package mongostore

import (
	"time"

	"github.com/mmynk/memoria/internal/models"
)

// Documents mirror the models with bson field names. Dates are stored as BSON
// dates with millisecond precision.

type userDoc struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	FirstName    string     `bson:"first_name"`
	LastName     string     `bson:"last_name"`
	PasswordHash string     `bson:"password_hash"`
	FamilyID     string     `bson:"family_id"`
	Role         string     `bson:"role"`
	AvatarURL    string     `bson:"avatar_url,omitempty"`
	Active       bool       `bson:"active"`
	RegisteredAt time.Time  `bson:"registered_at"`
	LastAccessAt *time.Time `bson:"last_access_at,omitempty"`
}

func fromUser(u *models.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		FamilyID:     u.FamilyID,
		Role:         string(u.Role),
		AvatarURL:    u.AvatarURL,
		Active:       u.Active,
		RegisteredAt: u.RegisteredAt,
		LastAccessAt: u.LastAccessAt,
	}
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		PasswordHash: d.PasswordHash,
		FamilyID:     d.FamilyID,
		Role:         models.Role(d.Role),
		AvatarURL:    d.AvatarURL,
		Active:       d.Active,
		RegisteredAt: d.RegisteredAt,
		LastAccessAt: d.LastAccessAt,
	}
}

type familyDoc struct {
	ID             string         `bson:"_id"`
	Name           string         `bson:"name"`
	Description    string         `bson:"description,omitempty"`
	InvitationCode string         `bson:"invitation_code"`
	AdminID        string         `bson:"admin_id"`
	CreatedAt      time.Time      `bson:"created_at"`
	Settings       map[string]any `bson:"settings"`
}

func fromFamily(f *models.Family) familyDoc {
	settings := f.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return familyDoc{
		ID:             f.ID,
		Name:           f.Name,
		Description:    f.Description,
		InvitationCode: f.InvitationCode,
		AdminID:        f.AdminID,
		CreatedAt:      f.CreatedAt,
		Settings:       settings,
	}
}

func (d familyDoc) model() *models.Family {
	settings := d.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	return &models.Family{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		InvitationCode: d.InvitationCode,
		AdminID:        d.AdminID,
		CreatedAt:      d.CreatedAt,
		Settings:       settings,
	}
}

type albumDoc struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Description  string    `bson:"description,omitempty"`
	FamilyID     string    `bson:"family_id"`
	CreatorID    string    `bson:"creator_id"`
	Visibility   string    `bson:"visibility"`
	Tags         []string  `bson:"tags"`
	CoverPhotoID string    `bson:"cover_photo_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func fromAlbum(a *models.Album) albumDoc {
	return albumDoc{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		FamilyID:     a.FamilyID,
		CreatorID:    a.CreatorID,
		Visibility:   string(a.Visibility),
		Tags:         a.Tags,
		CoverPhotoID: a.CoverPhotoID,
		CreatedAt:    a.CreatedAt,
	}
}

func (d albumDoc) model() *models.Album {
	return &models.Album{
		ID:           d.ID,
		Title:        d.Title,
		Description:  d.Description,
		FamilyID:     d.FamilyID,
		CreatorID:    d.CreatorID,
		Visibility:   models.Visibility(d.Visibility),
		Tags:         d.Tags,
		CoverPhotoID: d.CoverPhotoID,
		CreatedAt:    d.CreatedAt,
	}
}

type locationDoc struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type photoDoc struct {
	ID           string         `bson:"_id"`
	Filename     string         `bson:"filename"`
	StorageKey   string         `bson:"storage_key"`
	FileURL      string         `bson:"file_url"`
	ThumbnailURL string         `bson:"thumbnail_url,omitempty"`
	AlbumID      string         `bson:"album_id"`
	FamilyID     string         `bson:"family_id"`
	UploadedBy   string         `bson:"uploaded_by"`
	UploadedAt   time.Time      `bson:"uploaded_at"`
	CapturedAt   *time.Time     `bson:"captured_at,omitempty"`
	Location     *locationDoc   `bson:"location,omitempty"`
	PlaceName    string         `bson:"place_name,omitempty"`
	TaggedPeople []string       `bson:"tagged_people"`
	Description  string         `bson:"description,omitempty"`
	Anecdote     string         `bson:"anecdote,omitempty"`
	Metadata     map[string]any `bson:"metadata"`
}

func fromPhoto(p *models.Photo) photoDoc {
	d := photoDoc{
		ID:           p.ID,
		Filename:     p.Filename,
		StorageKey:   p.StorageKey,
		FileURL:      p.FileURL,
		ThumbnailURL: p.ThumbnailURL,
		AlbumID:      p.AlbumID,
		FamilyID:     p.FamilyID,
		UploadedBy:   p.UploadedBy,
		UploadedAt:   p.UploadedAt,
		CapturedAt:   p.CapturedAt,
		PlaceName:    p.PlaceName,
		TaggedPeople: p.TaggedPeople,
		Description:  p.Description,
		Anecdote:     p.Anecdote,
		Metadata:     p.Metadata,
	}
	if d.TaggedPeople == nil {
		d.TaggedPeople = []string{}
	}
	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
	if p.Location != nil {
		d.Location = &locationDoc{Lat: p.Location.Lat, Lng: p.Location.Lng}
	}
	return d
}

func (d photoDoc) model() *models.Photo {
	p := &models.Photo{
		ID:           d.ID,
		Filename:     d.Filename,
		StorageKey:   d.StorageKey,
		FileURL:      d.FileURL,
		ThumbnailURL: d.ThumbnailURL,
		AlbumID:      d.AlbumID,
		FamilyID:     d.FamilyID,
		UploadedBy:   d.UploadedBy,
		UploadedAt:   d.UploadedAt,
		CapturedAt:   d.CapturedAt,
		PlaceName:    d.PlaceName,
		TaggedPeople: d.TaggedPeople,
		Description:  d.Description,
		Anecdote:     d.Anecdote,
		Metadata:     d.Metadata,
	}
	if d.Location != nil {
		p.Location = &models.Location{Lat: d.Location.Lat, Lng: d.Location.Lng}
	}
	return p
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	PhotoID   string    `bson:"photo_id"`
	AuthorID  string    `bson:"author_id"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
	Edited    bool      `bson:"edited"`
}

type reactionDoc struct {
	ID        string    `bson:"_id"`
	PhotoID   string    `bson:"photo_id"`
	AuthorID  string    `bson:"author_id"`
	Kind      string    `bson:"kind"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d reactionDoc) model() *models.Reaction {
	return &models.Reaction{
		ID:        d.ID,
		PhotoID:   d.PhotoID,
		AuthorID:  d.AuthorID,
		Kind:      models.ReactionKind(d.Kind),
		CreatedAt: d.CreatedAt,
	}
}
