package service

import (
	"github.com/mmynk/memoria/internal/ingest"
	"github.com/mmynk/memoria/internal/models"
)

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	InvitationCode string `json:"invitation_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type MeRequest struct{}

type UserResponse struct {
	User *models.User `json:"user"`
}

type GetFamilyRequest struct{}

type FamilyResponse struct {
	Family *models.FamilyWithMembers `json:"family"`
}

type GetInvitationCodeRequest struct{}

type InvitationCodeResponse struct {
	InvitationCode string `json:"invitation_code"`
}

type SetMemberActiveRequest struct {
	UserID string `json:"user_id"`
	Active bool   `json:"active"`
}

type UpdateSettingsRequest struct {
	Settings map[string]any `json:"settings"`
}

type CreateAlbumRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Visibility  models.Visibility `json:"visibility,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
}

type AlbumResponse struct {
	Album *models.Album `json:"album"`
}

type ListAlbumsRequest struct{}

type ListAlbumsResponse struct {
	Albums []*models.Album `json:"albums"`
}

type GetAlbumRequest struct {
	AlbumID string `json:"album_id"`
}

type AlbumWithPhotosResponse struct {
	Album *models.AlbumWithPhotos `json:"album"`
}

// UploadFile is one file of an upload. Data is base64 in JSON.
type UploadFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type UploadPhotosRequest struct {
	AlbumID     string       `json:"album_id"`
	Files       []UploadFile `json:"files"`
	PlaceName   string       `json:"place_name,omitempty"`
	Description string       `json:"description,omitempty"`
}

type UploadPhotosResponse struct {
	Photos []*models.Photo     `json:"photos"`
	Count  int                 `json:"count"`
	Files  []ingest.FileResult `json:"files"`
}

type GetPhotoRequest struct {
	PhotoID string `json:"photo_id"`
}

type PhotoResponse struct {
	Photo *models.Photo `json:"photo"`
}

type AddCommentRequest struct {
	PhotoID string `json:"photo_id"`
	Text    string `json:"text"`
}

type CommentResponse struct {
	Comment *models.Comment `json:"comment"`
}

type ListCommentsRequest struct {
	PhotoID string `json:"photo_id"`
}

type ListCommentsResponse struct {
	Comments []*models.Comment `json:"comments"`
}

type ReactRequest struct {
	PhotoID string              `json:"photo_id"`
	Kind    models.ReactionKind `json:"kind"`
}

type ReactionResponse struct {
	Reaction *models.Reaction `json:"reaction"`
}

type ListReactionsRequest struct {
	PhotoID string `json:"photo_id"`
}

type ListReactionsResponse struct {
	Reactions []*models.Reaction `json:"reactions"`
}

type TimelineRequest struct{}

type MapRequest struct{}

type PhotosResponse struct {
	Photos []*models.Photo `json:"photos"`
}
