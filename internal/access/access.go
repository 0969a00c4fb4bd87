// Package access decides whether a user may see or manage family resources.
//
// Every function is pure: it looks only at records the caller already loaded
// and returns nil or an apperr error of kind NotFound or Forbidden.
package access

import (
	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/models"
)

// Album allows family members to see family albums and creators to see
// their private albums.
func Album(user *models.User, album *models.Album) error {
	if album == nil {
		return apperr.NotFound("album not found")
	}
	if user == nil || user.FamilyID != album.FamilyID {
		return apperr.Forbidden("album belongs to another family")
	}
	if album.Visibility == models.VisibilityPrivate && album.CreatorID != user.ID {
		return apperr.Forbidden("album is private")
	}
	return nil
}

// Photo checks the photo exists and then applies the album rule to the
// album it belongs to.
func Photo(user *models.User, photo *models.Photo, album *models.Album) error {
	if photo == nil {
		return apperr.NotFound("photo not found")
	}
	if album == nil {
		// A photo always has an album; a dangling one is treated as gone.
		return apperr.NotFound("photo not found")
	}
	return Album(user, album)
}

// UploadTarget is the precondition for adding photos to album. Any failure
// is reported as NotFound so uploaders cannot probe other families' albums.
func UploadTarget(user *models.User, album *models.Album) error {
	if err := Album(user, album); err != nil {
		return apperr.NotFound("album not found")
	}
	return nil
}

// InvitationCode allows only the family admin to read the code.
func InvitationCode(user *models.User) error {
	if user == nil || !user.IsAdmin() {
		return apperr.Forbidden("only the family admin can view the invitation code")
	}
	return nil
}

// ManageFamily allows only the admin to change family-wide settings.
func ManageFamily(user *models.User, family *models.Family) error {
	if family == nil {
		return apperr.NotFound("family not found")
	}
	if user == nil || !user.IsAdmin() || user.FamilyID != family.ID {
		return apperr.Forbidden("only the family admin can change the family")
	}
	return nil
}

// ManageMembers allows the admin to manage a member of their own family.
func ManageMembers(admin, target *models.User) error {
	if admin == nil || !admin.IsAdmin() {
		return apperr.Forbidden("only the family admin can manage members")
	}
	if target == nil {
		return apperr.NotFound("user not found")
	}
	if target.FamilyID != admin.FamilyID {
		return apperr.Forbidden("user belongs to another family")
	}
	return nil
}

// CanSeeAlbum is the boolean form of Album used when filtering lists.
func CanSeeAlbum(user *models.User, album *models.Album) bool {
	return Album(user, album) == nil
}
