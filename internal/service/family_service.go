package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/memoria/internal/access"
	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// FamilyStore is the persistence FamilyService needs.
type FamilyStore interface {
	storage.FamilyStore
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListFamilyMembers(ctx context.Context, familyID string) ([]*models.User, error)
	SetUserActive(ctx context.Context, id string, active bool) error
}

// FamilyService implements the FamilyService RPC interface.
type FamilyService struct {
	store  FamilyStore
	logger *slog.Logger
}

func NewFamilyService(store FamilyStore, logger *slog.Logger) *FamilyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyService{store: store, logger: logger}
}

// GetFamily returns the caller's family with its members. The invitation
// code is only included for the admin.
func (s *FamilyService) GetFamily(ctx context.Context, _ *GetFamilyRequest) (*FamilyResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	family, err := s.familyWithMembers(ctx, user.FamilyID)
	if err != nil {
		return nil, err
	}
	if access.InvitationCode(user) != nil {
		family.InvitationCode = ""
	}
	return &FamilyResponse{Family: family}, nil
}

// GetInvitationCode returns the code new members register with.
func (s *FamilyService) GetInvitationCode(ctx context.Context, _ *GetInvitationCodeRequest) (*InvitationCodeResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := access.InvitationCode(user); err != nil {
		return nil, err
	}
	family, err := s.family(ctx, user.FamilyID)
	if err != nil {
		return nil, err
	}
	return &InvitationCodeResponse{InvitationCode: family.InvitationCode}, nil
}

// SetMemberActive enables or disables a member's account.
func (s *FamilyService) SetMemberActive(ctx context.Context, req *SetMemberActiveRequest) (*UserResponse, error) {
	admin, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, apperr.Validation("user_id is required")
	}

	target, err := s.store.GetUserByID(ctx, req.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal("failed to load user", err)
	}
	if err := access.ManageMembers(admin, target); err != nil {
		return nil, err
	}
	if target.ID == admin.ID && !req.Active {
		return nil, apperr.Validation("the admin cannot deactivate their own account")
	}

	if err := s.store.SetUserActive(ctx, target.ID, req.Active); err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}
	target.Active = req.Active

	s.logger.Info("Member status changed", "admin_id", admin.ID, "user_id", target.ID, "active", req.Active)
	return &UserResponse{User: target}, nil
}

// UpdateSettings replaces the family settings map.
func (s *FamilyService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*FamilyResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	family, err := s.family(ctx, user.FamilyID)
	if err != nil {
		return nil, err
	}
	if err := access.ManageFamily(user, family); err != nil {
		return nil, err
	}

	settings := req.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	if err := s.store.UpdateFamilySettings(ctx, family.ID, settings); err != nil {
		return nil, apperr.Internal("failed to update settings", err)
	}

	updated, err := s.familyWithMembers(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	return &FamilyResponse{Family: updated}, nil
}

func (s *FamilyService) family(ctx context.Context, id string) (*models.Family, error) {
	family, err := s.store.GetFamily(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("family not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load family", err)
	}
	return family, nil
}

func (s *FamilyService) familyWithMembers(ctx context.Context, id string) (*models.FamilyWithMembers, error) {
	family, err := s.family(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListFamilyMembers(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to list members", err)
	}
	if members == nil {
		members = []*models.User{}
	}
	return &models.FamilyWithMembers{Family: *family, Members: members}, nil
}
