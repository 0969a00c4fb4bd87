package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/memoria/internal/apperr"
	"github.com/mmynk/memoria/internal/auth"
	"github.com/mmynk/memoria/internal/models"
)

// Authenticator registers and verifies accounts.
type Authenticator interface {
	Register(ctx context.Context, reg auth.Registration) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenIssuer creates session tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator Authenticator
	tokens        TokenIssuer
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator Authenticator, tokens TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		logger:        logger,
	}
}

// Register creates a new account, founding or joining a family.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	s.logger.Info("Register request", "email", req.Email, "with_code", req.InvitationCode != "")

	user, err := s.authenticator.Register(ctx, auth.Registration{
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		InvitationCode: req.InvitationCode,
	})
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		return nil, authError(err)
	}

	res, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "family_id", user.FamilyID, "role", user.Role)
	return res, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Email, "error", err)
		return nil, authError(err)
	}

	res, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return res, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, _ *MeRequest) (*UserResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

func (s *AuthService) session(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal("failed to generate token", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}
