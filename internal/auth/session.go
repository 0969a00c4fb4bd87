package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

// ErrUnknownUser is returned for a valid token whose user no longer exists.
var ErrUnknownUser = errors.New("token user does not exist")

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Sessions turns bearer tokens into users.
type Sessions struct {
	jwt   *JWTManager
	users UserLookup
}

func NewSessions(jwt *JWTManager, users UserLookup) *Sessions {
	return &Sessions{jwt: jwt, users: users}
}

// Issue creates a token for user.
func (s *Sessions) Issue(user *models.User) (string, error) {
	return s.jwt.Generate(user)
}

// Resolve validates token and loads its user. Errors are ErrInvalidToken,
// ErrExpiredToken, ErrUnknownUser or ErrInactiveUser, or a wrapped storage
// failure.
func (s *Sessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}
	return user, nil
}
