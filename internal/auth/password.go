package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/memoria/internal/models"
	"github.com/mmynk/memoria/internal/storage"
)

var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrWeakPassword          = errors.New("password must be at least 8 characters")
	ErrEmailExists           = errors.New("email already registered")
	ErrInvalidInvitationCode = errors.New("invalid invitation code")
	ErrInactiveUser          = errors.New("account is disabled")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrMissingName           = errors.New("first and last name are required")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// codeAttempts bounds retries when a fresh invitation code collides.
const codeAttempts = 5

// UserStorage defines the persistence the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	CreateFamilyWithAdmin(ctx context.Context, family *models.Family, admin *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetFamilyByCode(ctx context.Context, code string) (*models.Family, error)
	TouchUser(ctx context.Context, id string, at time.Time) error
}

// Registration is the input to Register. An empty InvitationCode creates a
// new family with the user as its admin.
type Registration struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	InvitationCode string
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
	now     func() time.Time
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail makes emails comparable: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func (a *PasswordAuthenticator) validate(reg *Registration) error {
	reg.Email = NormalizeEmail(reg.Email)
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.InvitationCode = models.NormalizeInvitationCode(reg.InvitationCode)

	if _, err := mail.ParseAddress(reg.Email); err != nil || !strings.Contains(reg.Email, "@") {
		return ErrInvalidEmail
	}
	if reg.FirstName == "" || reg.LastName == "" {
		return ErrMissingName
	}
	return a.ValidateCredential(reg.Password)
}

// Register creates an account. With an invitation code the user joins that
// family as a member; without one a new family "Familia <last name>" is
// created with the user as admin, atomically.
func (a *PasswordAuthenticator) Register(ctx context.Context, reg Registration) (*models.User, error) {
	if err := a.validate(&reg); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, reg.Email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reg.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(reg.Email, reg.FirstName, reg.LastName, string(hashedPassword))
	user.RegisteredAt = a.now()

	if reg.InvitationCode != "" {
		return a.join(ctx, user, reg.InvitationCode)
	}
	return a.found(ctx, user)
}

func (a *PasswordAuthenticator) join(ctx context.Context, user *models.User, code string) (*models.User, error) {
	family, err := a.storage.GetFamilyByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidInvitationCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation code: %w", err)
	}

	user.FamilyID = family.ID
	user.Role = models.RoleMember
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (a *PasswordAuthenticator) found(ctx context.Context, user *models.User) (*models.User, error) {
	family := &models.Family{
		ID:        uuid.New().String(),
		Name:      "Familia " + user.LastName,
		AdminID:   user.ID,
		CreatedAt: user.RegisteredAt,
		Settings:  map[string]any{},
	}
	user.FamilyID = family.ID
	user.Role = models.RoleAdmin

	for attempt := 1; ; attempt++ {
		family.InvitationCode = models.NewInvitationCode()
		err := a.storage.CreateFamilyWithAdmin(ctx, family, user)
		switch {
		case err == nil:
			return user, nil
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, ErrEmailExists
		case errors.Is(err, storage.ErrCodeTaken) && attempt < codeAttempts:
			continue
		default:
			return nil, fmt.Errorf("failed to create family: %w", err)
		}
	}
}

// Authenticate verifies the email and password and records the login.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}

	now := a.now()
	if err := a.storage.TouchUser(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastAccessAt = &now

	return user, nil
}
