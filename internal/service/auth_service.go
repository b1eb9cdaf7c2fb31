package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6

	defaultBcryptCost = 12
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AuthService owns credential registration and verification. It is the only
// code that reads or writes password hashes.
type AuthService struct {
	users      UserStore
	bcryptCost int
}

// NewAuthService creates the credential service. bcryptCost below the
// library minimum falls back to the production default; tests pass
// bcrypt.MinCost to stay fast.
func NewAuthService(users UserStore, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = defaultBcryptCost
	}

	return &AuthService{users: users, bcryptCost: bcryptCost}
}

// Register validates the submission and stores a new credential record.
// Nothing sensitive is echoed back on success.
func (s *AuthService) Register(ctx context.Context, username, password, confirm, role string) (model.AuthUser, error) {
	username = strings.TrimSpace(username)
	role = strings.ToLower(strings.TrimSpace(role))

	if username == "" || password == "" || confirm == "" || role == "" {
		return model.AuthUser{}, apierror.New("VALIDATION", "All fields are required", "", http.StatusBadRequest)
	}
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return model.AuthUser{}, apierror.New("VALIDATION", "Username must be 3-50 characters", "username", http.StatusBadRequest)
	}
	if !usernamePattern.MatchString(username) {
		return model.AuthUser{}, apierror.New("VALIDATION", "Username can only contain letters, numbers, and underscores", "username", http.StatusBadRequest)
	}
	if len(password) < minPasswordLen {
		return model.AuthUser{}, apierror.New("VALIDATION", "Password must be at least 6 characters", "password", http.StatusBadRequest)
	}
	if password != confirm {
		return model.AuthUser{}, apierror.New("VALIDATION", "Passwords do not match", "confirm_password", http.StatusBadRequest)
	}
	if !model.ValidRole(role) {
		return model.AuthUser{}, apierror.New("VALIDATION", "Invalid role selected", "role", http.StatusBadRequest)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.AuthUser{}, err
	}
	if exists {
		return model.AuthUser{}, duplicateUsername()
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return model.AuthUser{}, err
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The existence check above can lose a race; the store's uniqueness
	// constraint is the real arbiter.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return model.AuthUser{}, duplicateUsername()
		}
		return model.AuthUser{}, err
	}

	return model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// Login verifies the credentials and records the login time. Every failure
// mode returns the same generic error so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (model.AuthUser, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return model.AuthUser{}, apierror.New("VALIDATION", "Username and password required", "", http.StatusBadRequest)
	}
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return model.AuthUser{}, apierror.New("VALIDATION", "Invalid username format", "username", http.StatusBadRequest)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.AuthUser{}, invalidCredentials()
		}
		return model.AuthUser{}, err
	}

	if !user.IsActive {
		return model.AuthUser{}, invalidCredentials()
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.AuthUser{}, invalidCredentials()
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// The login itself succeeded; a stale last_login is not worth
		// failing the request over.
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return model.AuthUser{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// UpdatePassword re-hashes and stores a new password. The store clears any
// outstanding reset token in the same write.
func (s *AuthService) UpdatePassword(ctx context.Context, userID string, newPassword string) error {
	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func invalidCredentials() *apierror.APIError {
	return apierror.New("INVALID_CREDENTIALS", "Invalid username or password", "", http.StatusUnauthorized)
}

func duplicateUsername() *apierror.APIError {
	return apierror.New("DUPLICATE_USERNAME", "Username already exists", "", http.StatusBadRequest)
}
