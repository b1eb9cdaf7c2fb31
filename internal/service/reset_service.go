package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

const resetTokenDigits = 1000000 // tokens are 000000-999999

// PasswordResetService issues and redeems time-boxed numeric reset tokens.
// A user holds at most one live token at a time.
type PasswordResetService struct {
	users       UserStore
	credentials *AuthService
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewPasswordResetService(users UserStore, credentials *AuthService, tokenTTL time.Duration) *PasswordResetService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}

	return &PasswordResetService{
		users:       users,
		credentials: credentials,
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

// Request returns a reset token for the named account. While an unexpired
// token exists the same one is returned again, so re-requesting never
// invalidates a token the user already copied.
func (s *PasswordResetService) Request(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apierror.New("VALIDATION", "Username is required", "", http.StatusBadRequest)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", usernameNotFound()
		}
		return "", err
	}
	if !user.IsActive {
		return "", usernameNotFound()
	}

	if user.ResetToken != nil && user.ResetTokenExpiry != nil && user.ResetTokenExpiry.After(s.now()) {
		return *user.ResetToken, nil
	}

	token, err := generateResetToken()
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.users.SaveResetToken(ctx, user.ID, token, s.now().Add(s.tokenTTL)); err != nil {
		return "", err
	}

	return token, nil
}

// Redeem exchanges a valid (username, token) pair for a password change.
// The token is cleared together with the password write, so it is single-use.
func (s *PasswordResetService) Redeem(ctx context.Context, username, token, newPassword, confirm string) error {
	username = strings.TrimSpace(username)
	token = strings.TrimSpace(token)

	if username == "" || token == "" || newPassword == "" || confirm == "" {
		return apierror.New("VALIDATION", "All fields are required", "", http.StatusBadRequest)
	}
	if len(newPassword) < minPasswordLen {
		return apierror.New("VALIDATION", "Password must be at least 6 characters", "new_password", http.StatusBadRequest)
	}
	if newPassword != confirm {
		return apierror.New("VALIDATION", "Passwords do not match", "confirm_password", http.StatusBadRequest)
	}

	user, err := s.users.FindActiveByResetToken(ctx, username, token)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return apierror.New("INVALID_RESET_TOKEN", "Invalid or expired reset token", "", http.StatusUnauthorized)
		}
		return err
	}

	return s.credentials.UpdatePassword(ctx, user.ID, newPassword)
}

// generateResetToken draws a uniformly distributed zero-padded 6-digit token
// from a cryptographically secure source.
func generateResetToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetTokenDigits))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func usernameNotFound() *apierror.APIError {
	return apierror.New("NOT_FOUND", "Username not found", "", http.StatusNotFound)
}
