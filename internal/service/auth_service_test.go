package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"

	"medrecord/internal/model"
	"medrecord/pkg/apierror"
)

func requireAPIError(t *testing.T, err error, code string, status int) {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code)
	assert.Equal(t, status, apiErr.HTTPStatus)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newMemUserStore(), bcrypt.MinCost)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		role     string
	}{
		{"empty username", "", "secret1", "secret1", "doctor"},
		{"empty password", "alice", "", "", "doctor"},
		{"empty role", "alice", "secret1", "secret1", ""},
		{"username too short", "al", "secret1", "secret1", "doctor"},
		{"username too long", strings.Repeat("a", 51), "secret1", "secret1", "doctor"},
		{"username bad characters", "alice!", "secret1", "secret1", "doctor"},
		{"password too short", "alice", "short", "short", "doctor"},
		{"password mismatch", "alice", "secret1", "secret2", "doctor"},
		{"role not whitelisted", "alice", "secret1", "secret1", "surgeon"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.username, tc.password, tc.confirm, tc.role)
			requireAPIError(t, err, "VALIDATION", 400)
		})
	}
}

func TestAuthService_RegisterSuccess(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	svc := NewAuthService(store, bcrypt.MinCost)

	user, err := svc.Register(context.Background(), "alice", "secret1", "secret1", "Doctor")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, model.RoleDoctor, user.Role, "role is normalized to lower case")

	stored, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.NotEqual(t, "secret1", stored.PasswordHash, "password must never be stored in the clear")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	svc := NewAuthService(newMemUserStore(), bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "secret1", "doctor")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other99", "other99", "nurse")
	requireAPIError(t, err, "DUPLICATE_USERNAME", 400)

	// Case variants collide too.
	_, err = svc.Register(ctx, "ALICE", "other99", "other99", "nurse")
	requireAPIError(t, err, "DUPLICATE_USERNAME", 400)
}

func TestAuthService_LoginGenericFailure(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	svc := NewAuthService(store, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret1", "secret1", "doctor")
	require.NoError(t, err)

	// Unknown user and wrong password are indistinguishable.
	_, unknownErr := svc.Login(ctx, "nobody", "secret1")
	requireAPIError(t, unknownErr, "INVALID_CREDENTIALS", 401)

	_, wrongErr := svc.Login(ctx, "alice", "wrongpass")
	requireAPIError(t, wrongErr, "INVALID_CREDENTIALS", 401)

	var a, b *apierror.APIError
	require.ErrorAs(t, unknownErr, &a)
	require.ErrorAs(t, wrongErr, &b)
	assert.Equal(t, a.Message, b.Message)

	// Inactive account fails the same way.
	u, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.IsActive = false
	store.byID[u.ID] = u

	_, inactiveErr := svc.Login(ctx, "alice", "secret1")
	requireAPIError(t, inactiveErr, "INVALID_CREDENTIALS", 401)
}

func TestAuthService_LoginSuccess(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	svc := NewAuthService(store, bcrypt.MinCost)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "secret1", "secret1", "nurse")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, model.RoleNurse, user.Role)

	stored, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin, "successful login records last_login")
}

func TestAuthService_UpdatePassword(t *testing.T) {
	t.Parallel()

	store := newMemUserStore()
	svc := NewAuthService(store, bcrypt.MinCost)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret1", "secret1", "doctor")
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "newpass1"))

	_, err = svc.Login(ctx, "alice", "secret1")
	requireAPIError(t, err, "INVALID_CREDENTIALS", 401)

	_, err = svc.Login(ctx, "alice", "newpass1")
	assert.NoError(t, err)

	err = svc.UpdatePassword(ctx, "missing-id", "whatever1")
	assert.True(t, errors.Is(err, model.ErrUserNotFound))
}
