package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/renthub-kz/renthub-be/internal/apperr"
	"github.com/renthub-kz/renthub-be/internal/models"
)

func TestRegisterSuccess(t *testing.T) {
	db := newTestDB(t)
	tokens := newTestTokens()
	users := NewUserService(db, tokens)

	user, token, err := users.Register("Halim", "USER@Example.COM", "supersecret", "")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Halim", user.Name)
	require.Equal(t, "user@example.com", user.Email, "email is normalized to lowercase")
	require.Equal(t, models.RoleTenant, user.Role, "role defaults to tenant")
	require.Empty(t, user.PasswordHash, "hash never leaves the service")

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}

func TestRegisterValidation(t *testing.T) {
	users := NewUserService(newTestDB(t), newTestTokens())

	cases := []struct {
		name, userName, email, password, role string
	}{
		{"missing name", "", "a@example.com", "password123", ""},
		{"missing email", "Halim", "", "password123", ""},
		{"missing password", "Halim", "a@example.com", "", ""},
		{"short password", "Halim", "a@example.com", "12345", ""},
		{"unknown role", "Halim", "a@example.com", "password123", "landlord"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := users.Register(tc.userName, tc.email, tc.password, tc.role)
			require.Error(t, err)
			require.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := NewUserService(newTestDB(t), newTestTokens())

	_, _, err := users.Register("First", "taken@example.com", "password123", "")
	require.NoError(t, err)

	// Duplicate fails with Conflict, repeatedly, case-insensitively.
	_, _, err = users.Register("Second", "taken@example.com", "password123", "")
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, _, err = users.Register("Third", "TAKEN@EXAMPLE.COM", "password123", "")
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	users := NewUserService(newTestDB(t), newTestTokens())

	registered, _, err := users.Register("Halim", "halim@example.com", "supersecret", "owner")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, token, err := users.Login("HALIM@example.com", "supersecret")
		require.NoError(t, err)
		require.Equal(t, registered.ID, user.ID)
		require.Equal(t, models.RoleOwner, user.Role)
		require.Empty(t, user.PasswordHash)
		require.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, _, errWrongPass := users.Login("halim@example.com", "not-the-password")
		_, _, errNoUser := users.Login("nobody@example.com", "supersecret")

		require.Equal(t, apperr.Unauthenticated, apperr.KindOf(errWrongPass))
		require.Equal(t, apperr.Unauthenticated, apperr.KindOf(errNoUser))
		require.Equal(t, errWrongPass.Error(), errNoUser.Error())
	})
}

func TestGetUserByID(t *testing.T) {
	users := NewUserService(newTestDB(t), newTestTokens())

	registered := registerUser(t, users, "Halim", "halim@example.com", models.RoleTenant)

	user, err := users.GetUserByID(registered.ID)
	require.NoError(t, err)
	require.Equal(t, registered.Email, user.Email)
	require.Empty(t, user.PasswordHash)

	_, err = users.GetUserByID("missing-id")
	require.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestEnsureAdmin(t *testing.T) {
	users := NewUserService(newTestDB(t), newTestTokens())

	require.NoError(t, users.EnsureAdmin("admin@renthub.kz", "changeme123"))
	// Idempotent on restart.
	require.NoError(t, users.EnsureAdmin("admin@renthub.kz", "changeme123"))

	admin, _, err := users.Login("admin@renthub.kz", "changeme123")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)

	t.Run("unset credentials are a no-op", func(t *testing.T) {
		require.NoError(t, users.EnsureAdmin("", ""))
	})
}
