package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123")
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, err := m.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
