package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/renthub-kz/renthub-be/internal/apperr"
	"github.com/renthub-kz/renthub-be/internal/models"
)

type stubResolver struct {
	users map[string]models.User
}

func (s *stubResolver) GetUserByID(id string) (models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return models.User{}, apperr.New(apperr.NotFound, "user not found")
}

func okHandler(t *testing.T, wantID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, wantID, principal.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func doAuth(t *testing.T, handler http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func failureMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body.Message
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	resolver := &stubResolver{users: map[string]models.User{
		"u1": {ID: "u1", Name: "Aruzhan", Email: "aruzhan@example.com", Role: models.RoleTenant},
	}}
	a := NewAuthenticator(tokens, resolver)

	validToken, err := tokens.Issue("u1")
	require.NoError(t, err)

	t.Run("no header", func(t *testing.T) {
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "missing auth token", failureMessage(t, rec))
	})

	t.Run("no bearer prefix", func(t *testing.T) {
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), validToken)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), "Bearer garbage")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "invalid auth token", failureMessage(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenManager("test-secret", -time.Minute).Issue("u1")
		require.NoError(t, err)
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), "Bearer "+expired)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "token expired", failureMessage(t, rec))
	})

	t.Run("principal gone", func(t *testing.T) {
		ghost, err := tokens.Issue("deleted-user")
		require.NoError(t, err)
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), "Bearer "+ghost)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "user not found", failureMessage(t, rec))
	})

	t.Run("success binds principal", func(t *testing.T) {
		rec := doAuth(t, a.RequireAuth(okHandler(t, "u1")), "Bearer "+validToken)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	resolver := &stubResolver{users: map[string]models.User{
		"tenant": {ID: "tenant", Role: models.RoleTenant},
		"owner":  {ID: "owner", Role: models.RoleOwner},
		"admin":  {ID: "admin", Role: models.RoleAdmin},
	}}
	a := NewAuthenticator(tokens, resolver)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name     string
		userID   string
		required models.Role
		want     int
	}{
		{"tenant blocked from owner route", "tenant", models.RoleOwner, http.StatusForbidden},
		{"owner passes owner route", "owner", models.RoleOwner, http.StatusOK},
		{"admin passes owner route", "admin", models.RoleOwner, http.StatusOK},
		{"owner blocked from admin route", "owner", models.RoleAdmin, http.StatusForbidden},
		{"admin passes admin route", "admin", models.RoleAdmin, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := tokens.Issue(tc.userID)
			require.NoError(t, err)

			handler := a.RequireAuth(RequireRole(tc.required)(ok))
			rec := doAuth(t, handler, "Bearer "+token)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	// RequireRole composed without RequireAuth must fail closed as a 401.
	handler := RequireRole(models.RoleOwner)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))
	rec := doAuth(t, handler, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
