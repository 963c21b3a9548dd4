package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/models"
)

type contextKey string

// principalKey is the context key for the authenticated principal.
const principalKey = contextKey("principal")

// IdentityResolver looks up the principal bound to a verified token.
// The returned user never carries the password hash.
type IdentityResolver interface {
	GetUserByID(id string) (models.User, error)
}

// Authenticator verifies bearer tokens and binds the resolved identity
// to the request context.
type Authenticator struct {
	tokens *TokenManager
	users  IdentityResolver
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenManager, users IdentityResolver) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// PrincipalFromContext returns the authenticated user bound by
// RequireAuth. The second return is false on unauthenticated requests.
func PrincipalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalKey).(models.User)
	return user, ok
}

// RequireAuth is the authentication middleware: bearer extraction,
// token verification, identity lookup, principal binding. Each failure
// mode gets its own 401 message so clients can distinguish an expired
// session from a bad token.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respond.Fail(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			respond.Fail(w, http.StatusUnauthorized, "missing auth token")
			return
		}

		userID, err := a.tokens.Verify(tokenStr)
		if err != nil {
			if err == ErrTokenExpired {
				respond.Fail(w, http.StatusUnauthorized, "token expired")
			} else {
				respond.Fail(w, http.StatusUnauthorized, "invalid auth token")
			}
			return
		}

		// The token may outlive its principal.
		user, err := a.users.GetUserByID(userID)
		if err != nil {
			respond.Fail(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the principal's capability tier. It is
// composed after RequireAuth; a missing principal is a 401, a role
// violation is a 403.
func RequireRole(required models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := PrincipalFromContext(r.Context())
			if !ok {
				respond.Fail(w, http.StatusUnauthorized, "missing auth token")
				return
			}
			if !user.Role.Satisfies(required) {
				respond.Fail(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
