package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token signature is valid but
	// the expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for any other verification failure.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims defines the JWT claims structure. The user id is the only
// application claim carried by a token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the signed, time-boxed credentials
// presented per request. The secret and lifetime come from the config
// struct, never from the process environment.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a new JWT bound to the given user id.
func (m *TokenManager) Issue(userID string) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a JWT string and returns the bound user
// id. Expired tokens are distinguished from otherwise invalid ones so
// the caller can message them differently.
func (m *TokenManager) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
