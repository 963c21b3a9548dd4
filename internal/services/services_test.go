package services

import (
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/database"
	"github.com/renthub-kz/renthub-be/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Hour)
}

// fakeImageStore records deletions and can be told to fail for
// specific URLs.
type fakeImageStore struct {
	deleted []string
	failOn  map[string]bool
}

func (f *fakeImageStore) Save(name string, r io.Reader) (string, error) {
	return "/uploads/" + name, nil
}

func (f *fakeImageStore) Delete(url string) error {
	if f.failOn[url] {
		return errors.New("object store unavailable")
	}
	f.deleted = append(f.deleted, url)
	return nil
}

func registerUser(t *testing.T, users *UserService, name, email string, role models.Role) models.User {
	t.Helper()
	u, _, err := users.Register(name, email, "password123", string(role))
	require.NoError(t, err)
	return u
}

func createListing(t *testing.T, listings *ListingService, owner models.User, title string, price float64, typ models.ListingType, location string) models.Listing {
	t.Helper()
	l, err := listings.CreateListing(owner, CreateListingInput{
		Title:       title,
		Description: strings.Repeat("very nice place ", 3),
		Price:       price,
		Location:    location,
		Type:        string(typ),
	})
	require.NoError(t, err)
	return l
}
