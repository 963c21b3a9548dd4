package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/renthub-kz/renthub-be/internal/apperr"
	"github.com/renthub-kz/renthub-be/internal/auth"
	"github.com/renthub-kz/renthub-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(name, email, password, role string) (models.User, string, error)
	Login(email, password string) (models.User, string, error)
	GetUserByID(id string) (models.User, error)
}

// UserService provides registration, login and identity lookup.
type UserService struct {
	db     *sql.DB
	tokens *auth.TokenManager
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, tokens *auth.TokenManager) *UserService {
	return &UserService{db: db, tokens: tokens}
}

const minPasswordLen = 6

// Register validates the input, persists the user with a hashed
// password and issues a token. Emails are normalized to lowercase; the
// unique index on users.email is the authoritative duplicate check.
func (s *UserService) Register(name, email, password, role string) (models.User, string, error) {
	var msgs []string
	if strings.TrimSpace(name) == "" {
		msgs = append(msgs, "name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		msgs = append(msgs, "email is required")
	}
	if password == "" {
		msgs = append(msgs, "password is required")
	} else if len(password) < minPasswordLen {
		msgs = append(msgs, "password must be at least 6 characters")
	}
	parsedRole, ok := models.ParseRole(role)
	if !ok {
		msgs = append(msgs, "role must be one of tenant, owner, admin")
	}
	if len(msgs) > 0 {
		return models.User{}, "", apperr.ValidationMessages(msgs)
	}

	user, err := s.createUser(strings.TrimSpace(name), email, password, parsedRole)
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.Internal, "could not issue token", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and
// wrong password yield the same error so the two cases cannot be told
// apart from the outside.
func (s *UserService) Login(email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", apperr.New(apperr.Unauthenticated, "invalid email or password")
		}
		return models.User{}, "", apperr.Wrap(apperr.Internal, "could not look up user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, "", apperr.New(apperr.Unauthenticated, "invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.User{}, "", apperr.Wrap(apperr.Internal, "could not issue token", err)
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, token, nil
}

// GetUserByID retrieves a single user by their ID, excluding the
// password hash. It also resolves the principal for the auth gate.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, name, email, role, created_at, updated_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.Newf(apperr.NotFound, "user %s not found", id)
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "could not look up user", err)
	}
	return user, nil
}

// EnsureAdmin seeds the bootstrap admin account at process start. It is
// a no-op when the configured credentials are empty or the account
// already exists.
func (s *UserService) EnsureAdmin(email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.createUser("Administrator", strings.ToLower(email), password, models.RoleAdmin)
	if apperr.IsKind(err, apperr.Conflict) {
		return nil
	}
	if err == nil {
		log.Info().Str("email", strings.ToLower(email)).Msg("Seeded admin account")
	}
	return err
}

func (s *UserService) createUser(name, email, password string, role models.Role) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "could not hash password", err)
	}

	user := models.User{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
		Role:  role,
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, password_hash, role) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "could not create user", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Name, user.Email, string(hashedPassword), string(user.Role)); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, apperr.New(apperr.Conflict, "email already registered")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "could not create user", err)
	}

	return s.GetUserByID(user.ID)
}

// isUniqueViolation reports whether the driver error is a UNIQUE index
// violation, the storage-level enforcement of our uniqueness rules.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
