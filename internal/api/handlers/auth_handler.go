package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/api/respond"
	"github.com/renthub-kz/renthub-be/internal/models"
	"github.com/renthub-kz/renthub-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service services.UserServiceProvider
	dev     bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, dev bool) *AuthHandler {
	return &AuthHandler{service: service, dev: dev}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkPayload(payload); err != nil {
		respond.Error(w, err, h.dev)
		return
	}

	user, token, err := h.service.Register(payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		if respond.StatusOf(err) == http.StatusInternalServerError {
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		}
		respond.Error(w, err, h.dev)
		return
	}

	respond.Data(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkPayload(payload); err != nil {
		respond.Error(w, err, h.dev)
		return
	}

	user, token, err := h.service.Login(payload.Email, payload.Password)
	if err != nil {
		if respond.StatusOf(err) == http.StatusUnauthorized {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		} else {
			log.Error().Err(err).Str("email", payload.Email).Msg("Login failed unexpectedly")
		}
		respond.Error(w, err, h.dev)
		return
	}

	respond.Data(w, http.StatusOK, authResponse{User: user, Token: token})
}
