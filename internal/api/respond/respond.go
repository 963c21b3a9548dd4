// Package respond writes the uniform JSON response envelope used by
// every endpoint, and maps the apperr taxonomy to HTTP status codes.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/renthub-kz/renthub-be/internal/apperr"
)

// Envelope is the response shape of every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// JSON writes an envelope with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// Data writes a successful envelope carrying a payload.
func Data(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// List writes a successful envelope carrying a slice payload plus its
// element count.
func List(w http.ResponseWriter, status int, data any, count int) {
	JSON(w, status, Envelope{Success: true, Data: data, Count: &count})
}

// Message writes a successful envelope with only a message.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: true, Message: msg})
}

// Fail writes a failure envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Success: false, Message: msg})
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.InvalidReference, apperr.Conflict, apperr.InvalidOperation:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error writes a failure envelope for a service error. Internal detail
// is only exposed when showDetail is set (development mode).
func Error(w http.ResponseWriter, err error, showDetail bool) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !showDetail {
		msg = "internal server error"
	}
	Fail(w, status, msg)
}
