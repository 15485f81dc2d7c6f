package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/models"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes the {"error": message} body every endpoint fails with.
func WriteError(w http.ResponseWriter, status int, message string) {
	if err := WriteJSON(w, status, models.ErrorResponse{Error: message}); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}

// WriteHandlerError writes err as a JSON error. HandlerErrors keep their
// status; anything else is a 500 with a generic message.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		if handlerErr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(handlerErr.Err).Msg(handlerErr.Message)
		}
		WriteError(w, handlerErr.Status, handlerErr.Message)
		return
	}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		WriteError(w, http.StatusBadRequest, fieldErr.Error())
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled request error")
	WriteError(w, http.StatusInternalServerError, "internal server error")
}

// RequireUser writes a 401 and returns nil when the request carries no
// authenticated user.
func RequireUser(w http.ResponseWriter, r *http.Request) *authz.AuthUser {
	user := authz.UserFromContext(r.Context())
	if err := authz.RequireUser(user); err != nil {
		log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Access denied: unauthenticated")
		WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return user
}

// RequireAdmin is RequireUser plus the admin capability check.
func RequireAdmin(w http.ResponseWriter, r *http.Request) *authz.AuthUser {
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())
	if err := authz.RequireAdmin(user); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logger.Warn().Str("path", r.URL.Path).Msg("Admin access denied: unauthenticated")
			WriteError(w, http.StatusUnauthorized, "authentication required")
		case errors.Is(err, authz.ErrForbidden):
			logger.Warn().Int64("user_id", user.ID).Str("path", r.URL.Path).Msg("Admin access denied: forbidden")
			WriteError(w, http.StatusForbidden, "administrators only")
		default:
			logger.Error().Err(err).Msg("Admin access denied: error")
			WriteError(w, http.StatusInternalServerError, "failed to authorize request")
		}
		return nil
	}
	return user
}
