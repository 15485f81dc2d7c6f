// internal/api/users/handlers.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/apiutil"
	"github.com/codr1/quadras/internal/api/auth"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
)

const (
	usersQueryTimeout = 5 * time.Second
	emailTakenText    = "e-mail already registered"
)

var queries *db.Queries

func InitHandlers(q *db.Queries) {
	queries = q
}

func userFromRow(row db.User) models.User {
	return models.User{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Type:  row.Type,
	}
}

func writeUsers(w http.ResponseWriter, r *http.Request, rows []db.User) {
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, userFromRow(row))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, users); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write users response")
	}
}

// GET /api/users/socios
func HandleListMembers(w http.ResponseWriter, r *http.Request) {
	if apiutil.RequireUser(w, r) == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	rows, err := queries.ListUsersByType(ctx, models.UserTypeMember)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list members")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load members")
		return
	}
	writeUsers(w, r, rows)
}

// GET /api/users
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if apiutil.RequireAdmin(w, r) == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	rows, err := queries.ListUsers(ctx)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to list users")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	writeUsers(w, r, rows)
}

// POST /api/users/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if apiutil.RequireAdmin(w, r) == nil {
		return
	}

	var form models.UserForm
	if err := apiutil.DecodeJSON(r, &form); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err := booking.CheckRegistration(form)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	row, err := queries.CreateUser(ctx, db.CreateUserParams{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: hash,
		Type:         form.Type,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			apiutil.WriteError(w, http.StatusConflict, emailTakenText)
			return
		}
		logger.Error().Err(err).Msg("Failed to create user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	logger.Info().Int64("created_user_id", row.ID).Str("tipo", row.Type).Msg("User registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, userFromRow(row)); err != nil {
		logger.Error().Err(err).Msg("Failed to write user response")
	}
}

// PUT /api/users/{id}
func HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if apiutil.RequireAdmin(w, r) == nil {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	var form models.UserForm
	if err := apiutil.DecodeJSON(r, &form); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	form, err = booking.CheckUpdate(form)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	current, err := queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		logger.Error().Err(err).Int64("target_user_id", id).Msg("Failed to load user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	if form.Type == "" {
		form.Type = current.Type
	}

	row, err := queries.UpdateUser(ctx, db.UpdateUserParams{
		ID:    id,
		Name:  form.Name,
		Email: form.Email,
		Type:  form.Type,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			apiutil.WriteError(w, http.StatusConflict, emailTakenText)
			return
		}
		logger.Error().Err(err).Int64("target_user_id", id).Msg("Failed to update user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	logger.Info().Int64("target_user_id", id).Msg("User updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, userFromRow(row)); err != nil {
		logger.Error().Err(err).Msg("Failed to write user response")
	}
}

// DELETE /api/users/{id}
func HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	admin := apiutil.RequireAdmin(w, r)
	if admin == nil {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	if id == admin.ID {
		apiutil.WriteError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), usersQueryTimeout)
	defer cancel()

	affected, err := queries.DeleteUser(ctx, id)
	if err != nil {
		logger.Error().Err(err).Int64("target_user_id", id).Msg("Failed to delete user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	logger.Info().Int64("target_user_id", id).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}
