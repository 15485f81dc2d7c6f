package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
)

// EnsureAdmin creates the first administrator when the database has none.
// It does nothing once any admin exists.
func EnsureAdmin(ctx context.Context, q *db.Queries, name, email, password string) error {
	count, err := q.CountUsersByType(ctx, models.UserTypeAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		log.Warn().Msg("No administrator exists and no bootstrap credentials were provided")
		return nil
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrador"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := q.CreateUser(ctx, db.CreateUserParams{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Type:         models.UserTypeAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Int64("user_id", user.ID).Msg("Bootstrap administrator created")
	return nil
}
