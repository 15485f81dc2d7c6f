package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/apiutil"
	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/ratelimit"
)

const (
	authQueryTimeout       = 5 * time.Second
	invalidCredentialsText = "invalid email or password"
)

var (
	queries    *db.Queries
	issuer     *TokenIssuer
	limiter    *ratelimit.Limiter
	trustProxy bool
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *db.Queries, tokens *TokenIssuer, loginLimiter *ratelimit.Limiter, trustProxyHeaders bool) {
	queries = q
	issuer = tokens
	limiter = loginLimiter
	trustProxy = trustProxyHeaders
}

// POST /api/users/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil || issuer == nil {
		logger.Error().Msg("Auth handlers not initialized")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var req models.LoginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded(email, ip, result.Reason)
			w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
			apiutil.WriteError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to load user for login")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ok := err == nil && VerifyPassword(user.PasswordHash, req.Password)
	if limiter != nil {
		if lockedOut := limiter.RecordLogin(email, ip, ok); lockedOut {
			logger.Warn().
				Str("identifier", ratelimit.SanitizeIdentifier(email)).
				Str("ip", ip).
				Msg("Login locked out after repeated failures")
		}
	}
	if !ok {
		logger.Info().Str("identifier", ratelimit.SanitizeIdentifier(email)).Msg("Login rejected")
		apiutil.WriteError(w, http.StatusUnauthorized, invalidCredentialsText)
		return
	}

	token, err := issuer.Issue(authz.AuthUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Type:  user.Type,
	})
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info().Int64("user_id", user.ID).Str("tipo", user.Type).Msg("User logged in")
	if err := apiutil.WriteJSON(w, http.StatusOK, models.LoginResponse{Token: token}); err != nil {
		logger.Error().Err(err).Msg("Failed to write login response")
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
