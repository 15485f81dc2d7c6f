package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codr1/quadras/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Claims is the payload of a session token.
type Claims struct {
	UserID int64  `json:"id"`
	Name   string `json:"nome"`
	Email  string `json:"email,omitempty"`
	Type   string `json:"tipo"`
	jwt.RegisteredClaims
}

// AuthUser is the caller's identity and capability. It is derived once from
// the session token and handed to whatever needs it.
type AuthUser struct {
	ID    int64
	Name  string
	Email string
	Type  string
}

type userContextKey struct{}

func UserFromClaims(claims *Claims) *AuthUser {
	if claims == nil {
		return nil
	}
	return &AuthUser{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Type:  claims.Type,
	}
}

// UserFromToken reads the claims of a session token without checking its
// signature. The backend verifies tokens; clients only use this to decide
// which features to offer.
func UserFromToken(token string) (*AuthUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: token has no user id", ErrUnauthenticated)
	}
	return UserFromClaims(claims), nil
}

// IsAdmin reports whether user may manage users and list every reservation.
func (u *AuthUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Type, models.UserTypeAdmin)
}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

func RequireUser(user *AuthUser) error {
	if user == nil || user.ID <= 0 {
		return ErrUnauthenticated
	}
	return nil
}

func RequireAdmin(user *AuthUser) error {
	if err := RequireUser(user); err != nil {
		return err
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireAdminContext is RequireAdmin for the user stored in ctx.
func RequireAdminContext(ctx context.Context) error {
	return RequireAdmin(UserFromContext(ctx))
}
