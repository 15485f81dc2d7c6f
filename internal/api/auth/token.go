package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codr1/quadras/internal/api/authz"
)

var errAuthConfigMissing = errors.New("auth configuration missing")

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token carrying the user's id, name, email and type.
func (i *TokenIssuer) Issue(user authz.AuthUser) (string, error) {
	if i == nil || len(i.secret) == 0 {
		return "", errAuthConfigMissing
	}
	now := i.now()
	claims := authz.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Type:   user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies token and returns the user it was issued to.
func (i *TokenIssuer) Parse(token string) (*authz.AuthUser, error) {
	if i == nil || len(i.secret) == 0 {
		return nil, errAuthConfigMissing
	}
	claims := &authz.Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authz.ErrUnauthenticated, err)
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: token has no user id", authz.ErrUnauthenticated)
	}
	return authz.UserFromClaims(claims), nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromRequest returns the user of the request's bearer token, or nil
// when the request carries none.
func (i *TokenIssuer) UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	return i.Parse(token)
}
