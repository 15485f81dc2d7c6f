package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestUserFromToken_Admin(t *testing.T) {
	token := signedToken(t, Claims{
		UserID: 4,
		Name:   "Rita",
		Type:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	user, err := UserFromToken(token)
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if user.ID != 4 || user.Name != "Rita" {
		t.Fatalf("user = %+v", user)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin capability")
	}
}

func TestUserFromToken_Member(t *testing.T) {
	user, err := UserFromToken(signedToken(t, Claims{UserID: 8, Type: "socio"}))
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if user.IsAdmin() {
		t.Fatalf("member should not be admin")
	}
}

func TestUserFromToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: "  "},
		{name: "garbage", token: "not-a-token"},
		{name: "no_user_id", token: signedToken(t, Claims{Type: "admin"})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := UserFromToken(test.token)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := RequireAdmin(&AuthUser{ID: 1, Type: "socio"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := RequireAdmin(&AuthUser{ID: 1, Type: "Admin"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRequireAdminContext(t *testing.T) {
	if err := RequireAdminContext(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 2, Type: "admin"})
	if err := RequireAdminContext(ctx); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if UserFromContext(ctx).ID != 2 {
		t.Fatalf("user not stored in context")
	}
}
