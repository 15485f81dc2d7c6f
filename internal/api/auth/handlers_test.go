package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/models"
	"github.com/codr1/quadras/internal/ratelimit"
	"github.com/codr1/quadras/internal/testutil"
)

func setupAuthTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	loginLimiter := ratelimit.New(&ratelimit.Config{
		MaxFailures:  2,
		Lockout:      time.Minute,
		MaxIPPerHour: 100,
	})

	prevQueries, prevIssuer, prevLimiter := queries, issuer, limiter
	t.Cleanup(func() {
		queries, issuer, limiter = prevQueries, prevIssuer, prevLimiter
		loginLimiter.Close()
	})
	InitHandlers(database.Queries, NewTokenIssuer("0123456789abcdef", time.Hour), loginLimiter, false)

	hash, err := HashPassword("segredo")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := database.Queries.CreateUser(context.Background(), db.CreateUserParams{
		Name: "Ana", Email: "ana@example.com", PasswordHash: hash, Type: models.UserTypeMember,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return database
}

func login(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	HandleLogin(rec, req)
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	setupAuthTest(t)

	rec := login(t, `{"email":"ANA@example.com","senha":"segredo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	user, err := issuer.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if user.Name != "Ana" || user.Type != models.UserTypeMember {
		t.Fatalf("unexpected claims %+v", user)
	}
}

func TestHandleLogin_Rejections(t *testing.T) {
	setupAuthTest(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "missing_fields", body: `{"email":"ana@example.com"}`, wantStatus: http.StatusBadRequest, wantError: "email and password are required"},
		{name: "unknown_field", body: `{"email":"a","senha":"b","extra":1}`, wantStatus: http.StatusBadRequest, wantError: "invalid request body"},
		{name: "unknown_user", body: `{"email":"bia@example.com","senha":"segredo"}`, wantStatus: http.StatusUnauthorized, wantError: invalidCredentialsText},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := login(t, test.body)
			if rec.Code != test.wantStatus {
				t.Fatalf("expected %d, got %d", test.wantStatus, rec.Code)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != test.wantError {
				t.Fatalf("error = %q, want %q", resp.Error, test.wantError)
			}
		})
	}
}

func TestHandleLogin_LockoutAfterFailures(t *testing.T) {
	setupAuthTest(t)

	for i := 0; i < 2; i++ {
		if rec := login(t, `{"email":"ana@example.com","senha":"errada"}`); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}

	rec := login(t, `{"email":"ana@example.com","senha":"segredo"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 during lockout, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestEnsureAdmin(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	if err := EnsureAdmin(ctx, database.Queries, "", "", ""); err != nil {
		t.Fatalf("EnsureAdmin without credentials: %v", err)
	}
	if count, _ := database.Queries.CountUsersByType(ctx, models.UserTypeAdmin); count != 0 {
		t.Fatalf("expected no admin, got %d", count)
	}

	if err := EnsureAdmin(ctx, database.Queries, "Root", "root@example.com", "segredo"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := EnsureAdmin(ctx, database.Queries, "Other", "other@example.com", "segredo"); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	admins, err := database.Queries.ListUsersByType(ctx, models.UserTypeAdmin)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 || admins[0].Email != "root@example.com" {
		t.Fatalf("unexpected admins %+v", admins)
	}
	if !VerifyPassword(admins[0].PasswordHash, "segredo") {
		t.Fatalf("bootstrap password does not verify")
	}
}
