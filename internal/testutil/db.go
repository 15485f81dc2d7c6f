package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/quadras/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, database *db.DB, name, email, userType string) db.User {
	t.Helper()

	user, err := database.Queries.CreateUser(context.Background(), db.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Type:         userType,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}
