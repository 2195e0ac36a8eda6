package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/glassolution/berry/internal/database"
	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
)

// NewTestDatabase returns a migrated in-memory database closed at test end.
func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func NewTestUser(t *testing.T, db *sql.DB, name string, role models.Role) models.User {
	t.Helper()

	user, err := repository.NewUserRepository(db).Create(context.Background(), models.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("creating test user %s: %v", name, err)
	}
	return user
}
