package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/testutil"
)

func createTestUser(t *testing.T, repo *repository.SQLiteUserRepository) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		Email: "test@example.com",
		Name:  "Test User",
		Role:  models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func TestUserRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{
		Email: "test@example.com",
		Name:  "Test User",
		Role:  models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding user: %v", err)
	}
	if found.Name != "Test User" {
		t.Errorf("expected name 'Test User', got '%s'", found.Name)
	}
	if found.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got '%s'", found.Role)
	}
}

func TestUserRepository_DefaultsToMember(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)

	created, err := repo.Create(context.Background(), models.User{Name: "No Role"})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if created.Role != models.RoleMember {
		t.Errorf("expected role member, got '%s'", created.Role)
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.User{Email: "ana@example.com", Name: "Ana", Role: models.RoleMember})

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("finding user by email: %v", err)
	}
	if found.Name != "Ana" {
		t.Errorf("expected 'Ana', got '%s'", found.Name)
	}

	_, err = repo.FindByEmail(ctx, "")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for blank email, got %v", err)
	}
}

func TestUserRepository_FindAll(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.User{Email: "b@test.com", Name: "Bob", Role: models.RoleMember})
	repo.Create(ctx, models.User{Email: "a@test.com", Name: "Alice", Role: models.RoleAdmin})

	users, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("finding users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Alice" {
		t.Errorf("expected users ordered by name, got '%s' first", users[0].Name)
	}
}

func TestUserRepository_UpdateRoleAndCount(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo)
	if err := repo.UpdateRole(ctx, user.ID, models.RoleMember); err != nil {
		t.Fatalf("updating role: %v", err)
	}

	found, _ := repo.FindByID(ctx, user.ID)
	if found.Role != models.RoleMember {
		t.Errorf("expected role member, got '%s'", found.Role)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}
