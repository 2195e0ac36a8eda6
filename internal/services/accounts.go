package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("forbidden")
)

const bootstrapAdminName = "Administrator"

type AccountService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.APITokenRepository
}

func NewAccountService(userRepo repository.UserRepository, tokenRepo repository.APITokenRepository) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// CreateUser adds a user. The very first user becomes an admin.
func (service *AccountService) CreateUser(ctx context.Context, name string, email string, role models.Role) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if role != "" && role != models.RoleAdmin && role != models.RoleMember {
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := service.userRepo.FindByEmail(ctx, email); err == nil {
			return models.User{}, fmt.Errorf("%w: email %q is already registered", ErrInvalidInput, email)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("looking up email: %w", err)
		}
	}

	userCount, err := service.userRepo.Count(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("counting users: %w", err)
	}
	if userCount == 0 {
		role = models.RoleAdmin
	}

	user, err := service.userRepo.Create(ctx, models.User{
		Email: email,
		Name:  name,
		Role:  role,
	})
	if err != nil {
		return models.User{}, err
	}
	slog.Info("created user", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// SetRole changes a user's role.
func (service *AccountService) SetRole(ctx context.Context, id string, role models.Role) (models.User, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if _, err := service.userRepo.FindByID(ctx, id); errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	} else if err != nil {
		return models.User{}, err
	}

	if err := service.userRepo.UpdateRole(ctx, id, role); err != nil {
		return models.User{}, err
	}
	slog.Info("changed user role", "user_id", id, "role", role)
	return service.userRepo.FindByID(ctx, id)
}

// IssueToken creates a token for user and returns the raw value, which is
// never stored.
func (service *AccountService) IssueToken(ctx context.Context, user models.User, name string, scope models.TokenScope, ttl time.Duration) (models.APIToken, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.APIToken{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if scope == "" {
		scope = models.TokenScopeAPI
	}
	if scope != models.TokenScopeAPI && scope != models.TokenScopeICal {
		return models.APIToken{}, "", fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, scope)
	}

	rawToken, err := generateToken()
	if err != nil {
		return models.APIToken{}, "", err
	}

	token := models.APIToken{
		Name:            name,
		TokenHash:       repository.HashToken(rawToken),
		Scope:           scope,
		CreatedByUserID: user.ID,
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		token.ExpiresAt = &expiresAt
	}

	created, err := service.tokenRepo.Create(ctx, token)
	if err != nil {
		return models.APIToken{}, "", err
	}
	return created, rawToken, nil
}

// RevokeToken deletes a token owned by user. Admins may revoke any token.
func (service *AccountService) RevokeToken(ctx context.Context, user models.User, id string) error {
	token, err := service.tokenRepo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTokenNotFound
	}
	if err != nil {
		return err
	}
	if token.CreatedByUserID != user.ID && user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return service.tokenRepo.Delete(ctx, id)
}

// Authenticate resolves a raw bearer token of the given scope to its owner.
func (service *AccountService) Authenticate(ctx context.Context, rawToken string, scope models.TokenScope) (models.User, error) {
	if rawToken == "" {
		return models.User{}, ErrTokenNotFound
	}
	token, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(rawToken))
	if err != nil {
		return models.User{}, ErrTokenNotFound
	}
	if token.Scope != scope {
		return models.User{}, ErrForbidden
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return models.User{}, ErrTokenNotFound
	}
	user, err := service.userRepo.FindByID(ctx, token.CreatedByUserID)
	if err != nil {
		return models.User{}, ErrTokenNotFound
	}
	return user, nil
}

// EnsureBootstrapAdmin makes rawToken a working admin API token. It is a no-op
// when the token is already registered.
func (service *AccountService) EnsureBootstrapAdmin(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	tokenHash := repository.HashToken(rawToken)
	if _, err := service.tokenRepo.FindByTokenHash(ctx, tokenHash); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("looking up bootstrap token: %w", err)
	}

	admin, err := service.userRepo.Create(ctx, models.User{Name: bootstrapAdminName, Role: models.RoleAdmin})
	if err != nil {
		return fmt.Errorf("creating bootstrap admin: %w", err)
	}
	_, err = service.tokenRepo.Create(ctx, models.APIToken{
		Name:            "bootstrap",
		TokenHash:       tokenHash,
		Scope:           models.TokenScopeAPI,
		CreatedByUserID: admin.ID,
	})
	if err != nil {
		return fmt.Errorf("creating bootstrap token: %w", err)
	}

	slog.Info("created bootstrap admin", "user_id", admin.ID)
	return nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
