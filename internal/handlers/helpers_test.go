package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/middleware"
	"github.com/glassolution/berry/internal/models"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
	"github.com/glassolution/berry/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type testEnv struct {
	router         *chi.Mux
	accountService *services.AccountService
	settingsRepo   *repository.SQLiteSettingsRepository
	admin          models.User
	adminToken     string
	member         models.User
	memberToken    string
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	accountService := services.NewAccountService(userRepo, tokenRepo)
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	dietService := services.NewDietService(
		repository.NewProfileRepository(database),
		repository.NewDietPlanRepository(database),
		dietplan.NewCalculator(nil, clock),
	)

	admin, err := accountService.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
	member, err := accountService.CreateUser(ctx, "Member", "member@example.com", models.RoleMember)
	if err != nil {
		t.Fatalf("creating member: %v", err)
	}
	_, adminToken, err := accountService.IssueToken(ctx, admin, "admin", models.TokenScopeAPI, 0)
	if err != nil {
		t.Fatalf("issuing admin token: %v", err)
	}
	_, memberToken, err := accountService.IssueToken(ctx, member, "member", models.TokenScopeAPI, 0)
	if err != nil {
		t.Fatalf("issuing member token: %v", err)
	}

	apiHandler := NewAPIHandler(dietService, accountService, tokenRepo)
	adminHandler := NewAdminHandler(userRepo, settingsRepo, accountService)
	icalHandler := NewICalHandler(accountService, services.NewMealCalendar(dietService, settingsRepo))

	router := chi.NewRouter()
	router.Get("/ical", icalHandler.Feed)
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(accountService))

		r.Get("/api/profile", apiHandler.GetProfile)
		r.Put("/api/profile", apiHandler.SaveProfile)
		r.Get("/api/plan", apiHandler.GetPlan)
		r.Post("/api/plan", apiHandler.GeneratePlan)
		r.Post("/api/plan/meals/{meal}/items/{item}", apiHandler.ReplaceItem)
		r.Get("/api/foods", apiHandler.ListFoods)
		r.Get("/api/tokens", apiHandler.ListTokens)
		r.Post("/api/tokens", apiHandler.CreateToken)
		r.Delete("/api/tokens/{id}", apiHandler.DeleteToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/api/users", adminHandler.ListUsers)
			r.Post("/api/users", adminHandler.CreateUser)
			r.Put("/api/users/{id}/role", adminHandler.UpdateUserRole)
			r.Post("/api/settings", adminHandler.UpdateSettings)
		})
	})

	return testEnv{
		router:         router,
		accountService: accountService,
		settingsRepo:   settingsRepo,
		admin:          admin,
		adminToken:     adminToken,
		member:         member,
		memberToken:    memberToken,
	}
}

func (env testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

const referenceProfileJSON = `{
	"gender": "male",
	"age": 30,
	"height_cm": 180,
	"weight_kg": 90,
	"goal_weight_kg": 80,
	"activity_level": "moderate",
	"diet_preference": "none",
	"meals_per_day": 4
}`
