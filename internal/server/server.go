package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/glassolution/berry/internal/config"
	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/handlers"
	"github.com/glassolution/berry/internal/middleware"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, calculator *dietplan.Calculator) *Server {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	planRepo := repository.NewDietPlanRepository(database)

	accountService := services.NewAccountService(userRepo, tokenRepo)
	dietService := services.NewDietService(profileRepo, planRepo, calculator)
	mealCalendar := services.NewMealCalendar(dietService, settingsRepo)

	apiHandler := handlers.NewAPIHandler(dietService, accountService, tokenRepo)
	adminHandler := handlers.NewAdminHandler(userRepo, settingsRepo, accountService)
	icalHandler := handlers.NewICalHandler(accountService, mealCalendar)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

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

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address, "base_url", server.config.BaseURL)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpServer.ListenAndServe()
}
