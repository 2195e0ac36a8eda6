package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/glassolution/berry/internal/config"
	"github.com/glassolution/berry/internal/database"
	"github.com/glassolution/berry/internal/dietplan"
	"github.com/glassolution/berry/internal/repository"
	"github.com/glassolution/berry/internal/server"
	"github.com/glassolution/berry/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	catalog := dietplan.DefaultCatalog()
	if cfg.FoodCatalogPath != "" {
		catalog, err = dietplan.LoadCatalogFile(cfg.FoodCatalogPath)
		if err != nil {
			slog.Error("loading food table", "path", cfg.FoodCatalogPath, "error", err)
			os.Exit(1)
		}
		slog.Info("loaded food table", "path", cfg.FoodCatalogPath, "foods", len(catalog.Foods()))
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	accountService := services.NewAccountService(repository.NewUserRepository(db), repository.NewAPITokenRepository(db))
	if err := accountService.EnsureBootstrapAdmin(context.Background(), cfg.BootstrapAdminToken); err != nil {
		slog.Error("bootstrapping admin", "error", err)
		os.Exit(1)
	}

	srv := server.New(db, cfg, dietplan.NewCalculator(catalog, nil))
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
