package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromEnvironment_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_PATH", "PORT", "LOG_LEVEL", "BASE_URL", "BOOTSTRAP_ADMIN_TOKEN", "FOOD_CATALOG_PATH", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	config, err := fromEnvironment()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.DatabasePath != "./data/berry.db" || config.Port != "8080" {
		t.Errorf("unexpected defaults %+v", config)
	}
	if config.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", config.LogLevel)
	}
	if !reflect.DeepEqual(config.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", config.CORSAllowedOrigins)
	}
}

func TestFromEnvironment_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("BASE_URL", "https://berry.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://web.example.com")
	t.Setenv("FOOD_CATALOG_PATH", "/etc/berry/foods.yaml")

	config, err := fromEnvironment()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", config.LogLevel)
	}
	if config.BaseURL != "https://berry.example.com" {
		t.Errorf("expected trimmed base url, got %s", config.BaseURL)
	}
	if !reflect.DeepEqual(config.CORSAllowedOrigins, []string{"https://app.example.com", "https://web.example.com"}) {
		t.Errorf("unexpected origins %v", config.CORSAllowedOrigins)
	}
	if config.FoodCatalogPath != "/etc/berry/foods.yaml" {
		t.Errorf("unexpected catalog path %s", config.FoodCatalogPath)
	}
}

func TestFromEnvironment_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := fromEnvironment(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	directory := t.TempDir()
	if err := os.WriteFile(filepath.Join(directory, ".env"), []byte("PORT=9191\n"), 0o600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	previous, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	if err := os.Chdir(directory); err != nil {
		t.Fatalf("changing directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(previous) })
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.Port != "9191" {
		t.Errorf("expected port from .env, got %s", config.Port)
	}
}
