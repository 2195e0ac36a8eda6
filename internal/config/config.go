package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath        string
	Port                string
	LogLevel            slog.Level
	BaseURL             string
	BootstrapAdminToken string
	FoodCatalogPath     string
	CORSAllowedOrigins  []string
}

// Load reads the environment, after filling it from a .env file in the working
// directory when one exists. Real environment variables win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return fromEnvironment()
}

func fromEnvironment() (Config, error) {
	config := Config{
		DatabasePath:        envOrDefault("DATABASE_PATH", "./data/berry.db"),
		Port:                envOrDefault("PORT", "8080"),
		BaseURL:             strings.TrimSuffix(envOrDefault("BASE_URL", "http://localhost:8080"), "/"),
		BootstrapAdminToken: os.Getenv("BOOTSTRAP_ADMIN_TOKEN"),
		FoodCatalogPath:     os.Getenv("FOOD_CATALOG_PATH"),
		CORSAllowedOrigins:  splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	level, err := parseLogLevel(envOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	config.LogLevel = level

	return config, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
