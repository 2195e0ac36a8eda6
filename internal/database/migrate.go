package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	filename string
}

// Migrate applies every embedded .up.sql file not yet recorded in
// schema_migrations, in version order, each in its own transaction.
func Migrate(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	pending, err := listMigrations(".up.sql")
	if err != nil {
		return err
	}

	applied, err := AppliedVersions(database)
	if err != nil {
		return err
	}
	done := make(map[int]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}

	for _, step := range pending {
		if done[step.version] {
			continue
		}
		if err := runMigration(database, step, func(transaction *sql.Tx) error {
			_, err := transaction.Exec("INSERT INTO schema_migrations (version) VALUES (?)", step.version)
			return err
		}); err != nil {
			return err
		}
		slog.Info("applied migration", "version", step.version, "file", step.filename)
	}

	return nil
}

// Rollback reverts the most recently applied migration using its .down.sql
// file. It is a no-op when nothing has been applied.
func Rollback(database *sql.DB) error {
	applied, err := AppliedVersions(database)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	latest := applied[len(applied)-1]

	downs, err := listMigrations(".down.sql")
	if err != nil {
		return err
	}
	for _, step := range downs {
		if step.version != latest {
			continue
		}
		if err := runMigration(database, step, func(transaction *sql.Tx) error {
			_, err := transaction.Exec("DELETE FROM schema_migrations WHERE version = ?", step.version)
			return err
		}); err != nil {
			return err
		}
		slog.Info("rolled back migration", "version", step.version, "file", step.filename)
		return nil
	}
	return fmt.Errorf("no down migration for version %d", latest)
}

// AppliedVersions returns the recorded migration versions in ascending order.
func AppliedVersions(database *sql.DB) ([]int, error) {
	rows, err := database.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func listMigrations(suffix string) ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			migrations = append(migrations, migration{version: extractVersion(entry.Name()), filename: entry.Name()})
		}
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func runMigration(database *sql.DB, step migration, record func(*sql.Tx) error) error {
	content, err := migrationsFS.ReadFile("migrations/" + step.filename)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", step.filename, err)
	}

	transaction, err := database.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", step.version, err)
	}

	if _, err := transaction.Exec(string(content)); err != nil {
		transaction.Rollback()
		return fmt.Errorf("executing migration %s: %w", step.filename, err)
	}

	if err := record(transaction); err != nil {
		transaction.Rollback()
		return fmt.Errorf("recording migration %d: %w", step.version, err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", step.version, err)
	}
	return nil
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
