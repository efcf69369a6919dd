package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const (
	migrationsDirectoryConstant = "migrations"
	migrationExtensionConstant  = ".sql"
)

// migration is one versioned schema change.
type migration struct {
	Version  string
	Filename string
	SQL      string
}

// runMigrations applies every embedded migration not yet recorded.
func runMigrations(executionContext context.Context, database *sql.DB) error {
	createTableQuery := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, createError := database.ExecContext(executionContext, createTableQuery); createError != nil {
		return fmt.Errorf("failed to create migrations table: %w", createError)
	}

	migrations, loadError := loadMigrations()
	if loadError != nil {
		return fmt.Errorf("failed to load migrations: %w", loadError)
	}

	applied, appliedError := appliedVersions(executionContext, database)
	if appliedError != nil {
		return fmt.Errorf("failed to get applied migrations: %w", appliedError)
	}

	for _, pending := range migrations {
		if _, alreadyApplied := applied[pending.Version]; alreadyApplied {
			continue
		}
		if applyError := applyMigration(executionContext, database, pending); applyError != nil {
			return fmt.Errorf("failed to run migration %s: %w", pending.Filename, applyError)
		}
	}

	return nil
}

func loadMigrations() ([]migration, error) {
	entries, readError := fs.ReadDir(embeddedMigrations, migrationsDirectoryConstant)
	if readError != nil {
		return nil, readError
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), migrationExtensionConstant) {
			continue
		}
		content, contentError := fs.ReadFile(embeddedMigrations, path.Join(migrationsDirectoryConstant, entry.Name()))
		if contentError != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), contentError)
		}
		migrations = append(migrations, migration{
			Version:  strings.TrimSuffix(entry.Name(), migrationExtensionConstant),
			Filename: entry.Name(),
			SQL:      string(content),
		})
	}

	sort.Slice(migrations, func(first, second int) bool {
		return migrations[first].Version < migrations[second].Version
	})

	return migrations, nil
}

func appliedVersions(executionContext context.Context, database *sql.DB) (map[string]struct{}, error) {
	rows, queryError := database.QueryContext(executionContext, "SELECT version FROM schema_migrations")
	if queryError != nil {
		return nil, queryError
	}
	defer rows.Close()

	versions := make(map[string]struct{})
	for rows.Next() {
		var version string
		if scanError := rows.Scan(&version); scanError != nil {
			return nil, scanError
		}
		versions[version] = struct{}{}
	}
	return versions, rows.Err()
}

// applyMigration runs the migration and records it in one transaction.
func applyMigration(executionContext context.Context, database *sql.DB, pending migration) error {
	transaction, beginError := database.BeginTx(executionContext, nil)
	if beginError != nil {
		return beginError
	}
	defer transaction.Rollback()

	if _, execError := transaction.ExecContext(executionContext, pending.SQL); execError != nil {
		return execError
	}
	if _, recordError := transaction.ExecContext(executionContext, "INSERT INTO schema_migrations (version) VALUES (?)", pending.Version); recordError != nil {
		return fmt.Errorf("failed to record migration: %w", recordError)
	}
	return transaction.Commit()
}
