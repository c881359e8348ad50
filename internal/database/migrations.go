package database

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration represents a database migration
type migration struct {
	filename string
	name     string
	sql      string
	requires []string // tables that must exist before the migration can run
}

var (
	migrationNamePattern = regexp.MustCompile(`^(\d{8})_.+\.sql$`)
	requiresPattern      = regexp.MustCompile(`(?m)^--\s*requires:\s*(.+)$`)
)

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB) error {
	// Create migrations tracking table if it doesn't exist
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get all migration files
	migrations, err := getMigrations()
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}

	// Get already applied migrations
	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, m := range migrations {
		if applied[m.name] {
			continue // Already applied
		}

		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.filename, err)
		}
	}

	return nil
}

// createMigrationsTable creates the schema_migrations table if it doesn't exist
func createMigrationsTable(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// getMigrations reads all migration files from the migrations directory
func getMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := migrationsFS.ReadFile(path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		name := extractMigrationName(entry.Name())
		migrations = append(migrations, migration{
			filename: entry.Name(),
			name:     name,
			sql:      string(content),
			requires: parseRequires(string(content)),
		})
	}

	// Sort migrations by name (date) to ensure order
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].name < migrations[j].name
	})

	return migrations, nil
}

// extractMigrationName extracts the migration name from filename
// Expected format: YYYYMMDD_description.sql
func extractMigrationName(filename string) string {
	matches := migrationNamePattern.FindStringSubmatch(filename)
	if len(matches) < 2 {
		return filename
	}
	return matches[1]
}

// parseRequires reads "-- requires: a, b" header lines
func parseRequires(content string) []string {
	var tables []string
	for _, m := range requiresPattern.FindAllStringSubmatch(content, -1) {
		for _, t := range strings.Split(m[1], ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}
	return tables
}

// getAppliedMigrations returns a map of already applied migration names
func getAppliedMigrations(db *gorm.DB) (map[string]bool, error) {
	var names []string
	if err := db.Table("schema_migrations").Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(names))
	for _, name := range names {
		applied[name] = true
	}

	return applied, nil
}

// applyMigration runs a single migration and records it
func applyMigration(db *gorm.DB, m migration) error {
	if err := checkMigrationPrerequisites(db, m); err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Exec(m.sql).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Exec("INSERT INTO schema_migrations (name) VALUES (?)", m.name).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// checkMigrationPrerequisites verifies every table the migration builds on exists
func checkMigrationPrerequisites(db *gorm.DB, m migration) error {
	for _, table := range m.requires {
		var count int64
		if err := db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("table %s does not exist yet", table)
		}
	}
	return nil
}
