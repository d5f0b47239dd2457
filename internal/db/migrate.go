/*-------------------------------------------------------------------------
 *
 * migrate.go
 *    Schema migration runner
 *
 * Applies SQL migration files in lexical order and records applied
 * versions so restarts are idempotent.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/db/migrate.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Vivekray898/loanzaar-server/internal/metrics"
)

const migrationTableQuery = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

/* MigrationRunner applies SQL migrations from a directory */
type MigrationRunner struct {
	db  *sqlx.DB
	dir string
}

/* NewMigrationRunner creates a migration runner for a migrations directory */
func NewMigrationRunner(db *sqlx.DB, dir string) (*MigrationRunner, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory not found: %w", err)
	}
	return &MigrationRunner{db: db, dir: dir}, nil
}

/* Run applies all pending migrations in lexical order */
func (m *MigrationRunner) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, migrationTableQuery); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		applied, err := m.isApplied(ctx, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", name, err)
		}

		metrics.InfoWithContext(ctx, "Migration applied", map[string]interface{}{
			"version": name,
		})
	}

	return nil
}

func (m *MigrationRunner) isApplied(ctx context.Context, version string) (bool, error) {
	var count int
	err := m.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schema_migrations WHERE version = $1`, version)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", version, err)
	}
	return count > 0, nil
}
