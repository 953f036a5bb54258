package store

import (
	"database/sql"
	"fmt"

	"github.com/hyperengineering/facet/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending database migrations using goose and the
// SQL files embedded in the migrations package.
func RunMigrations(db *sql.DB) error {
	// Goose logs to stdout by default; keep it quiet.
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
