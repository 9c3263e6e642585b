// Package migrations embeds the goose migrations for the SQL state stores.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/dmitrijs2005/medigenie/internal/dbx"
	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Up applies all pending migrations for the dialect.
func Up(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	goose.SetBaseFS(Migrations)

	gooseDialect, dir := "sqlite3", "sqlite"
	if dialect == dbx.Postgres {
		gooseDialect, dir = "postgres", "postgres"
	}

	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations (%s): %w", dialect, err)
	}
	return nil
}
