// Package storage wires the local SQLite database: it opens the file,
// applies embedded goose migrations, and hands out the repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/example/movequote/internal/client/migrations"
	"github.com/example/movequote/internal/client/repositories/metadata"
	"github.com/example/movequote/internal/client/repositories/searches"
)

type Repositories struct {
	Metadata metadata.Repository
	Searches searches.Repository

	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Init opens the local database at dsn and applies pending migrations.
func Init(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Searches: searches.NewSQLiteRepository(db),
		db:       db,
	}, nil
}

func (r *Repositories) Close() error {
	return r.db.Close()
}
