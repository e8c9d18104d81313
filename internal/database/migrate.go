package database

import (
	"context"
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

func (d Dialect) gooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return string(d)
}

func (d Dialect) migrationsDir() string {
	return path.Join("migrations", string(d))
}

func prepareGoose(db *DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(db.Dialect.gooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending migration for the pool's dialect.
func Migrate(ctx context.Context, db *DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, db.Dialect.migrationsDir()); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db.DB, db.Dialect.migrationsDir()); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// MigrationStatus prints the applied state of every migration through
// goose's logger.
func MigrationStatus(ctx context.Context, db *DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB, db.Dialect.migrationsDir())
}
