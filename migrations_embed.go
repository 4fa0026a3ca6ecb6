package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"mymenu-bot/db"

	"go.uber.org/zap"
)

// Migrations ship inside the binary so `mymenu-bot migrate` works from any directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func applyMigrations(ctx context.Context, logger *zap.Logger) error {
	if db.Pool == nil {
		return fmt.Errorf("apply migrations: database not initialized")
	}
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.Info("migration applied", zap.String("name", name))
	}
	return nil
}
