package main

import (
	"context"
	"fmt"

	"ziwei/internal/config"
	"ziwei/internal/store"
	"ziwei/internal/store/postgres"
	"ziwei/internal/store/sqlite"
)

// openDB connects to the configured backend and ensures its schema.
func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseBackend() {
	case "sqlite":
		var client *sqlite.Client
		if client, err = sqlite.New(ctx, cfg.Database.DSN); err == nil {
			db = client
		}
	case "postgres":
		var client *postgres.Client
		if client, err = postgres.New(ctx, cfg.Database.DSN); err == nil {
			db = client
		}
	default:
		return nil, fmt.Errorf("unsupported database dsn %q", cfg.Database.DSN)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}
