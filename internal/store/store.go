// Package store opens the task store selected by configuration.
package store

import (
	"context"
	"fmt"
	"log"

	"tasklist/internal/config"
	"tasklist/internal/db"
	"tasklist/internal/db/sqlite"
	"tasklist/internal/task"
)

// Open connects to the store named by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (task.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		log.Printf("[store] Connecting to PostgreSQL at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
		pg, err := db.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite:
		log.Printf("[store] Opening SQLite database %s", cfg.SQLite.Path)
		lite, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
