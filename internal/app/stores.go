// Package app wires stores, services and handlers for the binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vantrack/server/internal/config"
	"github.com/vantrack/server/internal/db"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/repo"
	"github.com/vantrack/server/internal/repo/memory"
	"github.com/vantrack/server/internal/repo/sqlite"
)

// Stores holds the repositories for the configured driver
type Stores struct {
	Vehicles  repo.VehicleRepo
	Codes     repo.AccessCodeRepo
	AccessLog repo.AccessLogRepo
	// DB is nil for the memory driver.
	DB *sql.DB
}

// Close releases the underlying database, if any
func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Open connects to the store named by cfg.StoreDriver. When migrate is true
// the embedded migrations are applied first.
func Open(ctx context.Context, cfg *config.Config, migrate bool, log logging.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn(ctx, "using in-memory store, data is lost on exit")
		return &Stores{
			Vehicles:  memory.NewVehicleStore(),
			Codes:     memory.NewAccessCodeStore(),
			AccessLog: memory.NewAccessLogStore(),
		}, nil

	case config.DriverSQLite:
		database, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.Migrate(ctx, database, "sqlite"); err != nil {
				_ = database.Close()
				return nil, err
			}
		}
		log.Info(ctx, "sqlite store opened", "path", cfg.SQLitePath)
		return &Stores{
			Vehicles:  sqlite.NewVehicleRepo(database),
			Codes:     sqlite.NewAccessCodeRepo(database),
			AccessLog: sqlite.NewAccessLogRepo(database),
			DB:        database,
		}, nil

	case config.DriverPostgres:
		database, err := db.OpenPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.Migrate(ctx, database, "postgres"); err != nil {
				_ = database.Close()
				return nil, err
			}
		}
		return &Stores{
			Vehicles:  repo.NewVehicleRepo(database),
			Codes:     repo.NewAccessCodeRepo(database),
			AccessLog: repo.NewAccessLogRepo(database),
			DB:        database,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// MigrateOnly applies migrations for the configured driver without building
// repositories. The memory driver has nothing to migrate.
func MigrateOnly(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if cfg.StoreDriver == config.DriverMemory {
		log.Info(ctx, "memory store has no migrations")
		return nil
	}
	stores, err := Open(ctx, cfg, true, log)
	if err != nil {
		return err
	}
	return stores.Close()
}
