package main

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-room-bookings/internal/bookings"
	"github.com/ariefcatur/go-room-bookings/internal/config"
	"github.com/ariefcatur/go-room-bookings/internal/memstore"
	"github.com/ariefcatur/go-room-bookings/internal/postgres"
	"github.com/ariefcatur/go-room-bookings/internal/sqlite"
)

// backend is the configured store plus what else lives in the same database.
type backend struct {
	Store bookings.Store
	Audit *bookings.AuditRepo // postgres only; the audit consumer writes this table
	Close func()
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		return &backend{
			Store: &bookings.Repo{DB: pool},
			Audit: &bookings.AuditRepo{DB: pool},
			Close: pool.Close,
		}, nil

	case config.DriverSQLite:
		// the sqlite schema is created on open
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open %s: %w", cfg.SQLitePath, err)
		}
		return &backend{Store: s, Close: func() { _ = s.Close() }}, nil

	case config.DriverMemory:
		return &backend{Store: memstore.New(), Close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
