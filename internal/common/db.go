package common

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wakaflorien/procureToPay/gen/ent"
	"github.com/wakaflorien/procureToPay/internal/repository"
)

// DatabaseResult bundles the open handles with a single Cleanup.
type DatabaseResult struct {
	Client  *ent.Client
	Pool    *pgxpool.Pool
	Cleanup func()
}

// InitDatabase opens either an in-memory SQLite database (for local batch
// runs) or the configured Postgres pool, and runs schema creation for the
// SQLite case since there is no migration step.
func InitDatabase(ctx context.Context, cfg *Config, inmem bool, logger *slog.Logger) (*DatabaseResult, error) {
	if inmem {
		entc, err := repository.OpenSQLite("file:procure?mode=memory&cache=shared&_pragma=foreign_keys(1)", logger)
		if err != nil {
			return nil, err
		}
		if err := entc.Schema.Create(ctx); err != nil {
			logger.Error("failed to create sqlite schema", "error", err)
			_ = entc.Close()
			return nil, err
		}
		return &DatabaseResult{
			Client: entc,
			Cleanup: func() {
				if cerr := entc.Close(); cerr != nil {
					logger.Error("close ent client", "error", cerr)
				}
			},
		}, nil
	}

	if err := cfg.ValidateForDatabase(); err != nil {
		return nil, err
	}
	entc, pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &DatabaseResult{
		Client: entc,
		Pool:   pool,
		Cleanup: func() {
			repository.Close(entc, pool, logger)
		},
	}, nil
}
