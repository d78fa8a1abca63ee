package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

//go:embed 001_initial_schema.sql
var initialSchema string

// RunMigrations creates the trades table and its indexes. The schema is
// idempotent, so running it on every start is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}
