package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema adalah SQL bootstrap untuk development lokal; idempotent.
//
//go:embed schema.sql
var Schema string

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, Schema)
	return err
}
