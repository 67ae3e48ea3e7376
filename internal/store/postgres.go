package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protegi/taxid-api/internal/config"
)

// ErrDuplicate is returned when an insert violates the unique index on a
// canonical identifier. The index, not the pre-check, is the authoritative
// duplicate guard: two concurrent registrations may both pass the pre-check
// but only one insert commits.
var ErrDuplicate = errors.New("identifier already registered")

// NewPool opens a pgx connection pool and verifies connectivity
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Migrate creates the tables and unique indexes this service depends on
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS validation_attempts (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			identifier TEXT NOT NULL,
			user_id TEXT NOT NULL,
			ip TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			payload JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_attempts_identity
			ON validation_attempts (ip, user_id, kind, created_at)`,
		`CREATE TABLE IF NOT EXISTS providers (
			id UUID PRIMARY KEY,
			cnpj TEXT NOT NULL,
			razao_social TEXT NOT NULL,
			nome_fantasia TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_providers_cnpj ON providers (cnpj)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			cpf TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_cpf
			ON accounts (cpf) WHERE deleted_at IS NULL`,
	}

	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is SQLSTATE 23505
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
