package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protegi/taxid-api/internal/models"
)

// PostgresProviderStore queries provider records by canonical CNPJ
type PostgresProviderStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProviderStore creates a postgres-backed provider store
func NewPostgresProviderStore(pool *pgxpool.Pool) *PostgresProviderStore {
	return &PostgresProviderStore{pool: pool}
}

// FindByCNPJ returns the provider bound to the canonical CNPJ, or (nil, nil)
func (s *PostgresProviderStore) FindByCNPJ(ctx context.Context, cnpj string) (*models.Provider, error) {
	var p models.Provider
	err := s.pool.QueryRow(ctx,
		`SELECT id, cnpj, razao_social, nome_fantasia, created_at
		FROM providers WHERE cnpj = $1`,
		cnpj,
	).Scan(&p.ID, &p.CNPJ, &p.RazaoSocial, &p.NomeFantasia, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying provider by cnpj: %w", err)
	}
	return &p, nil
}

// Create inserts a provider record. A unique-index violation on the CNPJ is
// mapped to ErrDuplicate so a registration losing the race gets the same
// answer the pre-check would have given.
func (s *PostgresProviderStore) Create(ctx context.Context, p *models.Provider) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO providers (id, cnpj, razao_social, nome_fantasia, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.CNPJ, p.RazaoSocial, p.NomeFantasia, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting provider: %w", err)
	}
	return nil
}

// PostgresAccountStore checks account existence by canonical CPF
type PostgresAccountStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountStore creates a postgres-backed account store
func NewPostgresAccountStore(pool *pgxpool.Pool) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

// CPFExists reports whether an active (not soft-deleted) account holds the CPF
func (s *PostgresAccountStore) CPFExists(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM accounts WHERE cpf = $1 AND deleted_at IS NULL
		)`,
		cpf,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking cpf existence: %w", err)
	}
	return exists, nil
}
