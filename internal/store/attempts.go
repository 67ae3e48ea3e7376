package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protegi/taxid-api/internal/models"
)

// PostgresAttemptStore persists validation attempts in postgres.
// Rows are append-only; this store exposes no update or delete.
type PostgresAttemptStore struct {
	pool *pgxpool.Pool
}

// NewPostgresAttemptStore creates a postgres-backed attempt store
func NewPostgresAttemptStore(pool *pgxpool.Pool) *PostgresAttemptStore {
	return &PostgresAttemptStore{pool: pool}
}

// Insert appends one attempt row
func (s *PostgresAttemptStore) Insert(ctx context.Context, attempt *models.ValidationAttempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO validation_attempts
			(id, kind, identifier, user_id, ip, success, error, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		attempt.ID, attempt.Kind, attempt.Identifier, attempt.UserID,
		attempt.IP, attempt.Success, attempt.Error, attempt.Payload, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting validation attempt: %w", err)
	}
	return nil
}

// CountSince counts attempts for an identity since a reference time. Kept
// for rate-limit reconstruction when the redis counters are rebuilt.
func (s *PostgresAttemptStore) CountSince(ctx context.Context, ip, userID string, kind models.IdentifierKind, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM validation_attempts
		WHERE ip = $1 AND user_id = $2 AND kind = $3 AND created_at >= $4`,
		ip, userID, kind, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting validation attempts: %w", err)
	}
	return count, nil
}
