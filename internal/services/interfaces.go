package services

import (
	"context"

	"github.com/protegi/taxid-api/internal/models"
)

// ValidationServiceInterface defines the interface for the validation orchestrator
type ValidationServiceInterface interface {
	// ValidateCPF runs the full CPF validation pipeline and returns the
	// canonical (digits-only) CPF
	ValidateCPF(ctx context.Context, cpf, userID, ip string) (string, error)

	// ValidateCNPJ runs the full CNPJ validation pipeline including the
	// registry cross-check
	ValidateCNPJ(ctx context.Context, cnpj, userID, ip string) (*CNPJResult, error)

	// Health returns service health status
	Health() map[string]interface{}
}

// CNPJResult is the outcome of a successful CNPJ validation. Warning is set
// when the declared business activity falls outside the marketplace
// allow-list; the caller decides whether to proceed.
type CNPJResult struct {
	Record  *models.RegistryRecord
	Warning string
}

// RateLimiterInterface defines the per-identity attempt counter
type RateLimiterInterface interface {
	// CheckLimit counts the attempt and reports whether it is allowed.
	// A non-nil error means the counter store could not answer; callers
	// must treat that as not allowed (fail closed).
	CheckLimit(ctx context.Context, ip, userID string, kind models.IdentifierKind) (bool, error)

	// Health returns rate limiter health status
	Health() map[string]interface{}
}

// RegistryClientInterface defines the external company registry lookup
type RegistryClientInterface interface {
	// Lookup fetches the registry record for a canonical 14-digit CNPJ.
	// Returns ErrRegistryNotFound or ErrRegistryUnavailable on failure;
	// inactive companies are returned as records for the caller to judge.
	Lookup(ctx context.Context, cnpj string) (*models.RegistryRecord, error)
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Health returns cache service health status
	Health() map[string]interface{}
}

// AttemptStore persists the append-only validation attempt log
type AttemptStore interface {
	Insert(ctx context.Context, attempt *models.ValidationAttempt) error
}

// ProviderStore queries existing provider records for the duplicate guard
type ProviderStore interface {
	// FindByCNPJ returns the provider bound to the canonical CNPJ, or
	// (nil, nil) when there is none
	FindByCNPJ(ctx context.Context, cnpj string) (*models.Provider, error)
}

// AccountStore checks account existence for the CPF duplicate guard.
// Kept separate from ProviderStore so uniqueness scope can differ
// (soft-deleted accounts are excluded).
type AccountStore interface {
	CPFExists(ctx context.Context, cpf string) (bool, error)
}
