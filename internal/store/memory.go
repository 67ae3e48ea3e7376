package store

import (
	"context"
	"sync"

	"github.com/protegi/taxid-api/internal/models"
)

// In-memory store implementations, used in tests and when the service runs
// without a database (degraded mode).

// MemoryAttemptStore keeps validation attempts in memory
type MemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts []models.ValidationAttempt
}

// NewMemoryAttemptStore creates an empty in-memory attempt store
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

// Insert appends one attempt
func (s *MemoryAttemptStore) Insert(_ context.Context, attempt *models.ValidationAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, *attempt)
	return nil
}

// All returns a copy of the stored attempts
func (s *MemoryAttemptStore) All() []models.ValidationAttempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ValidationAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// MemoryProviderStore keeps provider records in memory keyed by canonical CNPJ
type MemoryProviderStore struct {
	mu        sync.RWMutex
	providers map[string]models.Provider
}

// NewMemoryProviderStore creates an empty in-memory provider store
func NewMemoryProviderStore() *MemoryProviderStore {
	return &MemoryProviderStore{providers: make(map[string]models.Provider)}
}

// FindByCNPJ returns the provider for the canonical CNPJ, or (nil, nil)
func (s *MemoryProviderStore) FindByCNPJ(_ context.Context, cnpj string) (*models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.providers[cnpj]; ok {
		return &p, nil
	}
	return nil, nil
}

// Create inserts a provider, mapping an existing CNPJ to ErrDuplicate
func (s *MemoryProviderStore) Create(_ context.Context, p *models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.providers[p.CNPJ]; ok {
		return ErrDuplicate
	}
	s.providers[p.CNPJ] = *p
	return nil
}

// MemoryAccountStore keeps registered CPFs in memory
type MemoryAccountStore struct {
	mu   sync.RWMutex
	cpfs map[string]bool // value: soft-deleted flag
}

// NewMemoryAccountStore creates an empty in-memory account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{cpfs: make(map[string]bool)}
}

// CPFExists reports whether an active account holds the CPF
func (s *MemoryAccountStore) CPFExists(_ context.Context, cpf string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deleted, ok := s.cpfs[cpf]
	return ok && !deleted, nil
}

// Add registers a CPF, mapping an existing active CPF to ErrDuplicate
func (s *MemoryAccountStore) Add(_ context.Context, cpf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if deleted, ok := s.cpfs[cpf]; ok && !deleted {
		return ErrDuplicate
	}
	s.cpfs[cpf] = false
	return nil
}

// SoftDelete marks a CPF's account as deleted, releasing the uniqueness slot
func (s *MemoryAccountStore) SoftDelete(_ context.Context, cpf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cpfs[cpf]; ok {
		s.cpfs[cpf] = true
	}
	return nil
}
