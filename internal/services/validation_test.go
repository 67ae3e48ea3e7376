package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protegi/taxid-api/internal/models"
	"github.com/protegi/taxid-api/internal/store"
)

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubLimiter) CheckLimit(context.Context, string, string, models.IdentifierKind) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func (s *stubLimiter) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

type stubRegistry struct {
	record *models.RegistryRecord
	err    error
	calls  int
}

func (s *stubRegistry) Lookup(context.Context, string) (*models.RegistryRecord, error) {
	s.calls++
	return s.record, s.err
}

func activeRecord(cnae string) *models.RegistryRecord {
	return &models.RegistryRecord{
		CNPJ:        "11.222.333/0001-81",
		RazaoSocial: "PROTEGI SEGURANCA ELETRONICA LTDA",
		Situacao:    models.SituacaoAtiva,
		CNAEPrincipal: models.CNAEInfo{
			Codigo:    cnae,
			Descricao: "Atividades de monitoramento",
		},
	}
}

type validationFixture struct {
	limiter   *stubLimiter
	registry  *stubRegistry
	attempts  *store.MemoryAttemptStore
	providers *store.MemoryProviderStore
	accounts  *store.MemoryAccountStore
	service   ValidationServiceInterface
}

func newValidationFixture(limiter *stubLimiter, registry *stubRegistry) *validationFixture {
	f := &validationFixture{
		limiter:   limiter,
		registry:  registry,
		attempts:  store.NewMemoryAttemptStore(),
		providers: store.NewMemoryProviderStore(),
		accounts:  store.NewMemoryAccountStore(),
	}
	f.service = NewValidationService(
		f.limiter, f.registry,
		NewCompatChecker([]string{"8011", "8012", "8020", "4321"}),
		f.attempts, f.providers, f.accounts,
		testLogger(),
	)
	return f
}

func (f *validationFixture) lastAttempt(t *testing.T) models.ValidationAttempt {
	t.Helper()
	attempts := f.attempts.All()
	require.NotEmpty(t, attempts)
	return attempts[len(attempts)-1]
}

func TestValidateCPFSuccess(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{})

	canonical, err := f.service.ValidateCPF(context.Background(), "111.444.777-35", "user-1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "11144477735", canonical)

	attempt := f.lastAttempt(t)
	assert.True(t, attempt.Success)
	assert.Equal(t, models.KindCPF, attempt.Kind)
	assert.Equal(t, "11144477735", attempt.Identifier)
	assert.Equal(t, "user-1", attempt.UserID)
	assert.Equal(t, "10.0.0.1", attempt.IP)
	assert.Empty(t, attempt.Error)
	assert.Len(t, f.attempts.All(), 1)
}

func TestValidateCPFInvalidDigits(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{})

	_, err := f.service.ValidateCPF(context.Background(), "111.444.777-36", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidCPF, ErrorCode(err))
	assert.Equal(t, "CPF inválido", err.Error())

	attempt := f.lastAttempt(t)
	assert.False(t, attempt.Success)
	assert.Equal(t, "CPF inválido", attempt.Error)
}

func TestValidateCPFWrongLength(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{})

	_, err := f.service.ValidateCPF(context.Background(), "123", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidCPF, ErrorCode(err))
	assert.Equal(t, "CPF deve conter 11 dígitos", err.Error())
}

func TestValidateCPFAlreadyRegistered(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{})
	require.NoError(t, f.accounts.Add(context.Background(), "11144477735"))

	_, err := f.service.ValidateCPF(context.Background(), "11144477735", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeAlreadyRegistered, ErrorCode(err))
	// Generic message only: no account details leaked
	assert.Equal(t, "CPF já cadastrado", err.Error())

	attempt := f.lastAttempt(t)
	assert.False(t, attempt.Success)
}

func TestValidateCPFSoftDeletedAccountDoesNotBlock(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{})
	ctx := context.Background()
	require.NoError(t, f.accounts.Add(ctx, "11144477735"))
	require.NoError(t, f.accounts.SoftDelete(ctx, "11144477735"))

	canonical, err := f.service.ValidateCPF(ctx, "11144477735", "user-1", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "11144477735", canonical)
}

func TestValidateCPFRateLimited(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: false}, &stubRegistry{})

	_, err := f.service.ValidateCPF(context.Background(), "111.444.777-35", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRateLimited, ErrorCode(err))

	// The rejected attempt is still logged
	attempt := f.lastAttempt(t)
	assert.False(t, attempt.Success)
}

func TestValidateCPFLimiterOutageFailsClosed(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true, err: errors.New("redis down")}, &stubRegistry{})

	_, err := f.service.ValidateCPF(context.Background(), "111.444.777-35", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRateLimited, ErrorCode(err))
}

func TestValidateCNPJSuccess(t *testing.T) {
	registry := &stubRegistry{record: activeRecord("80.20-0-01")}
	f := newValidationFixture(&stubLimiter{allowed: true}, registry)

	result, err := f.service.ValidateCNPJ(context.Background(), "11.222.333/0001-81", "user-1", "10.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	assert.Equal(t, "PROTEGI SEGURANCA ELETRONICA LTDA", result.Record.RazaoSocial)
	assert.Equal(t, 1, registry.calls)

	attempt := f.lastAttempt(t)
	assert.True(t, attempt.Success)
	assert.Equal(t, models.KindCNPJ, attempt.Kind)
	assert.NotEmpty(t, attempt.Payload)
}

func TestValidateCNPJIncompatibleActivityWarns(t *testing.T) {
	// Outside the allow-list: soft failure, record still returned
	registry := &stubRegistry{record: activeRecord("62.01-5-00")}
	f := newValidationFixture(&stubLimiter{allowed: true}, registry)

	result, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.NotNil(t, result.Record)

	attempt := f.lastAttempt(t)
	assert.True(t, attempt.Success)
	assert.Equal(t, result.Warning, attempt.Error)
}

func TestValidateCNPJInvalidDigits(t *testing.T) {
	registry := &stubRegistry{record: activeRecord("80.20-0-01")}
	f := newValidationFixture(&stubLimiter{allowed: true}, registry)

	_, err := f.service.ValidateCNPJ(context.Background(), "11.222.333/0001-82", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidCNPJ, ErrorCode(err))
	assert.Zero(t, registry.calls, "registry must not be called for invalid digits")
}

func TestValidateCNPJAlreadyRegistered(t *testing.T) {
	registry := &stubRegistry{record: activeRecord("80.20-0-01")}
	f := newValidationFixture(&stubLimiter{allowed: true}, registry)

	require.NoError(t, f.providers.Create(context.Background(), &models.Provider{
		ID:           uuid.New(),
		CNPJ:         "11222333000181",
		RazaoSocial:  "EMPRESA EXISTENTE LTDA",
		NomeFantasia: "Empresa Existente",
		CreatedAt:    time.Now(),
	}))

	_, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeAlreadyRegistered, ErrorCode(err))
	// Matched provider's display name is surfaced for user feedback
	assert.Contains(t, err.Error(), "Empresa Existente")
	assert.Zero(t, registry.calls, "registry must not be called for duplicates")
}

func TestValidateCNPJNotFound(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{err: ErrRegistryNotFound})

	_, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRegistryNotFound, ErrorCode(err))
	assert.Equal(t, "CNPJ não encontrado na Receita Federal", err.Error())

	attempt := f.lastAttempt(t)
	assert.False(t, attempt.Success)
}

func TestValidateCNPJInactive(t *testing.T) {
	record := activeRecord("80.20-0-01")
	record.Situacao = "BAIXADA"
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{record: record})

	_, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRegistryInactive, ErrorCode(err))
	// The registry's own status string is surfaced
	assert.Contains(t, err.Error(), "BAIXADA")

	attempt := f.lastAttempt(t)
	assert.False(t, attempt.Success)
}

func TestValidateCNPJRegistryUnavailableSkipsAttemptLog(t *testing.T) {
	f := newValidationFixture(&stubLimiter{allowed: true}, &stubRegistry{err: ErrRegistryUnavailable})

	_, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRegistryUnavailable, ErrorCode(err))

	// The identifier was never judged: no attempt row
	assert.Empty(t, f.attempts.All())
}

func TestValidateCNPJRateLimitedBeforeRegistry(t *testing.T) {
	registry := &stubRegistry{record: activeRecord("80.20-0-01")}
	f := newValidationFixture(&stubLimiter{allowed: false}, registry)

	_, err := f.service.ValidateCNPJ(context.Background(), "11222333000181", "user-1", "10.0.0.1")
	require.Error(t, err)
	assert.Equal(t, CodeRateLimited, ErrorCode(err))
	assert.Zero(t, registry.calls, "rate limiting must happen before the registry call")
}

func TestEveryOutcomeLogsExactlyOneAttempt(t *testing.T) {
	tests := []struct {
		name     string
		limiter  *stubLimiter
		registry *stubRegistry
		cnpj     string
	}{
		{"success", &stubLimiter{allowed: true}, &stubRegistry{record: activeRecord("80.20-0-01")}, "11222333000181"},
		{"invalid digits", &stubLimiter{allowed: true}, &stubRegistry{}, "11222333000182"},
		{"rate limited", &stubLimiter{allowed: false}, &stubRegistry{}, "11222333000181"},
		{"not found", &stubLimiter{allowed: true}, &stubRegistry{err: ErrRegistryNotFound}, "11222333000181"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newValidationFixture(tt.limiter, tt.registry)
			f.service.ValidateCNPJ(context.Background(), tt.cnpj, "user-1", "10.0.0.1")
			assert.Len(t, f.attempts.All(), 1)
		})
	}
}
