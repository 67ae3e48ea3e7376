package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/protegi/taxid-api/internal/models"
	"github.com/protegi/taxid-api/internal/utils"
)

// ValidationService orchestrates the validation pipeline for both identifier
// kinds: clean, rate-limit check, digit check, duplicate check and (CNPJ
// only) registry cross-check. Every exit path logs exactly one attempt,
// except a registry outage where the identifier was never judged.
type ValidationService struct {
	limiter   RateLimiterInterface
	registry  RegistryClientInterface
	compat    *CompatChecker
	attempts  AttemptStore
	providers ProviderStore
	accounts  AccountStore
	logger    *logrus.Logger
}

// NewValidationService creates the validation orchestrator
func NewValidationService(
	limiter RateLimiterInterface,
	registry RegistryClientInterface,
	compat *CompatChecker,
	attempts AttemptStore,
	providers ProviderStore,
	accounts AccountStore,
	logger *logrus.Logger,
) ValidationServiceInterface {
	return &ValidationService{
		limiter:   limiter,
		registry:  registry,
		compat:    compat,
		attempts:  attempts,
		providers: providers,
		accounts:  accounts,
		logger:    logger,
	}
}

// ValidateCPF runs the CPF validation pipeline and returns the canonical CPF
func (s *ValidationService) ValidateCPF(ctx context.Context, cpf, userID, ip string) (string, error) {
	canonical := utils.CleanCPF(cpf)
	logger := s.logger.WithFields(logrus.Fields{
		"kind":    models.KindCPF,
		"cpf":     canonical,
		"user_id": userID,
		"ip":      ip,
	})

	// Rate limit before any further work
	if err := s.checkRateLimit(ctx, ip, userID, models.KindCPF, canonical, logger); err != nil {
		return "", err
	}

	// Digit check
	if msg := utils.GetCPFValidationError(cpf); msg != "" {
		logger.WithField("reason", msg).Info("CPF rejected by digit check")
		s.logAttempt(ctx, models.KindCPF, canonical, userID, ip, false, msg, nil)
		return "", newValidationError(CodeInvalidCPF, msg)
	}

	// Duplicate check. The unique index on the accounts table is the
	// authoritative guard; this is the fast path.
	exists, err := s.accounts.CPFExists(ctx, canonical)
	if err != nil {
		logger.WithError(err).Error("CPF duplicate check failed")
		s.logAttempt(ctx, models.KindCPF, canonical, userID, ip, false, "erro interno", nil)
		return "", newValidationError(CodeInternalError, "Erro interno. Tente novamente mais tarde")
	}
	if exists {
		// Generic message only; matched-account details are never leaked
		msg := "CPF já cadastrado"
		logger.Info("CPF already registered")
		s.logAttempt(ctx, models.KindCPF, canonical, userID, ip, false, msg, nil)
		return "", newValidationError(CodeAlreadyRegistered, msg)
	}

	logger.Info("CPF validated")
	s.logAttempt(ctx, models.KindCPF, canonical, userID, ip, true, "", nil)
	return canonical, nil
}

// ValidateCNPJ runs the CNPJ validation pipeline including the registry
// cross-check and the activity compatibility check
func (s *ValidationService) ValidateCNPJ(ctx context.Context, cnpj, userID, ip string) (*CNPJResult, error) {
	canonical := utils.CleanCNPJ(cnpj)
	logger := s.logger.WithFields(logrus.Fields{
		"kind":    models.KindCNPJ,
		"cnpj":    canonical,
		"user_id": userID,
		"ip":      ip,
	})

	// Rate limit before the expensive registry hop
	if err := s.checkRateLimit(ctx, ip, userID, models.KindCNPJ, canonical, logger); err != nil {
		return nil, err
	}

	// Digit check
	if msg := utils.GetCNPJValidationError(cnpj); msg != "" {
		logger.WithField("reason", msg).Info("CNPJ rejected by digit check")
		s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, false, msg, nil)
		return nil, newValidationError(CodeInvalidCNPJ, msg)
	}

	// Duplicate check against provider records
	provider, err := s.providers.FindByCNPJ(ctx, canonical)
	if err != nil {
		logger.WithError(err).Error("CNPJ duplicate check failed")
		s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, false, "erro interno", nil)
		return nil, newValidationError(CodeInternalError, "Erro interno. Tente novamente mais tarde")
	}
	if provider != nil {
		msg := fmt.Sprintf("CNPJ já cadastrado para %s", provider.DisplayName())
		logger.WithField("provider_id", provider.ID).Info("CNPJ already registered")
		s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, false, msg, nil)
		return nil, newValidationError(CodeAlreadyRegistered, msg)
	}

	// Registry cross-check
	record, err := s.registry.Lookup(ctx, canonical)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistryNotFound):
			msg := "CNPJ não encontrado na Receita Federal"
			logger.Info("CNPJ not found in registry")
			s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, false, msg, nil)
			return nil, newValidationError(CodeRegistryNotFound, msg)
		default:
			// Transient registry failure: the identifier was never judged,
			// so no attempt row is written
			logger.WithError(err).Error("Registry unavailable")
			return nil, newValidationError(CodeRegistryUnavailable,
				"Serviço da Receita Federal indisponível. Tente novamente mais tarde")
		}
	}

	if !record.Ativa() {
		msg := fmt.Sprintf("CNPJ com situação %s na Receita Federal", record.Situacao)
		logger.WithField("situacao", record.Situacao).Info("CNPJ inactive in registry")
		s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, false, msg, record)
		return nil, newValidationError(CodeRegistryInactive, msg)
	}

	result := &CNPJResult{Record: record}

	// Incompatible activity is a warning, not a rejection: the company may
	// still register
	if !s.compat.IsCompatible(record.CNAEPrincipal.Codigo) {
		result.Warning = fmt.Sprintf(
			"Atividade principal %s não é compatível com as categorias de serviço do marketplace",
			record.CNAEPrincipal.Codigo)
		logger.WithField("cnae", record.CNAEPrincipal.Codigo).Warn("CNPJ activity outside allow-list")
	} else {
		logger.WithField("cnae", record.CNAEPrincipal.Codigo).Info("CNPJ validated")
	}

	s.logAttempt(ctx, models.KindCNPJ, canonical, userID, ip, true, result.Warning, record)
	return result, nil
}

// checkRateLimit enforces the attempt limit, failing closed when the
// counter store cannot answer
func (s *ValidationService) checkRateLimit(ctx context.Context, ip, userID string, kind models.IdentifierKind, canonical string, logger *logrus.Entry) error {
	allowed, err := s.limiter.CheckLimit(ctx, ip, userID, kind)
	if err != nil {
		// Counter store outage rejects the attempt for both kinds
		logger.WithError(err).Error("Rate limiter unavailable, rejecting attempt")
		allowed = false
	}
	if allowed {
		return nil
	}

	msg := "Muitas tentativas de validação. Tente novamente em alguns minutos"
	s.logAttempt(ctx, kind, canonical, userID, ip, false, msg, nil)
	return newValidationError(CodeRateLimited, msg)
}

// logAttempt appends one attempt row; failures are logged, never propagated
func (s *ValidationService) logAttempt(ctx context.Context, kind models.IdentifierKind, identifier, userID, ip string, success bool, errMsg string, payload interface{}) {
	attempt := &models.ValidationAttempt{
		ID:         uuid.New(),
		Kind:       kind,
		Identifier: identifier,
		UserID:     userID,
		IP:         ip,
		Success:    success,
		Error:      errMsg,
		CreatedAt:  time.Now(),
	}

	if payload != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			attempt.Payload = encoded
		}
	}

	if err := s.attempts.Insert(ctx, attempt); err != nil {
		s.logger.WithFields(logrus.Fields{
			"kind":       kind,
			"identifier": identifier,
			"error":      err.Error(),
		}).Error("Failed to persist validation attempt")
	}
}

// Health returns service health status
func (s *ValidationService) Health() map[string]interface{} {
	return map[string]interface{}{
		"status":     "healthy",
		"rate_limit": s.limiter.Health(),
	}
}
