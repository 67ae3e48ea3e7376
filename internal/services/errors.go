package services

import (
	"errors"
)

// Error codes surfaced to the API layer
const (
	CodeInvalidCPF          = "INVALID_CPF"
	CodeInvalidCNPJ         = "INVALID_CNPJ"
	CodeRateLimited         = "RATE_LIMITED"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeRegistryNotFound    = "REGISTRY_NOT_FOUND"
	CodeRegistryInactive    = "REGISTRY_INACTIVE"
	CodeRegistryUnavailable = "REGISTRY_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Registry client sentinel errors
var (
	// ErrRegistryNotFound means the registry authoritatively answered that
	// the CNPJ does not exist
	ErrRegistryNotFound = errors.New("cnpj not found in registry")

	// ErrRegistryUnavailable means the registry could not be reached or
	// answered with a transient failure; the identifier was never judged
	ErrRegistryUnavailable = errors.New("registry service unavailable")
)

// ValidationError is a validation outcome mapped to the error taxonomy.
// Message is user-facing (Portuguese); Code is stable for API consumers.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// ErrorCode extracts the taxonomy code from err, or CodeInternalError for
// anything unexpected
func ErrorCode(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return CodeInternalError
}
