package models

import (
	"time"
)

// CPFValidationRequest represents a CPF validation request
type CPFValidationRequest struct {
	CPF    string `json:"cpf" binding:"required" example:"111.444.777-35"`
	UserID string `json:"user_id" example:"f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`
}

// CPFValidationResponse represents a successful CPF validation
type CPFValidationResponse struct {
	Success   bool      `json:"success" example:"true"`
	CPF       string    `json:"cpf" example:"11144477735"`
	Valid     bool      `json:"valid" example:"true"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// CNPJValidationRequest represents a CNPJ validation request
type CNPJValidationRequest struct {
	CNPJ   string `json:"cnpj" binding:"required" example:"11.222.333/0001-81"`
	UserID string `json:"user_id" example:"f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`
}

// CNPJValidationResponse represents the outcome of a CNPJ validation.
// Warning is set for the compatible-activity soft failure, in which case
// Data still carries the full registry record.
type CNPJValidationResponse struct {
	Success   bool            `json:"success" example:"true"`
	Data      *RegistryRecord `json:"data,omitempty"`
	Warning   bool            `json:"warning,omitempty" example:"false"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp" example:"2024-01-15T10:30:00Z"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error" example:"CPF inválido"`
	Message   string    `json:"message,omitempty" example:"CPF deve conter 11 dígitos"`
	Code      string    `json:"code,omitempty" example:"INVALID_CPF"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string    `json:"path,omitempty" example:"/api/v1/validacao/cpf"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status    string    `json:"status" example:"healthy"`
	LastCheck time.Time `json:"last_check" example:"2024-01-15T10:30:00Z"`
	Error     string    `json:"error,omitempty"`
}
