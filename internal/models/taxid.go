package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IdentifierKind distinguishes the two Brazilian tax-ID families
type IdentifierKind string

const (
	// KindCPF is the individual taxpayer ID (11 digits)
	KindCPF IdentifierKind = "cpf"
	// KindCNPJ is the company taxpayer ID (14 digits)
	KindCNPJ IdentifierKind = "cnpj"
)

// ExpectedDigits returns the canonical digit count for the kind
func (k IdentifierKind) ExpectedDigits() int {
	if k == KindCNPJ {
		return 14
	}
	return 11
}

// ValidationAttempt is an immutable audit record of a single validation call.
// Rows are append-only; retention is handled outside this service.
type ValidationAttempt struct {
	ID         uuid.UUID       `json:"id"`
	Kind       IdentifierKind  `json:"kind"`
	Identifier string          `json:"identifier"`
	UserID     string          `json:"user_id"`
	IP         string          `json:"ip"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Provider is the marketplace provider record matched by the duplicate guard
type Provider struct {
	ID           uuid.UUID `json:"id"`
	CNPJ         string    `json:"cnpj"`
	RazaoSocial  string    `json:"razao_social"`
	NomeFantasia string    `json:"nome_fantasia,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName returns the name shown to users on a duplicate match
func (p Provider) DisplayName() string {
	if p.NomeFantasia != "" {
		return p.NomeFantasia
	}
	return p.RazaoSocial
}
