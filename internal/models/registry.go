package models

import (
	"time"
)

// SituacaoAtiva is the literal registration status the Receita Federal
// reports for active companies
const SituacaoAtiva = "ATIVA"

// RegistryRecord represents the company data returned by the national
// registry for a CNPJ
type RegistryRecord struct {
	CNPJ                string       `json:"cnpj" example:"11.222.333/0001-81"`
	RazaoSocial         string       `json:"razao_social" example:"EMPRESA EXEMPLO LTDA"`
	NomeFantasia        string       `json:"nome_fantasia,omitempty" example:"Empresa Exemplo"`
	Situacao            string       `json:"situacao" example:"ATIVA"`
	DataSituacao        string       `json:"data_situacao,omitempty" example:"03/11/2005"`
	MotivoSituacao      string       `json:"motivo_situacao,omitempty"`
	TipoEmpresa         string       `json:"tipo_empresa,omitempty" example:"MATRIZ"`
	DataInicioAtividade string       `json:"data_inicio_atividade,omitempty" example:"03/11/2005"`
	CNAEPrincipal       CNAEInfo     `json:"cnae_principal"`
	CNAESecundarias     []CNAEInfo   `json:"cnae_secundarias,omitempty"`
	NaturezaJuridica    string       `json:"natureza_juridica,omitempty" example:"206-2 - SOCIEDADE EMPRESÁRIA LIMITADA"`
	Endereco            EnderecoInfo `json:"endereco"`
	Telefones           []string     `json:"telefones,omitempty"`
	Email               string       `json:"email,omitempty"`
	CapitalSocial       string       `json:"capital_social,omitempty" example:"1000000,00"`
	Porte               string       `json:"porte,omitempty" example:"DEMAIS"`
	ConsultadoEm        time.Time    `json:"consultado_em" example:"2024-01-15T10:30:00Z"`
	Cache               bool         `json:"cache" example:"false"`
}

// Ativa reports whether the company registration is active
func (r *RegistryRecord) Ativa() bool {
	return r.Situacao == SituacaoAtiva
}

// CNAEInfo represents CNAE information
type CNAEInfo struct {
	Codigo    string `json:"codigo" example:"8020-0/01"`
	Descricao string `json:"descricao" example:"Atividades de monitoramento de sistemas de segurança eletrônico"`
}

// EnderecoInfo represents address information
type EnderecoInfo struct {
	Logradouro  string `json:"logradouro,omitempty" example:"RUA EXEMPLO"`
	Numero      string `json:"numero,omitempty" example:"123"`
	Complemento string `json:"complemento,omitempty" example:"SALA 456"`
	Bairro      string `json:"bairro,omitempty" example:"CENTRO"`
	CEP         string `json:"cep,omitempty" example:"01234-567"`
	Municipio   string `json:"municipio,omitempty" example:"SÃO PAULO"`
	UF          string `json:"uf,omitempty" example:"SP"`
}
