package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/protegi/taxid-api/internal/config"
	"github.com/protegi/taxid-api/internal/models"
	"github.com/protegi/taxid-api/internal/utils"
)

// ReceitaClient queries the national company registry over HTTP. Successful
// lookups are cached; inactive companies are returned as records so the
// orchestrator can surface the actual status string.
type ReceitaClient struct {
	cfg        config.RegistryConfig
	httpClient *http.Client
	cache      CacheServiceInterface
	logger     *logrus.Logger
}

// NewReceitaClient creates a registry client with a bounded request timeout
func NewReceitaClient(cfg config.RegistryConfig, cache CacheServiceInterface, logger *logrus.Logger) RegistryClientInterface {
	return &ReceitaClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cache,
		logger: logger,
	}
}

// registryPayload is the wire format returned by the registry service
type registryPayload struct {
	Status               string             `json:"status"`
	Message              string             `json:"message"`
	CNPJ                 string             `json:"cnpj"`
	Nome                 string             `json:"nome"`
	Fantasia             string             `json:"fantasia"`
	Situacao             string             `json:"situacao"`
	DataSituacao         string             `json:"data_situacao"`
	MotivoSituacao       string             `json:"motivo_situacao"`
	Tipo                 string             `json:"tipo"`
	Abertura             string             `json:"abertura"`
	NaturezaJuridica     string             `json:"natureza_juridica"`
	AtividadePrincipal   []registryAtvidade `json:"atividade_principal"`
	AtividadesSecundaria []registryAtvidade `json:"atividades_secundarias"`
	Logradouro           string             `json:"logradouro"`
	Numero               string             `json:"numero"`
	Complemento          string             `json:"complemento"`
	Bairro               string             `json:"bairro"`
	Municipio            string             `json:"municipio"`
	UF                   string             `json:"uf"`
	CEP                  string             `json:"cep"`
	Telefone             string             `json:"telefone"`
	Email                string             `json:"email"`
	CapitalSocial        string             `json:"capital_social"`
	Porte                string             `json:"porte"`
}

type registryAtvidade struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// Lookup fetches the registry record for a canonical 14-digit CNPJ
func (c *ReceitaClient) Lookup(ctx context.Context, cnpj string) (*models.RegistryRecord, error) {
	logger := c.logger.WithField("cnpj", cnpj)

	// Check cache first
	cacheKey := fmt.Sprintf("registry:cnpj:%s", cnpj)
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
		var record models.RegistryRecord
		if err := json.Unmarshal([]byte(cached), &record); err != nil {
			logger.WithError(err).Warn("Failed to unmarshal cached registry record")
		} else {
			record.Cache = true
			logger.Debug("Registry record found in cache")
			return &record, nil
		}
	}

	record, err := c.fetch(ctx, cnpj, logger)
	if err != nil {
		return nil, err
	}

	record.Cache = false
	record.ConsultadoEm = time.Now()

	if encoded, err := json.Marshal(record); err == nil {
		if err := c.cache.Set(ctx, cacheKey, string(encoded)); err != nil {
			logger.WithError(err).Warn("Failed to cache registry record")
		}
	}

	return record, nil
}

// fetch performs the registry HTTP call
func (c *ReceitaClient) fetch(ctx context.Context, cnpj string, logger *logrus.Entry) (*models.RegistryRecord, error) {
	url := fmt.Sprintf("%s/%s", c.cfg.BaseURL, cnpj)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and network errors mean the identifier was never judged
		logger.WithError(err).Error("Registry request failed")
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start),
	}).Debug("Registry response received")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrRegistryNotFound
	case resp.StatusCode != http.StatusOK:
		logger.WithField("status_code", resp.StatusCode).Error("Registry returned unexpected status")
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRegistryUnavailable, resp.StatusCode)
	}

	var payload registryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrRegistryUnavailable, err)
	}

	// The registry answers 200 with status ERROR for unknown CNPJs
	if payload.Status == "ERROR" {
		logger.WithField("message", payload.Message).Info("CNPJ not found in registry")
		return nil, ErrRegistryNotFound
	}

	return payloadToRecord(&payload), nil
}

// payloadToRecord maps the wire format to the domain record
func payloadToRecord(p *registryPayload) *models.RegistryRecord {
	record := &models.RegistryRecord{
		CNPJ:                utils.FormatCNPJ(p.CNPJ),
		RazaoSocial:         p.Nome,
		NomeFantasia:        p.Fantasia,
		Situacao:            p.Situacao,
		DataSituacao:        p.DataSituacao,
		MotivoSituacao:      p.MotivoSituacao,
		TipoEmpresa:         p.Tipo,
		DataInicioAtividade: p.Abertura,
		NaturezaJuridica:    p.NaturezaJuridica,
		Endereco: models.EnderecoInfo{
			Logradouro:  p.Logradouro,
			Numero:      p.Numero,
			Complemento: p.Complemento,
			Bairro:      p.Bairro,
			CEP:         p.CEP,
			Municipio:   p.Municipio,
			UF:          p.UF,
		},
		Email:         p.Email,
		CapitalSocial: p.CapitalSocial,
		Porte:         p.Porte,
	}

	if p.Telefone != "" {
		record.Telefones = []string{p.Telefone}
	}

	if len(p.AtividadePrincipal) > 0 {
		record.CNAEPrincipal = models.CNAEInfo{
			Codigo:    p.AtividadePrincipal[0].Code,
			Descricao: p.AtividadePrincipal[0].Text,
		}
	}

	for _, atividade := range p.AtividadesSecundaria {
		record.CNAESecundarias = append(record.CNAESecundarias, models.CNAEInfo{
			Codigo:    atividade.Code,
			Descricao: atividade.Text,
		})
	}

	return record
}
