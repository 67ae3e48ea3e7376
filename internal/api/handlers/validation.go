package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/protegi/taxid-api/internal/models"
	"github.com/protegi/taxid-api/internal/services"
)

// ValidationHandler handles tax-ID validation requests
type ValidationHandler struct {
	validation services.ValidationServiceInterface
	logger     *logrus.Logger
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(validation services.ValidationServiceInterface, logger *logrus.Logger) *ValidationHandler {
	return &ValidationHandler{
		validation: validation,
		logger:     logger,
	}
}

// ValidateCPF handles CPF validation
// @Summary Validate a CPF
// @Description Validate a CPF's check digits and check it is not already registered
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body models.CPFValidationRequest true "CPF validation request"
// @Success 200 {object} models.CPFValidationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /validacao/cpf [post]
func (h *ValidationHandler) ValidateCPF(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var request models.CPFValidationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid CPF validation request")

		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Informe o CPF",
			Message:   err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if request.UserID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:     "Usuário não autenticado",
			Code:      "MISSING_USER",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	canonical, err := h.validation.ValidateCPF(c.Request.Context(), request.CPF, request.UserID, c.ClientIP())
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"duration":   time.Since(start),
	}).Info("CPF validation completed")

	c.JSON(http.StatusOK, models.CPFValidationResponse{
		Success:   true,
		CPF:       canonical,
		Valid:     true,
		Timestamp: time.Now(),
	})
}

// ValidateCNPJ handles CNPJ validation
// @Summary Validate a CNPJ
// @Description Validate a CNPJ's check digits, cross-check it against the national registry and verify activity compatibility
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body models.CNPJValidationRequest true "CNPJ validation request"
// @Success 200 {object} models.CNPJValidationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /validacao/cnpj [post]
func (h *ValidationHandler) ValidateCNPJ(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var request models.CNPJValidationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid CNPJ validation request")

		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Informe o CNPJ",
			Message:   err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	if request.UserID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:     "Usuário não autenticado",
			Code:      "MISSING_USER",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	result, err := h.validation.ValidateCNPJ(c.Request.Context(), request.CNPJ, request.UserID, c.ClientIP())
	if err != nil {
		h.respondError(c, requestID, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"duration":   time.Since(start),
		"warning":    result.Warning != "",
	}).Info("CNPJ validation completed")

	response := models.CNPJValidationResponse{
		Success:   true,
		Data:      result.Record,
		Timestamp: time.Now(),
	}

	// Incompatible activity: non-blocking warning, registry data attached
	// so the user can decide whether to proceed
	if result.Warning != "" {
		response.Success = false
		response.Warning = true
		response.Error = result.Warning
	}

	c.JSON(http.StatusOK, response)
}

// respondError maps taxonomy codes to HTTP responses
func (h *ValidationHandler) respondError(c *gin.Context, requestID string, err error) {
	code := services.ErrorCode(err)

	status := http.StatusInternalServerError
	message := "Erro interno. Tente novamente mais tarde"

	switch code {
	case services.CodeInvalidCPF, services.CodeInvalidCNPJ:
		status = http.StatusBadRequest
		message = err.Error()
	case services.CodeRateLimited:
		status = http.StatusTooManyRequests
		message = err.Error()
	case services.CodeAlreadyRegistered:
		status = http.StatusConflict
		message = err.Error()
	case services.CodeRegistryNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case services.CodeRegistryInactive:
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case services.CodeRegistryUnavailable:
		status = http.StatusServiceUnavailable
		message = err.Error()
	default:
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Validation failed with unexpected error")
	}

	c.JSON(status, models.ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
