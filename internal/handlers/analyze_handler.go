package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/services"
)

type AnalyzeHandler struct {
	pool        services.AnalysisPool
	maxFileSize int64
}

func NewAnalyzeHandler(pool services.AnalysisPool, maxFileSize int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		pool:        pool,
		maxFileSize: maxFileSize,
	}
}

// HandleAnalyze handles POST /analyze. The request is multipart: the CV under
// the "cv" file field, position_framework and company_criteria as JSON form
// values, config as an optional JSON form value.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("cv")
	if err != nil {
		return badRequest(c, "cv file is required")
	}

	if fileHeader.Size > h.maxFileSize {
		return badRequest(c, fmt.Sprintf("CV file too large. Max size: %d bytes", h.maxFileSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to open uploaded CV file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "failed to read uploaded CV file")
	}

	var framework models.PositionFramework
	if err := json.Unmarshal([]byte(c.FormValue("position_framework")), &framework); err != nil {
		return badRequest(c, "position_framework must be valid JSON")
	}

	var criteria models.CompanyCriteria
	if err := json.Unmarshal([]byte(c.FormValue("company_criteria")), &criteria); err != nil {
		return badRequest(c, "company_criteria must be valid JSON")
	}

	var options models.AnalysisOptions
	if raw := c.FormValue("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			return badRequest(c, "config must be valid JSON")
		}
	}

	req := &models.AnalysisRequest{
		CVFile:            data,
		CVFilename:        fileHeader.Filename,
		PositionFramework: framework,
		CompanyCriteria:   criteria,
		Options:           options,
	}

	result, err := h.pool.Submit(c.Context(), req)
	if err != nil {
		return analysisErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

// analysisErrorResponse maps the error taxonomy onto HTTP statuses.
func analysisErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrInvalidRequest) {
		return badRequest(c, err.Error())
	}

	ae, ok := services.AsAnalysisError(err)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}

	status := fiber.StatusInternalServerError
	switch ae.Kind {
	case services.ErrKindDocumentParse:
		status = fiber.StatusUnprocessableEntity
	case services.ErrKindUnknownPromptVersion, services.ErrKindRequestedProviderUnavailable:
		status = fiber.StatusBadRequest
	case services.ErrKindNoProviderConfigured:
		status = fiber.StatusServiceUnavailable
	case services.ErrKindProviderCall, services.ErrKindResponseValidation:
		status = fiber.StatusBadGateway
	case services.ErrKindAnalysisTimeout:
		status = fiber.StatusGatewayTimeout
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error:   string(ae.Kind),
		Message: err.Error(),
	})
}
