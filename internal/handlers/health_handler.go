package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/services"
)

type HealthHandler struct {
	analyzer services.AnalyzerService
	version  string
}

func NewHealthHandler(analyzer services.AnalyzerService, version string) *HealthHandler {
	return &HealthHandler{
		analyzer: analyzer,
		version:  version,
	}
}

// HandleHealth handles GET /health. The service reports healthy as long as
// it is up; provider availability is informational.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Providers: h.analyzer.Health(),
	})
}

// HandlePromptVersions handles GET /prompts
func (h *HealthHandler) HandlePromptVersions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"versions": h.analyzer.PromptVersions(),
	})
}
