package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/cv-analyzer/internal/models"
	"alfredoptarigan/cv-analyzer/internal/repositories"
)

type AuditHandler struct {
	auditRepo repositories.AuditRepository
}

func NewAuditHandler(auditRepo repositories.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// HandleGetAnalysis handles GET /analyses/:id
func (h *AuditHandler) HandleGetAnalysis(c *fiber.Ctx) error {
	analysisID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid analysis id format")
	}

	record, err := h.auditRepo.FindByAnalysisID(analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Error:   "not_found",
				Message: "analysis not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}

	return c.JSON(record)
}

// HandleListAnalyses handles GET /analyses
func (h *AuditHandler) HandleListAnalyses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := h.auditRepo.Recent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}

	total, err := h.auditRepo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"analyses": records,
		"total":    total,
	})
}

// HandleUsage handles GET /usage
func (h *AuditHandler) HandleUsage(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	if days < 1 || days > 365 {
		days = 30
	}

	stats, err := h.auditRepo.UsageStats(days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"days":      days,
		"providers": stats,
	})
}
