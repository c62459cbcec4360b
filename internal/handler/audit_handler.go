package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"perpustakaan-backend/internal/middleware"
	"perpustakaan-backend/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	entityType := c.Query("entity_type")
	entityID := c.Query("entity_id")

	if entityType != "" && entityID != "" {
		id, err := uuid.Parse(entityID)
		if err != nil {
			return middleware.BadRequest("Invalid entity ID")
		}

		result, err := h.auditService.ListByEntity(c.Context(), entityType, id, params)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(result)
	}

	result, err := h.auditService.List(c.Context(), params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
