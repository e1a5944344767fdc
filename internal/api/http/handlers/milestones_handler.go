package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// MilestonesHandler manages milestone endpoints.
type MilestonesHandler struct {
	milestones *service.MilestoneService
}

// NewMilestonesHandler constructs handler.
func NewMilestonesHandler(milestones *service.MilestoneService) *MilestonesHandler {
	return &MilestonesHandler{milestones: milestones}
}

// CreateMilestone POST /milestones.
func (h *MilestonesHandler) CreateMilestone(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateMilestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.DueDate == "" {
		return apperrors.NewValidationError("name, dueDate required", nil)
	}

	milestone, err := h.milestones.CreateMilestone(c.Context(), principal, requestDate(c), service.CreateMilestoneInput{
		Name:         req.Name,
		DueDate:      req.DueDate,
		Tickets:      req.Tickets,
		AssignedDevs: req.AssignedDevs,
		BlockingFor:  req.BlockingFor,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"name":      milestone.Name,
		"dueDate":   milestone.DueDate,
		"createdAt": milestone.CreatedAt,
	}})
}

// ListMilestones GET /milestones.
func (h *MilestonesHandler) ListMilestones(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views := h.milestones.ViewMilestones(principal, requestDate(c))
	items := make([]dto.MilestoneResponse, 0, len(views))
	for _, v := range views {
		item := dto.MilestoneResponse{
			Name:                 v.Name,
			BlockingFor:          v.BlockingFor,
			DueDate:              v.DueDate,
			CreatedAt:            v.CreatedAt,
			CreatedBy:            v.CreatedBy,
			Tickets:              v.Tickets,
			AssignedDevs:         v.AssignedDevs,
			Status:               v.Status,
			IsBlocked:            v.IsBlocked,
			DaysUntilDue:         v.DaysUntilDue,
			OverdueBy:            v.OverdueBy,
			OpenTickets:          v.OpenTickets,
			ClosedTickets:        v.ClosedTickets,
			CompletionPercentage: v.CompletionPercentage,
		}
		for _, rep := range v.Repartition {
			item.Repartition = append(item.Repartition, dto.DevRepartitionResponse{
				Developer:       rep.Developer,
				AssignedTickets: rep.AssignedTickets,
			})
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}
