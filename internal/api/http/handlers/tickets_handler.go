package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// TicketsHandler manages ticket reporting, comments, status changes
// and the role-scoped ticket views.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments}
}

// ReportTicket POST /tickets.
func (h *TicketsHandler) ReportTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ReportTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Type == "" || req.Title == "" {
		return apperrors.NewValidationError("type, title required", nil)
	}

	input := service.ReportTicketInput{
		Kind:          domain.TicketKind(req.Type),
		Title:         req.Title,
		Description:   req.Description,
		ExpertiseArea: domain.ExpertiseArea(req.ExpertiseArea),
		Priority:      domain.Priority(req.Priority),
	}
	if !req.Anonymous {
		input.ReportedBy = principal.Username
	}
	switch input.Kind {
	case domain.KindBug:
		input.Bug = &domain.BugDetails{
			ExpectedBehavior: req.ExpectedBehavior,
			ActualBehavior:   req.ActualBehavior,
			Frequency:        domain.Frequency(req.Frequency),
			Severity:         domain.Severity(req.Severity),
			Environment:      req.Environment,
		}
	case domain.KindFeatureRequest:
		input.Feature = &domain.FeatureDetails{
			BusinessValue:  domain.BusinessValue(req.BusinessValue),
			CustomerDemand: domain.CustomerDemand(req.CustomerDemand),
		}
	case domain.KindUIFeedback:
		input.UIFeedback = &domain.UIFeedbackDetails{
			UIElementID:    req.UIElementID,
			BusinessValue:  domain.BusinessValue(req.BusinessValue),
			UsabilityScore: req.UsabilityScore,
			ScreenshotURL:  req.ScreenshotURL,
			SuggestedFix:   req.SuggestedFix,
		}
	}

	ticket, err := h.tickets.ReportTicket(c.Context(), principal, requestDate(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tickets := h.tickets.ViewTickets(principal, requestDate(c))
	items := make([]dto.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ticketSummary(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAssignedTickets GET /tickets/assigned.
func (h *TicketsHandler) ListAssignedTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tickets := h.tickets.ViewAssignedTickets(principal, requestDate(c))
	items := make([]dto.TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, ticketSummary(t))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TicketHistory GET /tickets/history.
func (h *TicketsHandler) TicketHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	views := h.tickets.ViewTicketHistory(principal, requestDate(c))
	items := make([]dto.TicketHistoryResponse, 0, len(views))
	for _, v := range views {
		item := dto.TicketHistoryResponse{
			ID:       v.ID,
			Title:    v.Title,
			Status:   string(v.Status),
			Actions:  make([]dto.HistoryEntryResponse, 0, len(v.Actions)),
			Comments: make([]dto.CommentResponse, 0, len(v.Comments)),
		}
		for _, e := range v.Actions {
			item.Actions = append(item.Actions, historyEntryResponse(e))
		}
		for _, cm := range v.Comments {
			item.Comments = append(item.Comments, commentResponse(cm))
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.tickets.AddComment(c.Context(), principal, requestDate(c), ticketID, req.Text); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusCreated)
}

// UndoAddComment DELETE /tickets/:id/comments.
func (h *TicketsHandler) UndoAddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	if err := h.tickets.UndoAddComment(c.Context(), principal, requestDate(c), ticketID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ChangeStatus(c.Context(), principal, requestDate(c), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UndoChangeStatus DELETE /tickets/:id/status.
func (h *TicketsHandler) UndoChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UndoChangeStatus(c.Context(), principal, requestDate(c), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AssignTicket POST /tickets/:id/assignment.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.AssignTicket(c.Context(), principal, requestDate(c), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UndoAssignTicket DELETE /tickets/:id/assignment.
func (h *TicketsHandler) UndoAssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.UndoAssignTicket(c.Context(), principal, requestDate(c), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func ticketIDParam(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}
