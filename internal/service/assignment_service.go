package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/escalation-service/internal/access"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// AssignmentService handles ticket self-assignment and its undo.
type AssignmentService struct {
	Deps
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps Deps) *AssignmentService {
	return &AssignmentService{Deps: deps}
}

// AssignTicket lets a developer take an OPEN ticket from a milestone
// they belong to, provided the milestone is not blocked and the
// eligibility predicate passes.
func (s *AssignmentService) AssignTicket(ctx context.Context, actor *domain.User, when string, ticketID int) (*domain.Ticket, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	if s.testingPhaseActive(when) {
		return nil, apperrors.NewConflict("Tickets cannot be assigned during testing phases.", nil)
	}
	if err := requireRole(actor, domain.RoleDeveloper); err != nil {
		return nil, err
	}
	ticket, ok := s.Store.Ticket(ticketID)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Status != domain.StatusOpen {
		return nil, apperrors.NewConflict("Only OPEN tickets can be assigned.", nil)
	}
	milestone, ok := s.Store.MilestoneForTicket(ticketID)
	if !ok {
		return nil, apperrors.NewConflict(fmt.Sprintf("Ticket ID %d is not assigned to any milestone.", ticketID), nil)
	}
	if !milestone.HasDev(actor.Username) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("Developer %s is not assigned to milestone %s.", actor.Username, milestone.Name))
	}
	if s.Engine.IsBlocked(milestone) {
		return nil, apperrors.NewConflict(fmt.Sprintf("Cannot assign ticket %d from blocked milestone %s.", ticketID, milestone.Name), nil)
	}
	if !access.ExpertiseMatch(actor.ExpertiseArea, ticket.ExpertiseArea) {
		return nil, apperrors.NewForbidden(fmt.Sprintf(
			"Developer %s cannot assign ticket %d due to expertise area. Required: %s; Current: %s.",
			actor.Username, ticketID, access.RequiredExpertise(ticket.ExpertiseArea), actor.ExpertiseArea))
	}
	if !access.SeniorityMatch(actor.Seniority, ticket.BusinessPriority) {
		return nil, apperrors.NewForbidden(fmt.Sprintf(
			"Developer %s cannot assign ticket %d due to seniority level. Required: %s; Current: %s.",
			actor.Username, ticketID, access.RequiredSeniority(ticket.BusinessPriority), actor.Seniority))
	}

	ticket.AssignedTo = actor.Username
	ticket.AssignedAt = when
	ticket.AppendHistory(domain.HistoryEntry{
		Action:    domain.ActionAssigned,
		By:        actor.Username,
		Timestamp: when,
	})
	ticket.Status = domain.StatusInProgress
	ticket.AppendHistory(domain.HistoryEntry{
		Action:    domain.ActionStatusChanged,
		From:      string(domain.StatusOpen),
		To:        string(domain.StatusInProgress),
		By:        actor.Username,
		Timestamp: when,
	})

	s.publish(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		TicketID:  ticket.ID,
		Actor:     actor.Username,
		Timestamp: when,
		Payload:   events.AssignmentPayload{Assignee: actor.Username},
	})
	return ticket, nil
}

// UndoAssignTicket releases the actor's hold on a ticket, returning it
// to OPEN.
func (s *AssignmentService) UndoAssignTicket(ctx context.Context, actor *domain.User, when string, ticketID int) (*domain.Ticket, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := requireRole(actor, domain.RoleDeveloper); err != nil {
		return nil, err
	}
	ticket, ok := s.Store.Ticket(ticketID)
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.AssignedTo != actor.Username {
		return nil, apperrors.NewForbidden(fmt.Sprintf("Ticket %d is not assigned to developer %s.", ticketID, actor.Username))
	}

	ticket.AssignedTo = ""
	ticket.AssignedAt = ""
	ticket.Status = domain.StatusOpen
	ticket.AppendHistory(domain.HistoryEntry{
		Action:    domain.ActionDeAssigned,
		By:        actor.Username,
		Timestamp: when,
	})

	s.publish(ctx, events.Event{
		Type:      events.EventTicketUnassigned,
		TicketID:  ticket.ID,
		Actor:     actor.Username,
		Timestamp: when,
	})
	return ticket, nil
}
