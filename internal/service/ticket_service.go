package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// minCommentLength is the shortest accepted comment.
const minCommentLength = 10

// TicketService handles reporting, commenting and status workflows.
type TicketService struct {
	Deps
}

// NewTicketService constructs the service.
func NewTicketService(deps Deps) *TicketService {
	return &TicketService{Deps: deps}
}

// ReportTicketInput describes a new ticket report. ReportedBy empty
// means an anonymous report.
type ReportTicketInput struct {
	Kind          domain.TicketKind
	Title         string
	Description   string
	ExpertiseArea domain.ExpertiseArea
	ReportedBy    string
	Priority      domain.Priority

	Bug        *domain.BugDetails
	Feature    *domain.FeatureDetails
	UIFeedback *domain.UIFeedbackDetails
}

// ReportTicket files a new ticket. Only reporters may report, only
// during the testing phase, and anonymous reports are limited to bugs.
func (s *TicketService) ReportTicket(ctx context.Context, actor *domain.User, when string, input ReportTicketInput) (*domain.Ticket, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	// The first report opens the testing phase.
	s.Store.BeginTestingPhase(when)

	if !s.testingPhaseActive(when) {
		return nil, apperrors.NewConflict("Tickets can only be reported during testing phases.", nil)
	}
	if err := requireRole(actor, domain.RoleReporter); err != nil {
		return nil, err
	}
	if input.ReportedBy == "" && input.Kind != domain.KindBug {
		return nil, apperrors.NewValidationError("Anonymous reports are only allowed for tickets of type BUG.", nil)
	}

	ticket := &domain.Ticket{
		ID:               s.Store.NextTicketID(),
		Kind:             input.Kind,
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Status:           domain.StatusOpen,
		BusinessPriority: input.Priority,
		ExpertiseArea:    input.ExpertiseArea,
		ReportedBy:       input.ReportedBy,
		CreatedAt:        when,
		Bug:              input.Bug,
		Feature:          input.Feature,
		UIFeedback:       input.UIFeedback,
	}
	if ticket.BusinessPriority == "" || ticket.Anonymous() {
		ticket.BusinessPriority = domain.PriorityLow
	}
	if err := validateKindDetails(ticket); err != nil {
		return nil, err
	}
	s.Store.PutTicket(ticket)

	s.publish(ctx, events.Event{
		Type:      events.EventTicketReported,
		TicketID:  ticket.ID,
		Actor:     actor.Username,
		Timestamp: when,
	})
	return ticket, nil
}

func validateKindDetails(t *domain.Ticket) error {
	switch t.Kind {
	case domain.KindBug:
		if t.Bug == nil {
			return apperrors.NewValidationError("bug details required", nil)
		}
	case domain.KindFeatureRequest:
		if t.Feature == nil {
			return apperrors.NewValidationError("feature request details required", nil)
		}
	case domain.KindUIFeedback:
		if t.UIFeedback == nil {
			return apperrors.NewValidationError("ui feedback details required", nil)
		}
		if t.UIFeedback.UsabilityScore < 1 || t.UIFeedback.UsabilityScore > 10 {
			return apperrors.NewValidationError("usability score must be between 1 and 10", nil)
		}
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown ticket type %q", t.Kind), nil)
	}
	return nil
}

// AddComment appends a comment to a ticket, subject to ownership and
// length rules.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, when string, ticketID int, text string) error {
	release, err := s.begin(when)
	if err != nil {
		return err
	}
	defer release()

	ticket, ok := s.Store.Ticket(ticketID)
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Anonymous() {
		return apperrors.NewConflict("Comments are not allowed on anonymous tickets.", nil)
	}
	if actor.Role == domain.RoleReporter && ticket.Status == domain.StatusClosed {
		return apperrors.NewConflict("Reporters cannot comment on CLOSED tickets.", nil)
	}
	if len(text) < minCommentLength {
		return apperrors.NewValidationError("Comment must be at least 10 characters long.", nil)
	}
	switch actor.Role {
	case domain.RoleReporter:
		if ticket.ReportedBy != actor.Username {
			return apperrors.NewForbidden(fmt.Sprintf("Reporter %s cannot comment on ticket %d.", actor.Username, ticketID))
		}
	case domain.RoleDeveloper:
		if ticket.Assigned() && ticket.AssignedTo != actor.Username {
			return apperrors.NewForbidden(fmt.Sprintf("Ticket %d is not assigned to the developer %s.", ticketID, actor.Username))
		}
	}

	ticket.Comments = append(ticket.Comments, domain.Comment{
		Author:    actor.Username,
		Text:      text,
		Timestamp: when,
	})
	return nil
}

// UndoAddComment removes the actor's most recent comment on a ticket.
func (s *TicketService) UndoAddComment(ctx context.Context, actor *domain.User, when string, ticketID int) error {
	release, err := s.begin(when)
	if err != nil {
		return err
	}
	defer release()

	ticket, ok := s.Store.Ticket(ticketID)
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Anonymous() {
		return apperrors.NewConflict("Comments are not allowed on anonymous tickets.", nil)
	}
	if actor.Role == domain.RoleReporter && ticket.ReportedBy != actor.Username {
		return apperrors.NewForbidden(fmt.Sprintf("Reporter %s cannot comment on ticket %d.", actor.Username, ticketID))
	}
	for i := len(ticket.Comments) - 1; i >= 0; i-- {
		if ticket.Comments[i].Author == actor.Username {
			ticket.Comments = append(ticket.Comments[:i], ticket.Comments[i+1:]...)
			return nil
		}
	}
	return nil
}

// ChangeStatus moves the actor's assigned ticket one step forward:
// IN_PROGRESS to RESOLVED, RESOLVED to CLOSED. Other states are left
// untouched.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, when string, ticketID int) (*domain.Ticket, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.ticketHeldBy(actor, ticketID)
	if err != nil {
		return nil, err
	}

	old := ticket.Status
	var next domain.TicketStatus
	switch old {
	case domain.StatusInProgress:
		next = domain.StatusResolved
	case domain.StatusResolved:
		next = domain.StatusClosed
		ticket.SolvedAt = when
	default:
		return ticket, nil
	}
	s.applyStatusChange(ctx, ticket, actor.Username, when, old, next)
	return ticket, nil
}

// UndoChangeStatus steps the status back: CLOSED to RESOLVED, RESOLVED
// to IN_PROGRESS. The step back out of CLOSED clears SolvedAt.
func (s *TicketService) UndoChangeStatus(ctx context.Context, actor *domain.User, when string, ticketID int) (*domain.Ticket, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := s.ticketHeldBy(actor, ticketID)
	if err != nil {
		return nil, err
	}

	old := ticket.Status
	var next domain.TicketStatus
	switch old {
	case domain.StatusClosed:
		next = domain.StatusResolved
		ticket.SolvedAt = ""
	case domain.StatusResolved:
		next = domain.StatusInProgress
	default:
		return ticket, nil
	}
	s.applyStatusChange(ctx, ticket, actor.Username, when, old, next)
	return ticket, nil
}

func (s *TicketService) ticketHeldBy(actor *domain.User, ticketID int) (*domain.Ticket, error) {
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
	return ticket, nil
}

func (s *TicketService) applyStatusChange(ctx context.Context, ticket *domain.Ticket, by, when string, old, next domain.TicketStatus) {
	ticket.Status = next
	ticket.AppendHistory(domain.HistoryEntry{
		Action:    domain.ActionStatusChanged,
		From:      string(old),
		To:        string(next),
		By:        by,
		Timestamp: when,
	})
	s.publish(ctx, events.Event{
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		Actor:     by,
		Timestamp: when,
		Payload:   events.StatusChangePayload{OldStatus: string(old), NewStatus: string(next)},
	})
}

// ViewTickets returns the tickets visible to the caller: managers see
// everything, reporters their own reports, developers the OPEN tickets
// of milestones they are assigned to. Sorted by creation date, then id.
func (s *TicketService) ViewTickets(actor *domain.User, when string) []*domain.Ticket {
	defer s.beginRead(when)()

	var visible []*domain.Ticket
	switch actor.Role {
	case domain.RoleManager:
		visible = s.Store.Tickets()
	case domain.RoleReporter:
		for _, t := range s.Store.Tickets() {
			if t.ReportedBy == actor.Username {
				visible = append(visible, t)
			}
		}
	case domain.RoleDeveloper:
		ids := make(map[int]struct{})
		for _, m := range s.Store.Milestones() {
			if !m.HasDev(actor.Username) {
				continue
			}
			for _, tid := range m.Tickets {
				ids[tid] = struct{}{}
			}
		}
		for _, t := range s.Store.Tickets() {
			if _, ok := ids[t.ID]; ok && t.Status == domain.StatusOpen {
				visible = append(visible, t)
			}
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].CreatedAt != visible[j].CreatedAt {
			return visible[i].CreatedAt < visible[j].CreatedAt
		}
		return visible[i].ID < visible[j].ID
	})
	return visible
}

// ViewAssignedTickets returns the caller's assigned tickets, highest
// priority first, then by id.
func (s *TicketService) ViewAssignedTickets(actor *domain.User, when string) []*domain.Ticket {
	defer s.beginRead(when)()

	var assigned []*domain.Ticket
	for _, t := range s.Store.Tickets() {
		if t.AssignedTo == actor.Username {
			assigned = append(assigned, t)
		}
	}
	sort.SliceStable(assigned, func(i, j int) bool {
		pi, pj := assigned[i].BusinessPriority.Rank(), assigned[j].BusinessPriority.Rank()
		if pi != pj {
			return pi > pj
		}
		return assigned[i].ID < assigned[j].ID
	})
	return assigned
}

// TicketHistoryView is the per-ticket slice of a history listing.
type TicketHistoryView struct {
	ID       int
	Title    string
	Status   domain.TicketStatus
	Actions  []domain.HistoryEntry
	Comments []domain.Comment
}

// visibleHistoryActions are the actions surfaced by history listings;
// SYSTEM bookkeeping entries stay internal.
var visibleHistoryActions = map[domain.HistoryAction]struct{}{
	domain.ActionAssigned:         {},
	domain.ActionDeAssigned:       {},
	domain.ActionStatusChanged:    {},
	domain.ActionAddedToMilestone: {},
}

// ViewTicketHistory lists the caller's current and, for developers,
// previously held tickets with their user-visible history.
func (s *TicketService) ViewTicketHistory(actor *domain.User, when string) []TicketHistoryView {
	defer s.beginRead(when)()

	seen := make(map[int]struct{})
	var tickets []*domain.Ticket
	for _, t := range s.Store.Tickets() {
		if t.AssignedTo == actor.Username {
			tickets = append(tickets, t)
			seen[t.ID] = struct{}{}
		}
	}
	if actor.IsDeveloper() {
		for _, t := range s.Store.Tickets() {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			for _, entry := range t.History {
				if entry.Action == domain.ActionAssigned && entry.By == actor.Username {
					tickets = append(tickets, t)
					break
				}
			}
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })

	views := make([]TicketHistoryView, 0, len(tickets))
	for _, t := range tickets {
		var actions []domain.HistoryEntry
		for _, entry := range t.History {
			if _, ok := visibleHistoryActions[entry.Action]; ok {
				actions = append(actions, entry)
			}
		}
		views = append(views, TicketHistoryView{
			ID:       t.ID,
			Title:    t.Title,
			Status:   t.Status,
			Actions:  actions,
			Comments: t.Comments,
		})
	}
	return views
}
