package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// MilestoneService handles milestone creation and views.
type MilestoneService struct {
	Deps
}

// NewMilestoneService constructs the service.
func NewMilestoneService(deps Deps) *MilestoneService {
	return &MilestoneService{Deps: deps}
}

// CreateMilestoneInput describes a milestone creation request.
type CreateMilestoneInput struct {
	Name         string
	DueDate      string
	Tickets      []int
	AssignedDevs []string
	BlockingFor  []string
}

// CreateMilestone registers a milestone. Dependency links are wired
// reciprocally at creation: milestones named in BlockingFor gain this
// milestone in their DependsOn, and existing milestones already naming
// this one in their BlockingFor seed its DependsOn. Afterwards the
// dependency sets are never mutated.
func (s *MilestoneService) CreateMilestone(ctx context.Context, actor *domain.User, when string, input CreateMilestoneInput) (*domain.Milestone, error) {
	release, err := s.begin(when)
	if err != nil {
		return nil, err
	}
	defer release()

	if s.testingPhaseActive(when) {
		return nil, apperrors.NewConflict("Milestones cannot be created during testing phases.", nil)
	}
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, apperrors.NewValidationError("milestone name required", nil)
	}
	if _, exists := s.Store.Milestone(input.Name); exists {
		return nil, apperrors.NewConflict(fmt.Sprintf("Milestone %s already exists.", input.Name), nil)
	}
	for _, tid := range input.Tickets {
		if _, ok := s.Store.Ticket(tid); !ok {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": tid})
		}
		if owner, ok := s.Store.MilestoneForTicket(tid); ok {
			return nil, apperrors.NewConflict(
				fmt.Sprintf("Tickets %d already assigned to milestone %s.", tid, owner.Name), nil)
		}
	}

	milestone := &domain.Milestone{
		Name:         input.Name,
		DueDate:      input.DueDate,
		CreatedAt:    when,
		CreatedBy:    actor.Username,
		Tickets:      input.Tickets,
		AssignedDevs: input.AssignedDevs,
		BlockingFor:  input.BlockingFor,
	}

	for _, blockedName := range milestone.BlockingFor {
		if blocked, ok := s.Store.Milestone(blockedName); ok {
			blocked.DependsOn = append(blocked.DependsOn, milestone.Name)
		}
	}
	for _, existing := range s.Store.Milestones() {
		for _, name := range existing.BlockingFor {
			if name == milestone.Name {
				milestone.DependsOn = append(milestone.DependsOn, existing.Name)
			}
		}
	}

	for _, tid := range milestone.Tickets {
		ticket, ok := s.Store.Ticket(tid)
		if !ok {
			continue
		}
		ticket.Milestone = milestone.Name
		ticket.AppendHistory(domain.HistoryEntry{
			Action:    domain.ActionAddedToMilestone,
			Milestone: milestone.Name,
			By:        actor.Username,
			Timestamp: when,
		})
	}

	s.Store.AddMilestone(milestone)

	for _, dev := range milestone.AssignedDevs {
		s.Mailbox.Notify(dev, fmt.Sprintf("You have been assigned to milestone %s (due %s).", milestone.Name, milestone.DueDate))
	}
	s.publish(ctx, events.Event{
		Type:      events.EventMilestoneCreated,
		Milestone: milestone.Name,
		Actor:     actor.Username,
		Timestamp: when,
	})
	return milestone, nil
}

// MilestoneView is the computed projection of a milestone.
type MilestoneView struct {
	Name                 string
	BlockingFor          []string
	DueDate              string
	CreatedAt            string
	CreatedBy            string
	Tickets              []int
	AssignedDevs         []string
	Status               string
	IsBlocked            bool
	DaysUntilDue         int
	OverdueBy            int
	OpenTickets          []int
	ClosedTickets        []int
	CompletionPercentage float64
	Repartition          []DevRepartition
}

// DevRepartition maps a milestone developer to their held tickets.
type DevRepartition struct {
	Developer       string
	AssignedTickets []int
}

// ViewMilestones returns the milestones visible to the caller, sorted
// by due date then name: managers see those they created, developers
// those they are assigned to.
func (s *MilestoneService) ViewMilestones(actor *domain.User, when string) []MilestoneView {
	defer s.beginRead(when)()

	var visible []*domain.Milestone
	for _, m := range s.Store.Milestones() {
		switch actor.Role {
		case domain.RoleManager:
			if m.CreatedBy == actor.Username {
				visible = append(visible, m)
			}
		case domain.RoleDeveloper:
			if m.HasDev(actor.Username) {
				visible = append(visible, m)
			}
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].DueDate != visible[j].DueDate {
			return visible[i].DueDate < visible[j].DueDate
		}
		return visible[i].Name < visible[j].Name
	})

	views := make([]MilestoneView, 0, len(visible))
	for _, m := range visible {
		views = append(views, s.projectMilestone(m, when))
	}
	return views
}

func (s *MilestoneService) projectMilestone(m *domain.Milestone, today string) MilestoneView {
	view := MilestoneView{
		Name:         m.Name,
		BlockingFor:  m.BlockingFor,
		DueDate:      m.DueDate,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
		Tickets:      m.Tickets,
		AssignedDevs: m.AssignedDevs,
		IsBlocked:    s.Engine.IsBlocked(m),
	}

	allClosed := true
	lastSolved := ""
	for _, tid := range m.Tickets {
		t, ok := s.Store.Ticket(tid)
		if !ok {
			continue
		}
		if t.Status != domain.StatusClosed {
			allClosed = false
			view.OpenTickets = append(view.OpenTickets, tid)
			continue
		}
		view.ClosedTickets = append(view.ClosedTickets, tid)
		if t.SolvedAt != "" && t.SolvedAt > lastSolved {
			lastSolved = t.SolvedAt
		}
	}

	view.Status = "ACTIVE"
	if allClosed && len(m.Tickets) > 0 {
		view.Status = "COMPLETED"
	}

	// A completed milestone is measured against its last close date,
	// an active one against today.
	if allClosed && lastSolved != "" {
		if over, err := domain.DaysBetween(m.DueDate, lastSolved); err == nil && over+1 > 0 {
			view.OverdueBy = over + 1
		}
	} else if diff, err := domain.DaysBetween(today, m.DueDate); err == nil {
		if diff < 0 {
			view.OverdueBy = -diff + 1
		} else {
			view.DaysUntilDue = diff + 1
		}
	}

	if len(m.Tickets) > 0 {
		ratio := float64(len(view.ClosedTickets)) / float64(len(m.Tickets))
		view.CompletionPercentage = round2(ratio)
	}

	for _, dev := range m.AssignedDevs {
		rep := DevRepartition{Developer: dev}
		for _, tid := range m.Tickets {
			if t, ok := s.Store.Ticket(tid); ok && t.AssignedTo == dev {
				rep.AssignedTickets = append(rep.AssignedTickets, tid)
			}
		}
		view.Repartition = append(view.Repartition, rep)
	}
	return view
}
