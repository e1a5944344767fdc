package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/engine"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/notify"
	"github.com/spec-kit/escalation-service/internal/store"
)

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	st := store.New()
	mailbox := notify.NewMemoryMailbox()
	logger := zap.NewNop()
	return Deps{
		Store:      st,
		Engine:     engine.New(st, mailbox, nil, logger),
		Dispatcher: events.NewInMemoryDispatcher(),
		Mailbox:    mailbox,
		Logger:     logger,
	}
}

func reporter(username string) *domain.User {
	return &domain.User{Username: username, Role: domain.RoleReporter}
}

func developer(username string, area domain.ExpertiseArea, seniority domain.Seniority) *domain.User {
	return &domain.User{
		Username:      username,
		Role:          domain.RoleDeveloper,
		ExpertiseArea: area,
		Seniority:     seniority,
	}
}

func bugInput(reportedBy string) ReportTicketInput {
	return ReportTicketInput{
		Kind:          domain.KindBug,
		Title:         "login fails on retry",
		Description:   "second attempt always errors",
		ExpertiseArea: domain.ExpertiseBackend,
		ReportedBy:    reportedBy,
		Priority:      domain.PriorityMedium,
		Bug: &domain.BugDetails{
			Frequency: domain.FrequencyFrequent,
			Severity:  domain.SeverityModerate,
		},
	}
}

func TestReportTicket(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	rep := reporter("ana")

	ticket, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", bugInput("ana"))

	require.NoError(t, err)
	assert.Equal(t, 1, ticket.ID)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, domain.PriorityMedium, ticket.BusinessPriority)
	assert.Equal(t, "2024-01-01", deps.Store.TestingPhaseStart())
}

func TestReportTicketRequiresReporterRole(t *testing.T) {
	svc := NewTicketService(newTestDeps(t))
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)

	_, err := svc.ReportTicket(context.Background(), dev, "2024-01-01", bugInput("dana"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required role REPORTER")
}

func TestReportTicketAnonymousRules(t *testing.T) {
	svc := NewTicketService(newTestDeps(t))
	rep := reporter("ana")

	input := ReportTicketInput{
		Kind:          domain.KindFeatureRequest,
		Title:         "dark mode",
		ExpertiseArea: domain.ExpertiseFrontend,
		Feature: &domain.FeatureDetails{
			BusinessValue:  domain.BusinessValueM,
			CustomerDemand: domain.DemandHigh,
		},
	}
	_, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only allowed for tickets of type BUG")

	anon := bugInput("")
	anon.Priority = domain.PriorityHigh
	ticket, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", anon)
	require.NoError(t, err)
	assert.True(t, ticket.Anonymous())
	assert.Equal(t, domain.PriorityLow, ticket.BusinessPriority)
}

func TestReportTicketAfterTestingPhase(t *testing.T) {
	svc := NewTicketService(newTestDeps(t))
	rep := reporter("ana")

	_, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", bugInput("ana"))
	require.NoError(t, err)

	// Day 13 of the phase is past the twelve-day window.
	_, err = svc.ReportTicket(context.Background(), rep, "2024-01-13", bugInput("ana"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "during testing phases")
}

func TestReportTicketValidatesUsabilityScore(t *testing.T) {
	svc := NewTicketService(newTestDeps(t))
	rep := reporter("ana")

	input := ReportTicketInput{
		Kind:          domain.KindUIFeedback,
		Title:         "button hidden",
		ExpertiseArea: domain.ExpertiseDesign,
		ReportedBy:    "ana",
		UIFeedback: &domain.UIFeedbackDetails{
			BusinessValue:  domain.BusinessValueM,
			UsabilityScore: 11,
		},
	}
	_, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", input)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "usability score")
}

func TestAddComment(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	rep := reporter("ana")

	ticket, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", bugInput("ana"))
	require.NoError(t, err)

	err = svc.AddComment(context.Background(), rep, "2024-01-02", ticket.ID, "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 10 characters")

	err = svc.AddComment(context.Background(), rep, "2024-01-02", ticket.ID, "happens on Firefox too")
	require.NoError(t, err)
	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "ana", ticket.Comments[0].Author)

	other := reporter("bob")
	err = svc.AddComment(context.Background(), other, "2024-01-02", ticket.ID, "me too, same problem here")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot comment")
}

func TestAddCommentAnonymousTicket(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	rep := reporter("ana")

	ticket, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", bugInput(""))
	require.NoError(t, err)

	err = svc.AddComment(context.Background(), rep, "2024-01-02", ticket.ID, "extra details about the crash")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "anonymous tickets")
}

func TestUndoAddCommentRemovesLatestOwn(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	rep := reporter("ana")

	ticket, err := svc.ReportTicket(context.Background(), rep, "2024-01-01", bugInput("ana"))
	require.NoError(t, err)
	require.NoError(t, svc.AddComment(context.Background(), rep, "2024-01-02", ticket.ID, "first observation here"))
	require.NoError(t, svc.AddComment(context.Background(), rep, "2024-01-03", ticket.ID, "second observation here"))

	require.NoError(t, svc.UndoAddComment(context.Background(), rep, "2024-01-03", ticket.ID))

	require.Len(t, ticket.Comments, 1)
	assert.Equal(t, "first observation here", ticket.Comments[0].Text)
}

func TestChangeStatusFlow(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)
	deps.Store.PutUser(dev)

	ticket := &domain.Ticket{
		ID:               1,
		Kind:             domain.KindBug,
		Status:           domain.StatusInProgress,
		BusinessPriority: domain.PriorityMedium,
		AssignedTo:       "dana",
		AssignedAt:       "2024-01-02",
		Bug:              &domain.BugDetails{Frequency: domain.FrequencyRare, Severity: domain.SeverityMinor},
	}
	deps.Store.PutTicket(ticket)

	_, err := svc.ChangeStatus(context.Background(), dev, "2024-01-03", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, ticket.Status)

	_, err = svc.ChangeStatus(context.Background(), dev, "2024-01-04", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, ticket.Status)
	assert.Equal(t, "2024-01-04", ticket.SolvedAt)
	assert.Equal(t, 2, ticket.CountHistory(domain.ActionStatusChanged))

	// OPEN is not part of the forward chain; the call is a no-op.
	ticket.Status = domain.StatusOpen
	_, err = svc.ChangeStatus(context.Background(), dev, "2024-01-05", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
}

func TestUndoChangeStatus(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)
	deps.Store.PutUser(dev)

	ticket := &domain.Ticket{
		ID:         1,
		Kind:       domain.KindBug,
		Status:     domain.StatusClosed,
		AssignedTo: "dana",
		SolvedAt:   "2024-01-04",
		Bug:        &domain.BugDetails{Frequency: domain.FrequencyRare, Severity: domain.SeverityMinor},
	}
	deps.Store.PutTicket(ticket)

	_, err := svc.UndoChangeStatus(context.Background(), dev, "2024-01-05", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, ticket.Status)
	assert.Empty(t, ticket.SolvedAt)

	_, err = svc.UndoChangeStatus(context.Background(), dev, "2024-01-05", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, ticket.Status)
}

func TestChangeStatusRequiresHolder(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)

	deps.Store.PutTicket(&domain.Ticket{
		ID:         1,
		Kind:       domain.KindBug,
		Status:     domain.StatusInProgress,
		AssignedTo: "omar",
		Bug:        &domain.BugDetails{Frequency: domain.FrequencyRare, Severity: domain.SeverityMinor},
	})

	_, err := svc.ChangeStatus(context.Background(), dev, "2024-01-03", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not assigned to developer dana")
}

func TestViewTicketsScopes(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)

	deps.Store.PutTicket(&domain.Ticket{ID: 1, Kind: domain.KindBug, Status: domain.StatusOpen, ReportedBy: "ana", CreatedAt: "2024-01-02"})
	deps.Store.PutTicket(&domain.Ticket{ID: 2, Kind: domain.KindBug, Status: domain.StatusOpen, ReportedBy: "bob", CreatedAt: "2024-01-01"})
	deps.Store.PutTicket(&domain.Ticket{ID: 3, Kind: domain.KindBug, Status: domain.StatusInProgress, ReportedBy: "ana", CreatedAt: "2024-01-01"})
	deps.Store.AddMilestone(&domain.Milestone{
		Name:         "v1",
		CreatedAt:    "2024-01-03",
		DueDate:      "2024-03-01",
		Tickets:      []int{1, 3},
		AssignedDevs: []string{"dana"},
	})

	manager := &domain.User{Username: "mara", Role: domain.RoleManager}
	all := svc.ViewTickets(manager, "2024-01-03")
	require.Len(t, all, 3)
	// Creation date first, id breaks the tie.
	assert.Equal(t, []int{2, 3, 1}, []int{all[0].ID, all[1].ID, all[2].ID})

	anas := svc.ViewTickets(reporter("ana"), "2024-01-03")
	require.Len(t, anas, 2)

	// Developers see only OPEN tickets of their milestones.
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)
	danas := svc.ViewTickets(dev, "2024-01-03")
	require.Len(t, danas, 1)
	assert.Equal(t, 1, danas[0].ID)
}

func TestViewAssignedTicketsOrder(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)

	deps.Store.PutTicket(&domain.Ticket{ID: 1, Kind: domain.KindBug, Status: domain.StatusInProgress, BusinessPriority: domain.PriorityLow, AssignedTo: "dana"})
	deps.Store.PutTicket(&domain.Ticket{ID: 2, Kind: domain.KindBug, Status: domain.StatusInProgress, BusinessPriority: domain.PriorityHigh, AssignedTo: "dana"})
	deps.Store.PutTicket(&domain.Ticket{ID: 3, Kind: domain.KindBug, Status: domain.StatusInProgress, BusinessPriority: domain.PriorityHigh, AssignedTo: "omar"})

	assigned := svc.ViewAssignedTickets(dev, "2024-01-03")

	require.Len(t, assigned, 2)
	assert.Equal(t, 2, assigned[0].ID)
	assert.Equal(t, 1, assigned[1].ID)
}

func TestViewTicketHistoryIncludesPreviouslyHeld(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	dev := developer("dana", domain.ExpertiseBackend, domain.SeniorityMid)

	previous := &domain.Ticket{ID: 1, Kind: domain.KindBug, Status: domain.StatusOpen, Title: "old one"}
	previous.History = []domain.HistoryEntry{
		{Action: domain.ActionAssigned, By: "dana", Timestamp: "2024-01-02"},
		{Action: domain.ActionDeAssigned, By: "dana", Timestamp: "2024-01-03"},
		{Action: domain.ActionPriorityEscalation, By: domain.SystemActor, Timestamp: "2024-01-03"},
	}
	deps.Store.PutTicket(previous)
	deps.Store.PutTicket(&domain.Ticket{ID: 2, Kind: domain.KindBug, Status: domain.StatusInProgress, Title: "current", AssignedTo: "dana"})

	views := svc.ViewTicketHistory(dev, "2024-01-04")

	require.Len(t, views, 2)
	assert.Equal(t, 1, views[0].ID)
	// SYSTEM escalation bookkeeping stays internal.
	require.Len(t, views[0].Actions, 2)
	assert.Equal(t, domain.ActionAssigned, views[0].Actions[0].Action)
}

func TestCommandsRejectedAfterLostInvestors(t *testing.T) {
	deps := newTestDeps(t)
	svc := NewTicketService(deps)
	deps.Store.SetInvestorsLost()

	_, err := svc.ReportTicket(context.Background(), reporter("ana"), "2024-01-01", bugInput("ana"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no longer accepting commands")
}
