package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/notify"
	"github.com/spec-kit/escalation-service/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *notify.MemoryMailbox) {
	t.Helper()
	st := store.New()
	mailbox := notify.NewMemoryMailbox()
	return New(st, mailbox, nil, zap.NewNop()), st, mailbox
}

func bugTicket(id int, priority domain.Priority) *domain.Ticket {
	return &domain.Ticket{
		ID:               id,
		Kind:             domain.KindBug,
		Title:            "login fails",
		Status:           domain.StatusOpen,
		BusinessPriority: priority,
		ExpertiseArea:    domain.ExpertiseBackend,
		CreatedAt:        "2024-01-01",
		Bug: &domain.BugDetails{
			Frequency: domain.FrequencyOccasional,
			Severity:  domain.SeverityModerate,
		},
	}
}

func TestAdvancePeriodicEscalation(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityLow)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-10",
		Tickets:   []int{1},
	})

	eng.Advance("2024-01-04")

	assert.Equal(t, domain.PriorityMedium, ticket.BusinessPriority)
	assert.Equal(t, 1, ticket.CountHistory(domain.ActionPriorityEscalation))
}

func TestAdvanceIdempotent(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityLow)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-20",
		Tickets:   []int{1},
	})

	eng.Advance("2024-01-04")
	entries := len(ticket.History)
	priority := ticket.BusinessPriority

	eng.Advance("2024-01-04")

	assert.Equal(t, entries, len(ticket.History))
	assert.Equal(t, priority, ticket.BusinessPriority)
}

func TestAdvanceCatchesUpSkippedDays(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityLow)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-02-01",
		Tickets:   []int{1},
	})

	// Nine elapsed days earn three escalations in one tick, capped at
	// CRITICAL.
	eng.Advance("2024-01-09")

	assert.Equal(t, domain.PriorityCritical, ticket.BusinessPriority)
	assert.Equal(t, 3, ticket.CountHistory(domain.ActionPriorityEscalation))
}

func TestPriorityMonotonicity(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityLow)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-03-01",
		Tickets:   []int{1},
	})

	rank := ticket.BusinessPriority.Rank()
	for _, day := range []string{"2024-01-02", "2024-01-04", "2024-01-04", "2024-01-07", "2024-01-15", "2024-01-20"} {
		eng.Advance(day)
		next := ticket.BusinessPriority.Rank()
		assert.GreaterOrEqual(t, next, rank, "priority decreased on %s", day)
		rank = next
	}
}

func TestDeadlineImminentEscalation(t *testing.T) {
	eng, st, mailbox := newTestEngine(t)

	junior := &domain.User{
		Username:      "dana",
		Role:          domain.RoleDeveloper,
		ExpertiseArea: domain.ExpertiseBackend,
		Seniority:     domain.SeniorityJunior,
	}
	st.PutUser(junior)

	ticket := bugTicket(1, domain.PriorityHigh)
	ticket.Status = domain.StatusInProgress
	ticket.AssignedTo = "dana"
	ticket.AssignedAt = "2024-01-08"
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:         "v1",
		CreatedAt:    "2024-01-08",
		DueDate:      "2024-01-10",
		Tickets:      []int{1},
		AssignedDevs: []string{"dana"},
	})

	eng.Advance("2024-01-09")

	assert.Equal(t, domain.PriorityCritical, ticket.BusinessPriority)
	assert.Equal(t, 1, ticket.CountHistory(domain.ActionDeadlineImminentEscalation))

	// CRITICAL requires SENIOR, so the junior loses the ticket.
	assert.Empty(t, ticket.AssignedTo)
	assert.Empty(t, ticket.AssignedAt)
	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, 1, ticket.CountHistory(domain.ActionAutoUnassign))

	require.Len(t, mailbox.Messages("dana"), 1)
	assert.Contains(t, mailbox.Messages("dana")[0], "due tomorrow")
}

func TestDeadlineImminentFiresOnce(t *testing.T) {
	eng, st, mailbox := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityMedium)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:         "v1",
		CreatedAt:    "2024-01-08",
		DueDate:      "2024-01-10",
		Tickets:      []int{1},
		AssignedDevs: []string{"dana"},
	})

	eng.Advance("2024-01-09")
	eng.Advance("2024-01-09")

	assert.Equal(t, 1, ticket.CountHistory(domain.ActionDeadlineImminentEscalation))
	assert.Len(t, mailbox.Messages("dana"), 1)
}

func TestBlockedMilestoneSuspendsEscalation(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	blocker := bugTicket(1, domain.PriorityLow)
	st.PutTicket(blocker)
	st.AddMilestone(&domain.Milestone{
		Name:      "m1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-20",
		Tickets:   []int{1},
	})

	blocked := bugTicket(2, domain.PriorityLow)
	blocked.Status = domain.StatusInProgress
	blocked.AssignedTo = "dana"
	st.PutTicket(blocked)
	st.AddMilestone(&domain.Milestone{
		Name:      "m2",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-20",
		Tickets:   []int{2},
		DependsOn: []string{"m1"},
	})

	eng.Advance("2024-01-06")

	assert.Equal(t, domain.StatusBlocked, blocked.Status)
	assert.Equal(t, 0, blocked.CountHistory(domain.ActionPriorityEscalation))
	assert.Equal(t, 1, blocked.CountHistory(domain.ActionMilestoneBlocked))
}

func TestBlockedRoundTrip(t *testing.T) {
	eng, st, mailbox := newTestEngine(t)

	blocker := bugTicket(1, domain.PriorityLow)
	st.PutTicket(blocker)
	st.AddMilestone(&domain.Milestone{
		Name:      "m1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-20",
		Tickets:   []int{1},
	})

	assigned := bugTicket(2, domain.PriorityLow)
	assigned.Status = domain.StatusInProgress
	assigned.AssignedTo = "dana"
	st.PutTicket(assigned)
	unassigned := bugTicket(3, domain.PriorityLow)
	st.PutTicket(unassigned)
	st.AddMilestone(&domain.Milestone{
		Name:         "m2",
		CreatedAt:    "2024-01-01",
		DueDate:      "2024-01-20",
		Tickets:      []int{2, 3},
		AssignedDevs: []string{"dana"},
		DependsOn:    []string{"m1"},
	})

	eng.Advance("2024-01-02")
	require.Equal(t, domain.StatusBlocked, assigned.Status)
	require.Equal(t, domain.StatusBlocked, unassigned.Status)

	blocker.Status = domain.StatusClosed
	eng.Advance("2024-01-03")

	assert.Equal(t, domain.StatusInProgress, assigned.Status)
	assert.Equal(t, domain.StatusOpen, unassigned.Status)
	assert.False(t, eng.IsBlocked(mustMilestone(t, st, "m2")))
	require.Len(t, mailbox.Messages("dana"), 1)
	assert.Contains(t, mailbox.Messages("dana")[0], "was unblocked")
}

func TestLateUnblockEscalatesOnce(t *testing.T) {
	eng, st, mailbox := newTestEngine(t)

	blocker := bugTicket(1, domain.PriorityLow)
	st.PutTicket(blocker)
	st.AddMilestone(&domain.Milestone{
		Name:      "m1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-03",
		Tickets:   []int{1},
	})

	late := bugTicket(2, domain.PriorityLow)
	st.PutTicket(late)
	closed := bugTicket(3, domain.PriorityLow)
	closed.Status = domain.StatusClosed
	st.PutTicket(closed)
	st.AddMilestone(&domain.Milestone{
		Name:         "m2",
		CreatedAt:    "2024-01-01",
		DueDate:      "2024-01-05",
		Tickets:      []int{2, 3},
		AssignedDevs: []string{"dana"},
		DependsOn:    []string{"m1"},
	})

	eng.Advance("2024-01-02")
	require.Equal(t, domain.StatusBlocked, late.Status)

	blocker.Status = domain.StatusClosed
	eng.Advance("2024-01-08")

	assert.Equal(t, domain.PriorityCritical, late.BusinessPriority)
	assert.Equal(t, 1, late.CountHistory(domain.ActionLateUnblockEscalation))
	assert.Equal(t, domain.StatusOpen, late.Status)
	assert.Equal(t, domain.PriorityLow, closed.BusinessPriority)

	require.Len(t, mailbox.Messages("dana"), 1)
	assert.Contains(t, mailbox.Messages("dana")[0], "unblocked after due date")

	eng.Advance("2024-01-08")
	assert.Equal(t, 1, late.CountHistory(domain.ActionLateUnblockEscalation))
}

func TestAdvanceSkipsUnparseableDates(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	ticket := bugTicket(1, domain.PriorityLow)
	st.PutTicket(ticket)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "not-a-date",
		DueDate:   "2024-01-10",
		Tickets:   []int{1},
	})

	eng.Advance("garbage")
	eng.Advance("2024-01-09")

	assert.Equal(t, domain.PriorityLow, ticket.BusinessPriority)
	assert.Empty(t, ticket.History)
}

func TestAdvanceSkipsMissingTickets(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-10",
		Tickets:   []int{99},
	})

	assert.NotPanics(t, func() { eng.Advance("2024-01-09") })
}

func TestClosedAndResolvedNeverTouched(t *testing.T) {
	eng, st, _ := newTestEngine(t)

	resolved := bugTicket(1, domain.PriorityLow)
	resolved.Status = domain.StatusResolved
	st.PutTicket(resolved)
	closed := bugTicket(2, domain.PriorityLow)
	closed.Status = domain.StatusClosed
	st.PutTicket(closed)
	st.AddMilestone(&domain.Milestone{
		Name:      "v1",
		CreatedAt: "2024-01-01",
		DueDate:   "2024-01-10",
		Tickets:   []int{1, 2},
	})

	eng.Advance("2024-01-09")

	assert.Equal(t, domain.PriorityLow, resolved.BusinessPriority)
	assert.Equal(t, domain.PriorityLow, closed.BusinessPriority)
	assert.Empty(t, resolved.History)
	assert.Empty(t, closed.History)
}

func mustMilestone(t *testing.T, st *store.Store, name string) *domain.Milestone {
	t.Helper()
	m, ok := st.Milestone(name)
	require.True(t, ok)
	return m
}
