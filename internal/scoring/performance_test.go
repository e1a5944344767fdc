package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-service/internal/domain"
)

func closedTicket(kind domain.TicketKind, priority domain.Priority, assignee, assignedAt, solvedAt string) *domain.Ticket {
	return &domain.Ticket{
		Kind:             kind,
		Status:           domain.StatusClosed,
		BusinessPriority: priority,
		AssignedTo:       assignee,
		AssignedAt:       assignedAt,
		SolvedAt:         solvedAt,
	}
}

func TestCollectMonthlyStats(t *testing.T) {
	tickets := []*domain.Ticket{
		closedTicket(domain.KindBug, domain.PriorityHigh, "dana", "2024-01-10", "2024-01-12"),
		closedTicket(domain.KindFeatureRequest, domain.PriorityLow, "dana", "2024-01-05", "2024-01-08"),
		// Wrong month.
		closedTicket(domain.KindBug, domain.PriorityHigh, "dana", "2023-12-01", "2023-12-03"),
		// Wrong developer.
		closedTicket(domain.KindBug, domain.PriorityHigh, "omar", "2024-01-10", "2024-01-12"),
		// Still open.
		{Kind: domain.KindBug, Status: domain.StatusInProgress, AssignedTo: "dana", AssignedAt: "2024-01-20"},
	}

	stats := CollectMonthlyStats(tickets, "dana", "2024-02-15")

	assert.Equal(t, 2, stats.Closed)
	assert.Equal(t, 1, stats.HighPriority)
	// (3 + 4) / 2 inclusive days.
	assert.InDelta(t, 3.5, stats.AvgDays, 1e-9)
	assert.Equal(t, 1, stats.BugCount)
	assert.Equal(t, 1, stats.FeatureCount)
	assert.Equal(t, 0, stats.UICount)
}

func TestPerformanceZeroWithoutClosedTickets(t *testing.T) {
	assert.Equal(t, 0.0, Performance(domain.SenioritySenior, MonthlyStats{}))
}

func TestPerformanceJunior(t *testing.T) {
	stats := MonthlyStats{Closed: 6, BugCount: 2, FeatureCount: 2, UICount: 2}

	// Perfectly even diet: no diversity penalty, 0.5*6 + 5.
	assert.InDelta(t, 8.0, Performance(domain.SeniorityJunior, stats), 1e-9)
}

func TestPerformanceJuniorLopsidedDiet(t *testing.T) {
	even := Performance(domain.SeniorityJunior, MonthlyStats{Closed: 6, BugCount: 2, FeatureCount: 2, UICount: 2})
	lopsided := Performance(domain.SeniorityJunior, MonthlyStats{Closed: 6, BugCount: 6})

	assert.Less(t, lopsided, even)
}

func TestPerformanceMid(t *testing.T) {
	stats := MonthlyStats{Closed: 10, HighPriority: 4, AvgDays: 5}

	// 0.5*10 + 0.7*4 - 0.3*5 + 15.
	assert.InDelta(t, 21.3, Performance(domain.SeniorityMid, stats), 1e-9)
}

func TestPerformanceSenior(t *testing.T) {
	stats := MonthlyStats{Closed: 10, HighPriority: 4, AvgDays: 5}

	// 0.5*10 + 1.0*4 - 0.5*5 + 30.
	assert.InDelta(t, 36.5, Performance(domain.SenioritySenior, stats), 1e-9)
}

func TestPerformanceFormulaFloorsAtBonus(t *testing.T) {
	stats := MonthlyStats{Closed: 1, AvgDays: 40}

	// The negative raw formula clamps to zero, leaving the bonus.
	assert.InDelta(t, 15.0, Performance(domain.SeniorityMid, stats), 1e-9)
}
