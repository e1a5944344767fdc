package scoring

import (
	"math"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// MonthlyStats aggregates a developer's closed tickets for one
// calendar month.
type MonthlyStats struct {
	Closed       int
	HighPriority int
	AvgDays      float64
	BugCount     int
	FeatureCount int
	UICount      int
}

// CollectMonthlyStats gathers the tickets the developer closed in the
// calendar month preceding reportDate. Tickets with unparseable
// assignment or solve dates are skipped.
func CollectMonthlyStats(tickets []*domain.Ticket, username, reportDate string) MonthlyStats {
	var stats MonthlyStats
	now, err := domain.ParseDate(reportDate)
	if err != nil {
		return stats
	}
	prev := now.AddDate(0, -1, 0)

	sumDays := 0
	for _, t := range tickets {
		if t.AssignedTo != username || t.Status != domain.StatusClosed || t.SolvedAt == "" {
			continue
		}
		solved, err := domain.ParseDate(t.SolvedAt)
		if err != nil {
			continue
		}
		if solved.Year() != prev.Year() || solved.Month() != prev.Month() {
			continue
		}
		days, err := domain.DaysBetween(t.AssignedAt, t.SolvedAt)
		if err != nil {
			continue
		}
		stats.Closed++
		sumDays += days + 1
		if t.BusinessPriority == domain.PriorityHigh || t.BusinessPriority == domain.PriorityCritical {
			stats.HighPriority++
		}
		switch t.Kind {
		case domain.KindBug:
			stats.BugCount++
		case domain.KindFeatureRequest:
			stats.FeatureCount++
		case domain.KindUIFeedback:
			stats.UICount++
		}
	}
	if stats.Closed > 0 {
		stats.AvgDays = float64(sumDays) / float64(stats.Closed)
	}
	return stats
}

// Performance computes the monthly performance score for a developer of
// the given seniority. A month with no closed tickets scores zero,
// bonus included.
func Performance(s domain.Seniority, stats MonthlyStats) float64 {
	if stats.Closed == 0 {
		return 0
	}
	closed := float64(stats.Closed)
	highPri := float64(stats.HighPriority)

	switch s {
	case domain.SeniorityJunior:
		diversity := diversityFactor(stats.BugCount, stats.FeatureCount, stats.UICount)
		return math.Max(0, 0.5*closed-diversity) + 5
	case domain.SeniorityMid:
		return math.Max(0, 0.5*closed+0.7*highPri-0.3*stats.AvgDays) + 15
	case domain.SenioritySenior:
		return math.Max(0, 0.5*closed+1.0*highPri-0.5*stats.AvgDays) + 30
	}
	return 0
}

// diversityFactor is the coefficient of variation of the per-kind
// closed counts. Juniors are penalized for lopsided ticket diets.
func diversityFactor(bug, feature, ui int) float64 {
	mean := float64(bug+feature+ui) / 3
	if mean == 0 {
		return 0
	}
	variance := (math.Pow(float64(bug)-mean, 2) +
		math.Pow(float64(feature)-mean, 2) +
		math.Pow(float64(ui)-mean, 2)) / 3
	return math.Sqrt(variance) / mean
}
