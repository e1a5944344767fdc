// Package scoring computes normalized risk, customer impact and
// resolution efficiency scores for tickets, plus developer performance.
// Everything here is a pure function over the ticket data; nothing is
// mutated and no clock is consulted beyond the ticket's own history.
package scoring

import (
	"math"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// RiskQualifier buckets an average risk score.
type RiskQualifier string

const (
	RiskNegligible  RiskQualifier = "NEGLIGIBLE"
	RiskModerate    RiskQualifier = "MODERATE"
	RiskSignificant RiskQualifier = "SIGNIFICANT"
	RiskMajor       RiskQualifier = "MAJOR"
)

// normalize scales base against max into [0, 100].
func normalize(base, max float64) float64 {
	if max == 0 {
		return 0
	}
	return math.Min(100, base*100/max)
}

// Risk returns the normalized risk score for a ticket.
func Risk(t *domain.Ticket) float64 {
	switch t.Kind {
	case domain.KindBug:
		if t.Bug == nil {
			return 0
		}
		return normalize(t.Bug.Frequency.Weight()*t.Bug.Severity.Weight(), 12)
	case domain.KindFeatureRequest:
		if t.Feature == nil {
			return 0
		}
		return normalize(t.Feature.BusinessValue.Weight()+t.Feature.CustomerDemand.Weight(), 20)
	case domain.KindUIFeedback:
		if t.UIFeedback == nil {
			return 0
		}
		return normalize((11-float64(t.UIFeedback.UsabilityScore))*t.UIFeedback.BusinessValue.Weight(), 100)
	}
	return 0
}

// Impact returns the normalized customer impact score for a ticket.
func Impact(t *domain.Ticket) float64 {
	switch t.Kind {
	case domain.KindBug:
		if t.Bug == nil {
			return 0
		}
		base := t.Bug.Frequency.Weight() * float64(t.BusinessPriority.Rank()) * t.Bug.Severity.Weight()
		return normalize(base, 48)
	case domain.KindFeatureRequest:
		if t.Feature == nil {
			return 0
		}
		return normalize(t.Feature.BusinessValue.Weight()*t.Feature.CustomerDemand.Weight(), 100)
	case domain.KindUIFeedback:
		if t.UIFeedback == nil {
			return 0
		}
		return normalize(t.UIFeedback.BusinessValue.Weight()*float64(t.UIFeedback.UsabilityScore), 100)
	}
	return 0
}

// Efficiency returns the normalized resolution efficiency score. A
// ticket that was never resolved, or whose resolution window does not
// parse to a positive day count, scores zero.
func Efficiency(t *domain.Ticket) float64 {
	days := DaysToResolve(t)
	if days <= 0 {
		return 0
	}
	d := float64(days)
	switch t.Kind {
	case domain.KindBug:
		if t.Bug == nil {
			return 0
		}
		base := (t.Bug.Frequency.Weight() + t.Bug.Severity.Weight()) * 10 / d
		return normalize(base, 70)
	case domain.KindFeatureRequest:
		if t.Feature == nil {
			return 0
		}
		base := (t.Feature.BusinessValue.Weight() + t.Feature.CustomerDemand.Weight()) / d
		return normalize(base, 20)
	case domain.KindUIFeedback:
		if t.UIFeedback == nil {
			return 0
		}
		base := (float64(t.UIFeedback.UsabilityScore) + t.UIFeedback.BusinessValue.Weight()) / d
		return normalize(base, 20)
	}
	return 0
}

// DaysToResolve derives the inclusive day span between assignment and
// the last STATUS_CHANGED history entry landing on RESOLVED or CLOSED.
// Returns zero when the ticket was never assigned or never resolved.
func DaysToResolve(t *domain.Ticket) int {
	if t.AssignedAt == "" {
		return 0
	}
	resolved := ""
	for _, entry := range t.History {
		if entry.Action != domain.ActionStatusChanged {
			continue
		}
		if entry.To == string(domain.StatusResolved) || entry.To == string(domain.StatusClosed) {
			resolved = entry.Timestamp
		}
	}
	if resolved == "" {
		return 0
	}
	days, err := domain.DaysBetween(t.AssignedAt, resolved)
	if err != nil {
		return 0
	}
	return days + 1
}

// AverageRisk averages the risk score over tickets of the given kind.
// An empty selection averages to zero.
func AverageRisk(tickets []*domain.Ticket, kind domain.TicketKind) float64 {
	return averageByKind(tickets, kind, Risk)
}

// AverageImpact averages the impact score over tickets of the given kind.
func AverageImpact(tickets []*domain.Ticket, kind domain.TicketKind) float64 {
	return averageByKind(tickets, kind, Impact)
}

// AverageEfficiency averages the efficiency score over tickets of the
// given kind.
func AverageEfficiency(tickets []*domain.Ticket, kind domain.TicketKind) float64 {
	return averageByKind(tickets, kind, Efficiency)
}

func averageByKind(tickets []*domain.Ticket, kind domain.TicketKind, score func(*domain.Ticket) float64) float64 {
	sum, n := 0.0, 0
	for _, t := range tickets {
		if t.Kind != kind {
			continue
		}
		sum += score(t)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Qualifier maps an average risk score to its qualifier.
func Qualifier(riskAvg float64) RiskQualifier {
	switch {
	case riskAvg <= 24:
		return RiskNegligible
	case riskAvg <= 49:
		return RiskModerate
	case riskAvg <= 74:
		return RiskSignificant
	default:
		return RiskMajor
	}
}
