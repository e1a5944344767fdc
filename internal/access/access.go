// Package access holds the eligibility predicate deciding whether a
// developer may hold a ticket. The same predicate backs the assignment
// command and the escalation engine's post-bump re-check.
package access

import (
	"github.com/spec-kit/escalation-service/internal/domain"
)

// CanAssign reports whether the developer's expertise covers the
// ticket's area and their seniority clears the priority gate.
func CanAssign(dev *domain.User, ticket *domain.Ticket) bool {
	if dev == nil || ticket == nil || !dev.IsDeveloper() {
		return false
	}
	return ExpertiseMatch(dev.ExpertiseArea, ticket.ExpertiseArea) &&
		SeniorityMatch(dev.Seniority, ticket.BusinessPriority)
}

// ExpertiseMatch implements the compatibility matrix: FULLSTACK covers
// everything, BACKEND covers BACKEND and DB, FRONTEND covers FRONTEND
// and DESIGN, DEVOPS covers only DEVOPS, anything else must match
// exactly.
func ExpertiseMatch(dev, ticket domain.ExpertiseArea) bool {
	if dev == domain.ExpertiseFullstack {
		return true
	}
	if dev == ticket {
		return true
	}
	switch dev {
	case domain.ExpertiseBackend:
		return ticket == domain.ExpertiseDB
	case domain.ExpertiseFrontend:
		return ticket == domain.ExpertiseDesign
	}
	return false
}

// SeniorityMatch gates priority tiers: CRITICAL needs SENIOR, HIGH
// needs MID or SENIOR, everything else passes.
func SeniorityMatch(s domain.Seniority, p domain.Priority) bool {
	switch p {
	case domain.PriorityCritical:
		return s == domain.SenioritySenior
	case domain.PriorityHigh:
		return s == domain.SeniorityMid || s == domain.SenioritySenior
	default:
		return true
	}
}

// RequiredSeniority renders the seniority levels accepted for the
// ticket's priority, for permission-denied messages.
func RequiredSeniority(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return "SENIOR"
	case domain.PriorityHigh:
		return "MID, SENIOR"
	default:
		return "JUNIOR, MID, SENIOR"
	}
}

// RequiredExpertise renders the expertise areas accepted for the
// ticket's area, for permission-denied messages.
func RequiredExpertise(area domain.ExpertiseArea) string {
	switch area {
	case domain.ExpertiseDB, domain.ExpertiseBackend:
		return "BACKEND, DB, FULLSTACK"
	case domain.ExpertiseDesign, domain.ExpertiseFrontend:
		return "DESIGN, FRONTEND, FULLSTACK"
	case domain.ExpertiseDevOps:
		return "DEVOPS, FULLSTACK"
	default:
		return string(area) + ", FULLSTACK"
	}
}
