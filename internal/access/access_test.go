package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/escalation-service/internal/domain"
)

func TestExpertiseMatch(t *testing.T) {
	cases := []struct {
		dev    domain.ExpertiseArea
		ticket domain.ExpertiseArea
		want   bool
	}{
		{domain.ExpertiseFullstack, domain.ExpertiseBackend, true},
		{domain.ExpertiseFullstack, domain.ExpertiseDevOps, true},
		{domain.ExpertiseBackend, domain.ExpertiseBackend, true},
		{domain.ExpertiseBackend, domain.ExpertiseDB, true},
		{domain.ExpertiseBackend, domain.ExpertiseFrontend, false},
		{domain.ExpertiseFrontend, domain.ExpertiseDesign, true},
		{domain.ExpertiseFrontend, domain.ExpertiseDB, false},
		{domain.ExpertiseDevOps, domain.ExpertiseDevOps, true},
		{domain.ExpertiseDevOps, domain.ExpertiseBackend, false},
		{domain.ExpertiseDB, domain.ExpertiseDB, true},
		{domain.ExpertiseDB, domain.ExpertiseBackend, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExpertiseMatch(tc.dev, tc.ticket),
			"dev %s vs ticket %s", tc.dev, tc.ticket)
	}
}

func TestSeniorityMatch(t *testing.T) {
	cases := []struct {
		seniority domain.Seniority
		priority  domain.Priority
		want      bool
	}{
		{domain.SeniorityJunior, domain.PriorityLow, true},
		{domain.SeniorityJunior, domain.PriorityMedium, true},
		{domain.SeniorityJunior, domain.PriorityHigh, false},
		{domain.SeniorityJunior, domain.PriorityCritical, false},
		{domain.SeniorityMid, domain.PriorityHigh, true},
		{domain.SeniorityMid, domain.PriorityCritical, false},
		{domain.SenioritySenior, domain.PriorityHigh, true},
		{domain.SenioritySenior, domain.PriorityCritical, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SeniorityMatch(tc.seniority, tc.priority),
			"%s holding %s", tc.seniority, tc.priority)
	}
}

func TestCanAssign(t *testing.T) {
	ticket := &domain.Ticket{
		ExpertiseArea:    domain.ExpertiseBackend,
		BusinessPriority: domain.PriorityHigh,
	}

	mid := &domain.User{
		Role:          domain.RoleDeveloper,
		ExpertiseArea: domain.ExpertiseBackend,
		Seniority:     domain.SeniorityMid,
	}
	assert.True(t, CanAssign(mid, ticket))

	junior := &domain.User{
		Role:          domain.RoleDeveloper,
		ExpertiseArea: domain.ExpertiseBackend,
		Seniority:     domain.SeniorityJunior,
	}
	assert.False(t, CanAssign(junior, ticket))

	manager := &domain.User{
		Role:          domain.RoleManager,
		ExpertiseArea: domain.ExpertiseBackend,
		Seniority:     domain.SenioritySenior,
	}
	assert.False(t, CanAssign(manager, ticket))

	assert.False(t, CanAssign(nil, ticket))
	assert.False(t, CanAssign(mid, nil))
}
