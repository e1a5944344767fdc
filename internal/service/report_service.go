package service

import (
	"sort"
	"strings"

	"github.com/spec-kit/escalation-service/internal/access"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/scoring"
)

// ReportService produces the aggregate views consumed by managers:
// risk, impact, efficiency, stability and developer performance, plus
// ticket and developer search.
type ReportService struct {
	Deps
}

// NewReportService constructs the service.
func NewReportService(deps Deps) *ReportService {
	return &ReportService{Deps: deps}
}

// ReportTotals is the header shared by every ticket report.
type ReportTotals struct {
	TotalTickets      int
	TicketsByType     map[domain.TicketKind]int
	TicketsByPriority map[domain.Priority]int
}

// RiskReport summarizes open work by averaged risk qualifier.
type RiskReport struct {
	ReportTotals
	RiskByType map[domain.TicketKind]scoring.RiskQualifier
}

// ImpactReport summarizes open work by averaged customer impact.
type ImpactReport struct {
	ReportTotals
	ImpactByType map[domain.TicketKind]float64
}

// EfficiencyReport summarizes resolved work by averaged efficiency.
type EfficiencyReport struct {
	ReportTotals
	EfficiencyByType map[domain.TicketKind]float64
}

// StabilityReport combines risk and impact into a single verdict.
type StabilityReport struct {
	ReportTotals
	RiskByType   map[domain.TicketKind]scoring.RiskQualifier
	ImpactByType map[domain.TicketKind]float64
	Stability    string
}

// DeveloperPerformance is one row of the monthly performance report.
type DeveloperPerformance struct {
	Username              string
	Seniority             domain.Seniority
	ClosedTickets         int
	AverageResolutionTime float64
	PerformanceScore      float64
}

func totals(tickets []*domain.Ticket) ReportTotals {
	t := ReportTotals{
		TotalTickets:      len(tickets),
		TicketsByType:     map[domain.TicketKind]int{domain.KindBug: 0, domain.KindFeatureRequest: 0, domain.KindUIFeedback: 0},
		TicketsByPriority: map[domain.Priority]int{domain.PriorityLow: 0, domain.PriorityMedium: 0, domain.PriorityHigh: 0, domain.PriorityCritical: 0},
	}
	for _, ticket := range tickets {
		t.TicketsByType[ticket.Kind]++
		t.TicketsByPriority[ticket.BusinessPriority]++
	}
	return t
}

func (s *ReportService) ticketsWithStatus(statuses ...domain.TicketStatus) []*domain.Ticket {
	var out []*domain.Ticket
	for _, t := range s.Store.Tickets() {
		for _, status := range statuses {
			if t.Status == status {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func riskByType(tickets []*domain.Ticket) map[domain.TicketKind]scoring.RiskQualifier {
	return map[domain.TicketKind]scoring.RiskQualifier{
		domain.KindBug:            scoring.Qualifier(scoring.AverageRisk(tickets, domain.KindBug)),
		domain.KindFeatureRequest: scoring.Qualifier(scoring.AverageRisk(tickets, domain.KindFeatureRequest)),
		domain.KindUIFeedback:     scoring.Qualifier(scoring.AverageRisk(tickets, domain.KindUIFeedback)),
	}
}

func impactByType(tickets []*domain.Ticket) map[domain.TicketKind]float64 {
	return map[domain.TicketKind]float64{
		domain.KindBug:            round2(scoring.AverageImpact(tickets, domain.KindBug)),
		domain.KindFeatureRequest: round2(scoring.AverageImpact(tickets, domain.KindFeatureRequest)),
		domain.KindUIFeedback:     round2(scoring.AverageImpact(tickets, domain.KindUIFeedback)),
	}
}

// TicketRiskReport averages risk over OPEN and IN_PROGRESS tickets and
// maps each type's average to a qualifier.
func (s *ReportService) TicketRiskReport(when string) RiskReport {
	defer s.beginRead(when)()

	eligible := s.ticketsWithStatus(domain.StatusOpen, domain.StatusInProgress)
	return RiskReport{
		ReportTotals: totals(eligible),
		RiskByType:   riskByType(eligible),
	}
}

// CustomerImpactReport averages customer impact over OPEN tickets.
func (s *ReportService) CustomerImpactReport(when string) ImpactReport {
	defer s.beginRead(when)()

	eligible := s.ticketsWithStatus(domain.StatusOpen)
	return ImpactReport{
		ReportTotals: totals(eligible),
		ImpactByType: impactByType(eligible),
	}
}

// ResolutionEfficiencyReport averages resolution efficiency over
// RESOLVED and CLOSED tickets.
func (s *ReportService) ResolutionEfficiencyReport(when string) EfficiencyReport {
	defer s.beginRead(when)()

	eligible := s.ticketsWithStatus(domain.StatusResolved, domain.StatusClosed)
	return EfficiencyReport{
		ReportTotals: totals(eligible),
		EfficiencyByType: map[domain.TicketKind]float64{
			domain.KindBug:            round2(scoring.AverageEfficiency(eligible, domain.KindBug)),
			domain.KindFeatureRequest: round2(scoring.AverageEfficiency(eligible, domain.KindFeatureRequest)),
			domain.KindUIFeedback:     round2(scoring.AverageEfficiency(eligible, domain.KindUIFeedback)),
		},
	}
}

// AppStabilityReport classifies the product as STABLE, PARTIALLY
// STABLE or UNSTABLE from the risk and impact of open work: any
// SIGNIFICANT risk means UNSTABLE; all risks NEGLIGIBLE with feature
// and UI impact both under 50 means STABLE.
func (s *ReportService) AppStabilityReport(when string) StabilityReport {
	defer s.beginRead(when)()

	open := s.ticketsWithStatus(domain.StatusOpen, domain.StatusInProgress)
	risks := riskByType(open)
	impacts := impactByType(open)

	stability := "PARTIALLY STABLE"
	switch {
	case risks[domain.KindBug] == scoring.RiskSignificant ||
		risks[domain.KindFeatureRequest] == scoring.RiskSignificant ||
		risks[domain.KindUIFeedback] == scoring.RiskSignificant:
		stability = "UNSTABLE"
	case risks[domain.KindBug] == scoring.RiskNegligible &&
		risks[domain.KindFeatureRequest] == scoring.RiskNegligible &&
		risks[domain.KindUIFeedback] == scoring.RiskNegligible &&
		impacts[domain.KindFeatureRequest] < 50 &&
		impacts[domain.KindUIFeedback] < 50:
		stability = "STABLE"
	}

	return StabilityReport{
		ReportTotals: totals(open),
		RiskByType:   risks,
		ImpactByType: impacts,
		Stability:    stability,
	}
}

// PerformanceReport scores every subordinate of the manager on the
// tickets they closed in the calendar month before the report date.
// The computed score is stored back on the developer record so later
// searches can filter on it.
func (s *ReportService) PerformanceReport(actor *domain.User, when string) ([]DeveloperPerformance, error) {
	defer s.beginRead(when)()

	if err := requireRole(actor, domain.RoleManager); err != nil {
		return nil, err
	}

	subs := append([]string(nil), actor.Subordinates...)
	sort.Strings(subs)

	tickets := s.Store.Tickets()
	rows := make([]DeveloperPerformance, 0, len(subs))
	for _, username := range subs {
		dev, ok := s.Store.User(username)
		if !ok || !dev.IsDeveloper() {
			continue
		}
		stats := scoring.CollectMonthlyStats(tickets, username, when)
		score := round2(scoring.Performance(dev.Seniority, stats))
		dev.PerformanceScore = score

		rows = append(rows, DeveloperPerformance{
			Username:              username,
			Seniority:             dev.Seniority,
			ClosedTickets:         stats.Closed,
			AverageResolutionTime: round2(stats.AvgDays),
			PerformanceScore:      score,
		})
	}
	return rows, nil
}

// TicketFilters narrows a ticket search. Zero values mean the filter
// is absent.
type TicketFilters struct {
	BusinessPriority       domain.Priority
	Kind                   domain.TicketKind
	CreatedAfter           string
	CreatedBefore          string
	Keywords               []string
	AvailableForAssignment bool
}

// TicketMatch is one ticket search hit, with the keywords that
// matched when a keyword filter was given.
type TicketMatch struct {
	Ticket        *domain.Ticket
	MatchingWords []string
}

// SearchTickets filters the caller's ticket scope: managers see every
// ticket, developers see the OPEN tickets of their milestones. Results
// are sorted by creation date then id.
func (s *ReportService) SearchTickets(actor *domain.User, when string, filters TicketFilters) []TicketMatch {
	defer s.beginRead(when)()

	var scope []*domain.Ticket
	switch actor.Role {
	case domain.RoleManager:
		scope = s.Store.Tickets()
	case domain.RoleDeveloper:
		for _, m := range s.Store.Milestones() {
			if !m.HasDev(actor.Username) {
				continue
			}
			for _, tid := range m.Tickets {
				if t, ok := s.Store.Ticket(tid); ok && t.Status == domain.StatusOpen {
					scope = append(scope, t)
				}
			}
		}
	default:
		return nil
	}

	var matches []TicketMatch
	for _, t := range scope {
		if filters.BusinessPriority != "" && t.BusinessPriority != filters.BusinessPriority {
			continue
		}
		if filters.Kind != "" && t.Kind != filters.Kind {
			continue
		}
		if filters.CreatedAfter != "" && t.CreatedAt <= filters.CreatedAfter {
			continue
		}
		if filters.CreatedBefore != "" && t.CreatedAt >= filters.CreatedBefore {
			continue
		}
		match := TicketMatch{Ticket: t}
		if len(filters.Keywords) > 0 {
			match.MatchingWords = matchingWords(t, filters.Keywords)
			if len(match.MatchingWords) == 0 {
				continue
			}
		}
		if filters.AvailableForAssignment && !s.availableFor(actor, t) {
			continue
		}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Ticket, matches[j].Ticket
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})
	return matches
}

func (s *ReportService) availableFor(actor *domain.User, t *domain.Ticket) bool {
	if actor.Role != domain.RoleDeveloper || t.Status != domain.StatusOpen {
		return false
	}
	m, ok := s.Store.MilestoneForTicket(t.ID)
	if !ok || s.Engine.IsBlocked(m) {
		return false
	}
	return access.CanAssign(actor, t)
}

func matchingWords(t *domain.Ticket, keywords []string) []string {
	text := strings.ToLower(t.Title + " " + t.Description)
	seen := map[string]struct{}{}
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			seen[k] = struct{}{}
		}
	}
	matched := make([]string, 0, len(seen))
	for k := range seen {
		matched = append(matched, k)
	}
	sort.Strings(matched)
	return matched
}

// DeveloperFilters narrows a developer search. The score bounds are
// pointers so zero is a usable threshold.
type DeveloperFilters struct {
	ExpertiseArea         domain.ExpertiseArea
	Seniority             domain.Seniority
	PerformanceScoreAbove *float64
	PerformanceScoreBelow *float64
}

// SearchDevelopers filters the manager's subordinates, sorted by
// username.
func (s *ReportService) SearchDevelopers(actor *domain.User, when string, filters DeveloperFilters) ([]*domain.User, error) {
	defer s.beginRead(when)()

	if err := requireRole(actor, domain.RoleManager); err != nil {
		return nil, err
	}

	var devs []*domain.User
	for _, username := range actor.Subordinates {
		dev, ok := s.Store.User(username)
		if !ok || !dev.IsDeveloper() {
			continue
		}
		if filters.ExpertiseArea != "" && dev.ExpertiseArea != filters.ExpertiseArea {
			continue
		}
		if filters.Seniority != "" && dev.Seniority != filters.Seniority {
			continue
		}
		if filters.PerformanceScoreAbove != nil && dev.PerformanceScore <= *filters.PerformanceScoreAbove {
			continue
		}
		if filters.PerformanceScoreBelow != nil && dev.PerformanceScore >= *filters.PerformanceScoreBelow {
			continue
		}
		devs = append(devs, dev)
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].Username < devs[j].Username })
	return devs, nil
}

// LostInvestors records that investors have pulled out. Every command
// after this point is rejected.
func (s *ReportService) LostInvestors(when string) error {
	release, err := s.begin(when)
	if err != nil {
		return err
	}
	defer release()
	s.Store.SetInvestorsLost()
	return nil
}
