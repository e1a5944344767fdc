package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/scoring"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// ReportsHandler serves the manager-facing aggregate reports and the
// ticket/developer search endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

func totalsResponse(t service.ReportTotals) dto.ReportTotalsResponse {
	byType := make(map[string]int, len(t.TicketsByType))
	for kind, n := range t.TicketsByType {
		byType[string(kind)] = n
	}
	byPriority := make(map[string]int, len(t.TicketsByPriority))
	for p, n := range t.TicketsByPriority {
		byPriority[string(p)] = n
	}
	return dto.ReportTotalsResponse{
		TotalTickets:      t.TotalTickets,
		TicketsByType:     byType,
		TicketsByPriority: byPriority,
	}
}

func qualifierMap(m map[domain.TicketKind]scoring.RiskQualifier) map[string]string {
	out := make(map[string]string, len(m))
	for kind, q := range m {
		out[string(kind)] = string(q)
	}
	return out
}

func scoreMap(m map[domain.TicketKind]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for kind, v := range m {
		out[string(kind)] = v
	}
	return out
}

// RiskReport GET /reports/risk.
func (h *ReportsHandler) RiskReport(c *fiber.Ctx) error {
	report := h.reports.TicketRiskReport(requestDate(c))
	return c.JSON(fiber.Map{"data": dto.RiskReportResponse{
		ReportTotalsResponse: totalsResponse(report.ReportTotals),
		RiskByType:           qualifierMap(report.RiskByType),
	}})
}

// CustomerImpactReport GET /reports/customer-impact.
func (h *ReportsHandler) CustomerImpactReport(c *fiber.Ctx) error {
	report := h.reports.CustomerImpactReport(requestDate(c))
	return c.JSON(fiber.Map{"data": dto.ImpactReportResponse{
		ReportTotalsResponse: totalsResponse(report.ReportTotals),
		CustomerImpactByType: scoreMap(report.ImpactByType),
	}})
}

// ResolutionEfficiencyReport GET /reports/resolution-efficiency.
func (h *ReportsHandler) ResolutionEfficiencyReport(c *fiber.Ctx) error {
	report := h.reports.ResolutionEfficiencyReport(requestDate(c))
	return c.JSON(fiber.Map{"data": dto.EfficiencyReportResponse{
		ReportTotalsResponse: totalsResponse(report.ReportTotals),
		EfficiencyByType:     scoreMap(report.EfficiencyByType),
	}})
}

// StabilityReport GET /reports/stability.
func (h *ReportsHandler) StabilityReport(c *fiber.Ctx) error {
	report := h.reports.AppStabilityReport(requestDate(c))
	return c.JSON(fiber.Map{"data": dto.StabilityReportResponse{
		ReportTotalsResponse: totalsResponse(report.ReportTotals),
		RiskByType:           qualifierMap(report.RiskByType),
		ImpactByType:         scoreMap(report.ImpactByType),
		AppStability:         report.Stability,
	}})
}

// PerformanceReport GET /reports/performance.
func (h *ReportsHandler) PerformanceReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	rows, err := h.reports.PerformanceReport(principal, requestDate(c))
	if err != nil {
		return err
	}
	items := make([]dto.PerformanceRowResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.PerformanceRowResponse{
			Username:              row.Username,
			Seniority:             string(row.Seniority),
			ClosedTickets:         row.ClosedTickets,
			AverageResolutionTime: row.AverageResolutionTime,
			PerformanceScore:      row.PerformanceScore,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// SearchTickets GET /search/tickets.
func (h *ReportsHandler) SearchTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	filters := service.TicketFilters{
		BusinessPriority: domain.Priority(c.Query("businessPriority")),
		Kind:             domain.TicketKind(c.Query("type")),
		CreatedAfter:     c.Query("createdAfter"),
		CreatedBefore:    c.Query("createdBefore"),
	}
	if kw := c.Query("keywords"); kw != "" {
		for _, part := range strings.Split(kw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filters.Keywords = append(filters.Keywords, part)
			}
		}
	}
	if avail := c.Query("availableForAssignment"); avail != "" {
		filters.AvailableForAssignment, _ = strconv.ParseBool(avail)
	}

	matches := h.reports.SearchTickets(principal, requestDate(c), filters)
	items := make([]dto.TicketSearchResult, 0, len(matches))
	for _, m := range matches {
		items = append(items, dto.TicketSearchResult{
			TicketSummary: ticketSummary(m.Ticket),
			MatchingWords: m.MatchingWords,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// SearchDevelopers GET /search/developers.
func (h *ReportsHandler) SearchDevelopers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	filters := service.DeveloperFilters{
		ExpertiseArea: domain.ExpertiseArea(c.Query("expertiseArea")),
		Seniority:     domain.Seniority(c.Query("seniority")),
	}
	if raw := c.Query("performanceScoreAbove"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.PerformanceScoreAbove = &v
		}
	}
	if raw := c.Query("performanceScoreBelow"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filters.PerformanceScoreBelow = &v
		}
	}

	devs, err := h.reports.SearchDevelopers(principal, requestDate(c), filters)
	if err != nil {
		return err
	}
	items := make([]dto.DeveloperResponse, 0, len(devs))
	for _, dev := range devs {
		items = append(items, dto.DeveloperResponse{
			Username:         dev.Username,
			ExpertiseArea:    string(dev.ExpertiseArea),
			Seniority:        string(dev.Seniority),
			PerformanceScore: dev.PerformanceScore,
			HireDate:         dev.HireDate,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// LostInvestors POST /admin/lost-investors.
func (h *ReportsHandler) LostInvestors(c *fiber.Ctx) error {
	if err := h.reports.LostInvestors(requestDate(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusAccepted)
}
