package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Milestones     *handlers.MilestonesHandler
	Reports        *handlers.ReportsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	tickets := api.Group("/tickets")
	tickets.Post("", auth.RequireRole(domain.RoleReporter), cfg.Tickets.ReportTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/assigned", auth.RequireRole(domain.RoleDeveloper), cfg.Tickets.ListAssignedTickets)
	tickets.Get("/history", cfg.Tickets.TicketHistory)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id/comments", cfg.Tickets.UndoAddComment)
	tickets.Post("/:id/status", auth.RequireRole(domain.RoleDeveloper), cfg.Tickets.ChangeStatus)
	tickets.Delete("/:id/status", auth.RequireRole(domain.RoleDeveloper), cfg.Tickets.UndoChangeStatus)
	tickets.Post("/:id/assignment", auth.RequireRole(domain.RoleDeveloper), cfg.Tickets.AssignTicket)
	tickets.Delete("/:id/assignment", auth.RequireRole(domain.RoleDeveloper), cfg.Tickets.UndoAssignTicket)

	milestones := api.Group("/milestones")
	milestones.Post("", auth.RequireRole(domain.RoleManager), cfg.Milestones.CreateMilestone)
	milestones.Get("", cfg.Milestones.ListMilestones)

	reports := api.Group("/reports", auth.RequireRole(domain.RoleManager))
	reports.Get("/risk", cfg.Reports.RiskReport)
	reports.Get("/customer-impact", cfg.Reports.CustomerImpactReport)
	reports.Get("/resolution-efficiency", cfg.Reports.ResolutionEfficiencyReport)
	reports.Get("/stability", cfg.Reports.StabilityReport)
	reports.Get("/performance", cfg.Reports.PerformanceReport)

	search := api.Group("/search")
	search.Get("/tickets", cfg.Reports.SearchTickets)
	search.Get("/developers", auth.RequireRole(domain.RoleManager), cfg.Reports.SearchDevelopers)

	api.Get("/notifications", cfg.Notifications.ListNotifications)

	api.Post("/admin/lost-investors", auth.RequireRole(domain.RoleManager), cfg.Reports.LostInvestors)
}
