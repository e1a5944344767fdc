package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/domain"
)

// requestDate resolves the logical date of a command. Clients replaying
// recorded traffic pass ?date=YYYY-MM-DD; live traffic defaults to the
// wall clock.
func requestDate(c *fiber.Ctx) string {
	if date := c.Query("date"); date != "" {
		return date
	}
	return time.Now().Format(domain.DateLayout)
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:               t.ID,
		Type:             string(t.Kind),
		Title:            t.Title,
		Status:           string(t.Status),
		BusinessPriority: string(t.BusinessPriority),
		ExpertiseArea:    string(t.ExpertiseArea),
		ReportedBy:       t.ReportedBy,
		CreatedAt:        t.CreatedAt,
		AssignedTo:       t.AssignedTo,
		SolvedAt:         t.SolvedAt,
		Milestone:        t.Milestone,
	}
}

func historyEntryResponse(e domain.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		Action:      string(e.Action),
		From:        e.From,
		To:          e.To,
		By:          e.By,
		Timestamp:   e.Timestamp,
		Description: e.Description,
		Milestone:   e.Milestone,
	}
}

func commentResponse(cm domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		Author:    cm.Author,
		Text:      cm.Text,
		Timestamp: cm.Timestamp,
	}
}
