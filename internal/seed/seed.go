// Package seed loads the user and ticket files the service boots from.
// Seed files are read-only input; nothing is ever written back.
package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/store"
)

type userRecord struct {
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Role          string   `json:"role"`
	Password      string   `json:"password,omitempty"`
	PasswordHash  string   `json:"passwordHash,omitempty"`
	ExpertiseArea string   `json:"expertiseArea,omitempty"`
	Seniority     string   `json:"seniority,omitempty"`
	HireDate      string   `json:"hireDate,omitempty"`
	Subordinates  []string `json:"subordinates,omitempty"`
}

type ticketRecord struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Status           string `json:"status,omitempty"`
	BusinessPriority string `json:"businessPriority,omitempty"`
	ExpertiseArea    string `json:"expertiseArea"`
	ReportedBy       string `json:"reportedBy"`
	CreatedAt        string `json:"createdAt"`

	ExpectedBehavior string `json:"expectedBehavior,omitempty"`
	ActualBehavior   string `json:"actualBehavior,omitempty"`
	Frequency        string `json:"frequency,omitempty"`
	Severity         string `json:"severity,omitempty"`
	Environment      string `json:"environment,omitempty"`
	ErrorCode        *int   `json:"errorCode,omitempty"`

	BusinessValue  string `json:"businessValue,omitempty"`
	CustomerDemand string `json:"customerDemand,omitempty"`

	UIElementID    string `json:"uiElementId,omitempty"`
	UsabilityScore int    `json:"usabilityScore,omitempty"`
	ScreenshotURL  string `json:"screenshotUrl,omitempty"`
	SuggestedFix   string `json:"suggestedFix,omitempty"`
}

// LoadUsers reads a users file into the store. Plaintext passwords are
// hashed with the given bcrypt cost; precomputed hashes are kept as is.
func LoadUsers(st *store.Store, path string, bcryptCost int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read users seed: %w", err)
	}
	var records []userRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse users seed: %w", err)
	}
	for _, rec := range records {
		user := &domain.User{
			Username:      rec.Username,
			Email:         rec.Email,
			Role:          domain.Role(rec.Role),
			ExpertiseArea: domain.ExpertiseArea(rec.ExpertiseArea),
			Seniority:     domain.Seniority(rec.Seniority),
			HireDate:      rec.HireDate,
			Subordinates:  rec.Subordinates,
		}
		switch {
		case rec.PasswordHash != "":
			user.PasswordHash = rec.PasswordHash
		case rec.Password != "":
			hashed, err := auth.HashPassword(rec.Password, bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", rec.Username, err)
			}
			user.PasswordHash = hashed
		}
		st.PutUser(user)
	}
	return nil
}

// LoadTickets reads a tickets file into the store.
func LoadTickets(st *store.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tickets seed: %w", err)
	}
	var records []ticketRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("parse tickets seed: %w", err)
	}
	for _, rec := range records {
		ticket, err := buildTicket(rec)
		if err != nil {
			return err
		}
		st.PutTicket(ticket)
	}
	return nil
}

func buildTicket(rec ticketRecord) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		ID:               rec.ID,
		Kind:             domain.TicketKind(rec.Type),
		Title:            rec.Title,
		Description:      rec.Description,
		Status:           domain.StatusOpen,
		BusinessPriority: domain.Priority(rec.BusinessPriority),
		ExpertiseArea:    domain.ExpertiseArea(rec.ExpertiseArea),
		ReportedBy:       rec.ReportedBy,
		CreatedAt:        rec.CreatedAt,
	}
	if rec.Status != "" {
		ticket.Status = domain.TicketStatus(rec.Status)
	}
	if ticket.BusinessPriority == "" {
		ticket.BusinessPriority = domain.PriorityLow
	}

	switch ticket.Kind {
	case domain.KindBug:
		ticket.Bug = &domain.BugDetails{
			ExpectedBehavior: rec.ExpectedBehavior,
			ActualBehavior:   rec.ActualBehavior,
			Frequency:        domain.Frequency(rec.Frequency),
			Severity:         domain.Severity(rec.Severity),
			Environment:      rec.Environment,
			ErrorCode:        rec.ErrorCode,
		}
	case domain.KindFeatureRequest:
		ticket.Feature = &domain.FeatureDetails{
			BusinessValue:  domain.BusinessValue(rec.BusinessValue),
			CustomerDemand: domain.CustomerDemand(rec.CustomerDemand),
		}
	case domain.KindUIFeedback:
		ticket.UIFeedback = &domain.UIFeedbackDetails{
			UIElementID:    rec.UIElementID,
			BusinessValue:  domain.BusinessValue(rec.BusinessValue),
			UsabilityScore: rec.UsabilityScore,
			ScreenshotURL:  rec.ScreenshotURL,
			SuggestedFix:   rec.SuggestedFix,
		}
	default:
		return nil, fmt.Errorf("ticket %d: unknown type %q", rec.ID, rec.Type)
	}
	return ticket, nil
}
