package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/events"
)

// NotificationService exposes the per-user mailbox and mirrors domain
// events into the log.
type NotificationService struct {
	Deps
}

// NewNotificationService constructs the service.
func NewNotificationService(deps Deps) *NotificationService {
	return &NotificationService{Deps: deps}
}

// ViewNotifications returns the user's pending notifications and
// clears the mailbox. Reading is consuming.
func (s *NotificationService) ViewNotifications(username, when string) []string {
	defer s.beginRead(when)()

	messages := s.Mailbox.Messages(username)
	s.Mailbox.Clear(username)
	return messages
}

// RegisterHandlers subscribes to events.
func (s *NotificationService) RegisterHandlers() {
	if s.Dispatcher == nil {
		return
	}
	s.Dispatcher.Subscribe(events.EventTicketReported, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventTicketAssigned, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventTicketUnassigned, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventTicketStatusChanged, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventTicketEscalated, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventTicketAutoUnassigned, s.handleTicketEvent)
	s.Dispatcher.Subscribe(events.EventMilestoneCreated, s.handleMilestoneEvent)
	s.Dispatcher.Subscribe(events.EventMilestoneBlocked, s.handleMilestoneEvent)
	s.Dispatcher.Subscribe(events.EventMilestoneUnblocked, s.handleMilestoneEvent)
}

func (s *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	if event.Type == events.EventTicketEscalated && s.Metrics != nil {
		s.Metrics.RecordEscalation()
	}
	s.Logger.Info(string(event.Type),
		zap.Int("ticket_id", event.TicketID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	return nil
}

func (s *NotificationService) handleMilestoneEvent(ctx context.Context, event events.Event) error {
	s.Logger.Info(string(event.Type),
		zap.String("milestone", event.Milestone),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	return nil
}
