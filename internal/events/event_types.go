package events

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReported       EventType = "ticket_reported"
	EventTicketAssigned       EventType = "ticket_assigned"
	EventTicketUnassigned     EventType = "ticket_unassigned"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketEscalated      EventType = "ticket_escalated"
	EventTicketAutoUnassigned EventType = "ticket_auto_unassigned"
	EventMilestoneCreated     EventType = "milestone_created"
	EventMilestoneBlocked     EventType = "milestone_blocked"
	EventMilestoneUnblocked   EventType = "milestone_unblocked"
)

// Event represents a domain event emitted by the engine or services.
// Actor is a username, or SYSTEM for engine-driven mutations.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int         `json:"ticket_id,omitempty"`
	Milestone string      `json:"milestone,omitempty"`
	Actor     string      `json:"actor"`
	Timestamp string      `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EscalationPayload describes a priority change.
type EscalationPayload struct {
	OldPriority string `json:"old_priority"`
	NewPriority string `json:"new_priority"`
	Reason      string `json:"reason"`
}

// StatusChangePayload describes a status transition.
type StatusChangePayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// AssignmentPayload describes assignment changes.
type AssignmentPayload struct {
	Assignee string `json:"assignee,omitempty"`
}
