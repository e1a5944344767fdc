package domain

// SystemActor is the actor recorded for engine-driven mutations.
const SystemActor = "SYSTEM"

// HistoryAction enumerates audit trail actions.
type HistoryAction string

const (
	ActionAssigned                   HistoryAction = "ASSIGNED"
	ActionDeAssigned                 HistoryAction = "DE-ASSIGNED"
	ActionStatusChanged              HistoryAction = "STATUS_CHANGED"
	ActionAddedToMilestone           HistoryAction = "ADDED_TO_MILESTONE"
	ActionPriorityEscalation         HistoryAction = "PRIORITY_ESCALATION"
	ActionDeadlineImminentEscalation HistoryAction = "DEADLINE_IMMINENT_ESCALATION"
	ActionLateUnblockEscalation      HistoryAction = "LATE_UNBLOCK_ESCALATION"
	ActionMilestoneBlocked           HistoryAction = "MILESTONE_BLOCKED"
	ActionMilestoneUnblocked         HistoryAction = "MILESTONE_UNBLOCKED"
	ActionAutoUnassign               HistoryAction = "AUTO_UNASSIGN"
)

// HistoryEntry is an immutable audit record. Beyond auditing, counts of
// PRIORITY_ESCALATION entries are the idempotence ground truth for the
// escalation engine.
type HistoryEntry struct {
	Action      HistoryAction
	From        string
	To          string
	By          string
	Timestamp   string
	Description string
	Milestone   string
}

// Comment is a user remark on a ticket.
type Comment struct {
	Author    string
	Text      string
	Timestamp string
}
