package domain

// DateLayout is the wire format for every date carried by the system.
// Dates stay strings end to end; consumers parse on demand so that a
// malformed value degrades locally instead of failing a whole load.
const DateLayout = "2006-01-02"

// TicketKind discriminates the ticket union.
type TicketKind string

const (
	KindBug            TicketKind = "BUG"
	KindFeatureRequest TicketKind = "FEATURE_REQUEST"
	KindUIFeedback     TicketKind = "UI_FEEDBACK"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "OPEN"
	StatusInProgress TicketStatus = "IN_PROGRESS"
	StatusResolved   TicketStatus = "RESOLVED"
	StatusClosed     TicketStatus = "CLOSED"
	StatusBlocked    TicketStatus = "BLOCKED"
)

// Priority enumerates business priority tiers, lowest to highest.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Next returns the tier above, capped at CRITICAL.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityCritical
	}
}

// Rank maps tiers to 1..4 for ordering and scoring.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// Frequency describes how often a bug reproduces.
type Frequency string

const (
	FrequencyRare       Frequency = "RARE"
	FrequencyOccasional Frequency = "OCCASIONAL"
	FrequencyFrequent   Frequency = "FREQUENT"
	FrequencyAlways     Frequency = "ALWAYS"
)

// Weight returns the scoring weight 1..4.
func (f Frequency) Weight() float64 {
	switch f {
	case FrequencyRare:
		return 1
	case FrequencyOccasional:
		return 2
	case FrequencyFrequent:
		return 3
	case FrequencyAlways:
		return 4
	default:
		return 0
	}
}

// Severity describes bug impact severity.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"
)

// Weight returns the scoring weight 1..3.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 0
	}
}

// BusinessValue sizes the commercial value of a change.
type BusinessValue string

const (
	BusinessValueS  BusinessValue = "S"
	BusinessValueM  BusinessValue = "M"
	BusinessValueL  BusinessValue = "L"
	BusinessValueXL BusinessValue = "XL"
)

// Weight returns the scoring weight 1, 3, 6 or 10.
func (b BusinessValue) Weight() float64 {
	switch b {
	case BusinessValueS:
		return 1
	case BusinessValueM:
		return 3
	case BusinessValueL:
		return 6
	case BusinessValueXL:
		return 10
	default:
		return 0
	}
}

// CustomerDemand describes how loudly customers ask for a feature.
type CustomerDemand string

const (
	DemandLow      CustomerDemand = "LOW"
	DemandMedium   CustomerDemand = "MEDIUM"
	DemandHigh     CustomerDemand = "HIGH"
	DemandVeryHigh CustomerDemand = "VERY_HIGH"
)

// Weight returns the scoring weight 1, 3, 6 or 10.
func (d CustomerDemand) Weight() float64 {
	switch d {
	case DemandLow:
		return 1
	case DemandMedium:
		return 3
	case DemandHigh:
		return 6
	case DemandVeryHigh:
		return 10
	default:
		return 0
	}
}

// BugDetails carries bug-only fields.
type BugDetails struct {
	ExpectedBehavior string
	ActualBehavior   string
	Frequency        Frequency
	Severity         Severity
	Environment      string
	ErrorCode        *int
}

// FeatureDetails carries feature-request-only fields.
type FeatureDetails struct {
	BusinessValue  BusinessValue
	CustomerDemand CustomerDemand
}

// UIFeedbackDetails carries UI-feedback-only fields.
type UIFeedbackDetails struct {
	UIElementID    string
	BusinessValue  BusinessValue
	UsabilityScore int
	ScreenshotURL  string
	SuggestedFix   string
}

// Ticket is the aggregate for reported issues. Exactly one of the
// kind-specific detail pointers is set, matching Kind.
type Ticket struct {
	ID               int
	Kind             TicketKind
	Title            string
	Description      string
	Status           TicketStatus
	BusinessPriority Priority
	ExpertiseArea    ExpertiseArea
	ReportedBy       string
	CreatedAt        string
	AssignedTo       string
	AssignedAt       string
	SolvedAt         string
	Milestone        string
	History          []HistoryEntry
	Comments         []Comment

	Bug        *BugDetails
	Feature    *FeatureDetails
	UIFeedback *UIFeedbackDetails
}

// Anonymous reports carry no reporter username.
func (t *Ticket) Anonymous() bool {
	return t.ReportedBy == ""
}

// Assigned reports whether a developer currently holds the ticket.
func (t *Ticket) Assigned() bool {
	return t.AssignedTo != ""
}

// Terminal reports whether the ticket is out of the engine's reach.
func (t *Ticket) Terminal() bool {
	return t.Status == StatusClosed || t.Status == StatusResolved
}

// AppendHistory records an entry. History is append-only; entries are
// never edited or removed.
func (t *Ticket) AppendHistory(entry HistoryEntry) {
	t.History = append(t.History, entry)
}

// CountHistory returns how many history entries carry the given action.
func (t *Ticket) CountHistory(action HistoryAction) int {
	count := 0
	for _, entry := range t.History {
		if entry.Action == action {
			count++
		}
	}
	return count
}
