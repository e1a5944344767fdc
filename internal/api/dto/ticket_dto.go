package dto

// ReportTicketRequest is the payload for filing a ticket.
type ReportTicketRequest struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	ExpertiseArea string `json:"expertiseArea"`
	Priority      string `json:"businessPriority"`
	Anonymous     bool   `json:"anonymous"`

	ExpectedBehavior string `json:"expectedBehavior,omitempty"`
	ActualBehavior   string `json:"actualBehavior,omitempty"`
	Frequency        string `json:"frequency,omitempty"`
	Severity         string `json:"severity,omitempty"`
	Environment      string `json:"environment,omitempty"`

	BusinessValue  string `json:"businessValue,omitempty"`
	CustomerDemand string `json:"customerDemand,omitempty"`

	UIElementID    string `json:"uiElementId,omitempty"`
	UsabilityScore int    `json:"usabilityScore,omitempty"`
	ScreenshotURL  string `json:"screenshotUrl,omitempty"`
	SuggestedFix   string `json:"suggestedFix,omitempty"`
}

// AddCommentRequest is the payload for commenting on a ticket.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// TicketSummary is the list representation of a ticket.
type TicketSummary struct {
	ID               int    `json:"id"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	BusinessPriority string `json:"businessPriority"`
	ExpertiseArea    string `json:"expertiseArea"`
	ReportedBy       string `json:"reportedBy,omitempty"`
	CreatedAt        string `json:"createdAt"`
	AssignedTo       string `json:"assignedTo,omitempty"`
	SolvedAt         string `json:"solvedAt,omitempty"`
	Milestone        string `json:"milestone,omitempty"`
}

// TicketSearchResult is a ticket hit with optional keyword matches.
type TicketSearchResult struct {
	TicketSummary
	MatchingWords []string `json:"matchingWords,omitempty"`
}

// HistoryEntryResponse is one audit log line.
type HistoryEntryResponse struct {
	Action      string `json:"action"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	By          string `json:"by"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description,omitempty"`
	Milestone   string `json:"milestone,omitempty"`
}

// CommentResponse is one ticket comment.
type CommentResponse struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// TicketHistoryResponse groups a ticket's audit trail and comments.
type TicketHistoryResponse struct {
	ID       int                    `json:"id"`
	Title    string                 `json:"title"`
	Status   string                 `json:"status"`
	Actions  []HistoryEntryResponse `json:"actions"`
	Comments []CommentResponse      `json:"comments"`
}
