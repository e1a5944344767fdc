package dto

// CreateMilestoneRequest is the payload for creating a milestone.
type CreateMilestoneRequest struct {
	Name         string   `json:"name"`
	DueDate      string   `json:"dueDate"`
	Tickets      []int    `json:"tickets"`
	AssignedDevs []string `json:"assignedDevs"`
	BlockingFor  []string `json:"blockingFor"`
}

// DevRepartitionResponse maps a developer to their milestone tickets.
type DevRepartitionResponse struct {
	Developer       string `json:"developer"`
	AssignedTickets []int  `json:"assignedTickets"`
}

// MilestoneResponse is the computed milestone projection.
type MilestoneResponse struct {
	Name                 string                   `json:"name"`
	BlockingFor          []string                 `json:"blockingFor"`
	DueDate              string                   `json:"dueDate"`
	CreatedAt            string                   `json:"createdAt"`
	CreatedBy            string                   `json:"createdBy"`
	Tickets              []int                    `json:"tickets"`
	AssignedDevs         []string                 `json:"assignedDevs"`
	Status               string                   `json:"status"`
	IsBlocked            bool                     `json:"isBlocked"`
	DaysUntilDue         int                      `json:"daysUntilDue"`
	OverdueBy            int                      `json:"overdueBy"`
	OpenTickets          []int                    `json:"openTickets"`
	ClosedTickets        []int                    `json:"closedTickets"`
	CompletionPercentage float64                  `json:"completionPercentage"`
	Repartition          []DevRepartitionResponse `json:"repartition"`
}
