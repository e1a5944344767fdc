package dto

// ReportTotalsResponse is the header shared by every ticket report.
type ReportTotalsResponse struct {
	TotalTickets      int            `json:"totalTickets"`
	TicketsByType     map[string]int `json:"ticketsByType"`
	TicketsByPriority map[string]int `json:"ticketsByPriority"`
}

// RiskReportResponse is the ticket risk report payload.
type RiskReportResponse struct {
	ReportTotalsResponse
	RiskByType map[string]string `json:"riskByType"`
}

// ImpactReportResponse is the customer impact report payload.
type ImpactReportResponse struct {
	ReportTotalsResponse
	CustomerImpactByType map[string]float64 `json:"customerImpactByType"`
}

// EfficiencyReportResponse is the resolution efficiency report payload.
type EfficiencyReportResponse struct {
	ReportTotalsResponse
	EfficiencyByType map[string]float64 `json:"efficiencyByType"`
}

// StabilityReportResponse is the app stability report payload.
type StabilityReportResponse struct {
	ReportTotalsResponse
	RiskByType   map[string]string  `json:"riskByType"`
	ImpactByType map[string]float64 `json:"impactByType"`
	AppStability string             `json:"appStability"`
}

// PerformanceRowResponse is one developer line of the performance
// report.
type PerformanceRowResponse struct {
	Username              string  `json:"username"`
	Seniority             string  `json:"seniority"`
	ClosedTickets         int     `json:"closedTickets"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
	PerformanceScore      float64 `json:"performanceScore"`
}

// DeveloperResponse is a developer search hit.
type DeveloperResponse struct {
	Username         string  `json:"username"`
	ExpertiseArea    string  `json:"expertiseArea"`
	Seniority        string  `json:"seniority"`
	PerformanceScore float64 `json:"performanceScore"`
	HireDate         string  `json:"hireDate,omitempty"`
}
