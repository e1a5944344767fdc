package domain

// Milestone groups tickets under a due date. A ticket belongs to at
// most one milestone. DependsOn is derived at creation from the
// BlockingFor lists of other milestones and never mutated afterwards;
// blocking itself is a predicate recomputed per tick, never stored.
type Milestone struct {
	Name        string
	DueDate     string
	CreatedAt   string
	CreatedBy   string
	Tickets     []int
	AssignedDevs []string
	BlockingFor []string
	DependsOn   []string
}

// HasTicket reports milestone membership for a ticket id.
func (m *Milestone) HasTicket(id int) bool {
	for _, tid := range m.Tickets {
		if tid == id {
			return true
		}
	}
	return false
}

// HasDev reports whether a developer is assigned to the milestone.
func (m *Milestone) HasDev(username string) bool {
	for _, dev := range m.AssignedDevs {
		if dev == username {
			return true
		}
	}
	return false
}
