// Package store owns the in-memory entity state: tickets by id,
// milestones in creation order and users by username. It is plain data
// with lookups; all temporal behavior lives in the escalation engine
// and the command services, which borrow references and never copy.
package store

import (
	"sort"
	"sync"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// Store is the single owner of entity state. One instance is built at
// boot and passed by reference everywhere; there is no hidden global.
// Callers serialize command-plus-tick sequences through Lock/Unlock,
// which is sufficient given the low entity cardinality.
type Store struct {
	mu sync.Mutex

	users      map[string]*domain.User
	tickets    map[int]*domain.Ticket
	milestones []*domain.Milestone

	nextTicketID int

	// System-wide flags driven by the command layer.
	testingPhaseStart string
	investorsLost     bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:   make(map[string]*domain.User),
		tickets: make(map[int]*domain.Ticket),
	}
}

// Lock acquires the store-wide critical section.
func (s *Store) Lock() { s.mu.Lock() }

// Unlock releases the store-wide critical section.
func (s *Store) Unlock() { s.mu.Unlock() }

// PutUser registers or replaces a user.
func (s *Store) PutUser(user *domain.User) {
	s.users[user.Username] = user
}

// User looks up a user by username.
func (s *Store) User(username string) (*domain.User, bool) {
	user, ok := s.users[username]
	return user, ok
}

// Users returns all users sorted by username.
func (s *Store) Users() []*domain.User {
	out := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// NextTicketID allocates the next ticket id, starting at zero.
func (s *Store) NextTicketID() int {
	id := s.nextTicketID
	s.nextTicketID++
	return id
}

// PutTicket stores a ticket by id. Tickets are never deleted.
func (s *Store) PutTicket(ticket *domain.Ticket) {
	s.tickets[ticket.ID] = ticket
	if ticket.ID >= s.nextTicketID {
		s.nextTicketID = ticket.ID + 1
	}
}

// Ticket looks up a ticket by id.
func (s *Store) Ticket(id int) (*domain.Ticket, bool) {
	ticket, ok := s.tickets[id]
	return ticket, ok
}

// Tickets returns all tickets sorted by id.
func (s *Store) Tickets() []*domain.Ticket {
	out := make([]*domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddMilestone appends a milestone; iteration preserves creation order.
func (s *Store) AddMilestone(m *domain.Milestone) {
	s.milestones = append(s.milestones, m)
}

// Milestone finds a milestone by name.
func (s *Store) Milestone(name string) (*domain.Milestone, bool) {
	for _, m := range s.milestones {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Milestones returns milestones in creation order.
func (s *Store) Milestones() []*domain.Milestone {
	return s.milestones
}

// MilestoneForTicket returns the milestone owning the ticket, if any.
func (s *Store) MilestoneForTicket(ticketID int) (*domain.Milestone, bool) {
	for _, m := range s.milestones {
		if m.HasTicket(ticketID) {
			return m, true
		}
	}
	return nil, false
}

// BeginTestingPhase records the date of the first reported ticket; the
// first call wins.
func (s *Store) BeginTestingPhase(date string) {
	if s.testingPhaseStart == "" {
		s.testingPhaseStart = date
	}
}

// TestingPhaseStart returns the recorded phase start, empty if unset.
func (s *Store) TestingPhaseStart() string {
	return s.testingPhaseStart
}

// SetInvestorsLost halts command processing permanently.
func (s *Store) SetInvestorsLost() {
	s.investorsLost = true
}

// InvestorsLost reports the halt flag.
func (s *Store) InvestorsLost() bool {
	return s.investorsLost
}
