// Package engine implements the temporal escalation rules. Advance is
// driven with a non-decreasing sequence of dates by the command
// dispatcher (or the clock worker) and mutates ticket priority, status
// and assignment plus milestone blocking state.
//
// Idempotence is derived, not tracked: earned escalations are a pure
// function of elapsed time and applied escalations are counted from the
// ticket's own history, so re-running a date, or skipping days, cannot
// double-apply effects.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/access"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/notify"
	"github.com/spec-kit/escalation-service/internal/store"
)

// escalationInterval is the day count Rule A divides elapsed time by.
const escalationInterval = 3

// Engine evaluates milestone blocking and escalation rules against the
// entity store. Callers hold the store's critical section across each
// Advance; the engine itself keeps no entity copies, only the
// previously-blocked name set used for edge detection.
type Engine struct {
	store      *store.Store
	sink       notify.Sink
	dispatcher events.Dispatcher
	logger     *zap.Logger

	blocked map[string]struct{}
}

// New constructs an engine over the given store. Dispatcher may be nil.
func New(st *store.Store, sink notify.Sink, dispatcher events.Dispatcher, logger *zap.Logger) *Engine {
	return &Engine{
		store:      st,
		sink:       sink,
		dispatcher: dispatcher,
		logger:     logger,
		blocked:    make(map[string]struct{}),
	}
}

// Advance evaluates every milestone for the given date. Safe to call
// repeatedly with the same or later dates. A date that does not parse
// skips the whole tick.
func (e *Engine) Advance(today string) {
	now, err := domain.ParseDate(today)
	if err != nil {
		e.logger.Warn("tick skipped: unparseable date", zap.String("date", today))
		return
	}
	for _, m := range e.store.Milestones() {
		e.tickMilestone(m, today, now)
	}
}

// IsBlocked derives the blocking predicate: a milestone is blocked iff
// any dependency still has a ticket that is not CLOSED. Dependencies or
// tickets missing from the store are skipped.
func (e *Engine) IsBlocked(m *domain.Milestone) bool {
	for _, depName := range m.DependsOn {
		dep, ok := e.store.Milestone(depName)
		if !ok {
			continue
		}
		for _, tid := range dep.Tickets {
			t, ok := e.store.Ticket(tid)
			if !ok {
				continue
			}
			if t.Status != domain.StatusClosed {
				return true
			}
		}
	}
	return false
}

func (e *Engine) tickMilestone(m *domain.Milestone, today string, now time.Time) {
	blocked := e.IsBlocked(m)
	_, wasBlocked := e.blocked[m.Name]

	if blocked {
		if !wasBlocked {
			e.blocked[m.Name] = struct{}{}
			e.enterBlocked(m, today)
		}
		// No escalation while blocked.
		return
	}
	if wasBlocked {
		delete(e.blocked, m.Name)
		e.handleUnblock(m, today, now)
	}

	created, err := domain.ParseDate(m.CreatedAt)
	if err != nil {
		e.logger.Debug("milestone skipped: unparseable createdAt",
			zap.String("milestone", m.Name), zap.String("createdAt", m.CreatedAt))
		return
	}
	due, err := domain.ParseDate(m.DueDate)
	if err != nil {
		e.logger.Debug("milestone skipped: unparseable dueDate",
			zap.String("milestone", m.Name), zap.String("dueDate", m.DueDate))
		return
	}

	e.escalatePeriodic(m, today, now, created)
	e.escalateDeadline(m, today, now, due)
}

// enterBlocked flips the milestone's active tickets to BLOCKED.
func (e *Engine) enterBlocked(m *domain.Milestone, today string) {
	for _, tid := range m.Tickets {
		t, ok := e.store.Ticket(tid)
		if !ok {
			continue
		}
		if t.Status != domain.StatusOpen && t.Status != domain.StatusInProgress {
			continue
		}
		old := t.Status
		t.Status = domain.StatusBlocked
		t.AppendHistory(domain.HistoryEntry{
			Action:      domain.ActionMilestoneBlocked,
			From:        string(old),
			To:          string(domain.StatusBlocked),
			By:          domain.SystemActor,
			Timestamp:   today,
			Description: fmt.Sprintf("Milestone %s blocked by unmet dependency", m.Name),
			Milestone:   m.Name,
		})
	}
	e.publish(events.Event{
		Type:      events.EventMilestoneBlocked,
		Milestone: m.Name,
		Actor:     domain.SystemActor,
		Timestamp: today,
	})
}

// handleUnblock restores BLOCKED tickets and, when the milestone came
// back past its due date, escalates everything still active to
// CRITICAL.
func (e *Engine) handleUnblock(m *domain.Milestone, today string, now time.Time) {
	late := false
	if due, err := domain.ParseDate(m.DueDate); err == nil {
		late = now.After(due)
	}

	for _, tid := range m.Tickets {
		t, ok := e.store.Ticket(tid)
		if !ok {
			continue
		}
		if t.Status != domain.StatusBlocked {
			continue
		}
		restored := domain.StatusOpen
		if t.Assigned() {
			restored = domain.StatusInProgress
		}
		t.Status = restored
		t.AppendHistory(domain.HistoryEntry{
			Action:      domain.ActionMilestoneUnblocked,
			From:        string(domain.StatusBlocked),
			To:          string(restored),
			By:          domain.SystemActor,
			Timestamp:   today,
			Description: "Milestone unblocked",
			Milestone:   m.Name,
		})
	}

	if late {
		escalated := false
		for _, tid := range m.Tickets {
			t, ok := e.store.Ticket(tid)
			if !ok || t.Terminal() || t.BusinessPriority == domain.PriorityCritical {
				continue
			}
			old := t.BusinessPriority
			t.BusinessPriority = domain.PriorityCritical
			t.AppendHistory(domain.HistoryEntry{
				Action:      domain.ActionLateUnblockEscalation,
				By:          domain.SystemActor,
				Timestamp:   today,
				Description: "Escalated to CRITICAL - milestone unblocked after due date",
				Milestone:   m.Name,
			})
			e.publishEscalation(t, old, today, "late_unblock")
			escalated = true
		}
		if escalated {
			e.notifyDevs(m, fmt.Sprintf("Milestone %s was unblocked after due date. All active tickets are now CRITICAL.", m.Name))
		}
	} else {
		e.notifyDevs(m, fmt.Sprintf("Milestone %s was unblocked.", m.Name))
	}

	e.publish(events.Event{
		Type:      events.EventMilestoneUnblocked,
		Milestone: m.Name,
		Actor:     domain.SystemActor,
		Timestamp: today,
	})
}

// escalatePeriodic applies Rule A: one earned escalation per three
// elapsed days since milestone creation, replayed against the count of
// escalations already in the ticket's history.
func (e *Engine) escalatePeriodic(m *domain.Milestone, today string, now, created time.Time) {
	elapsed := int(now.Sub(created).Hours()/24) + 1
	earned := elapsed / escalationInterval
	if earned <= 0 {
		return
	}
	for _, tid := range m.Tickets {
		t, ok := e.store.Ticket(tid)
		if !ok {
			continue
		}
		if t.Status != domain.StatusOpen && t.Status != domain.StatusInProgress {
			continue
		}
		applied := t.CountHistory(domain.ActionPriorityEscalation)
		for applied < earned && t.BusinessPriority != domain.PriorityCritical {
			old := t.BusinessPriority
			next := old.Next()
			t.BusinessPriority = next
			t.AppendHistory(domain.HistoryEntry{
				Action:      domain.ActionPriorityEscalation,
				By:          domain.SystemActor,
				Timestamp:   today,
				Description: fmt.Sprintf("Priority increased due to time in milestone '%s' to %s", m.Name, next),
				Milestone:   m.Name,
			})
			applied++
			e.publishEscalation(t, old, today, "periodic")
			e.recheckAccess(t, today)
		}
	}
}

// escalateDeadline applies Rule B: the day before the due date, every
// active ticket is forced to CRITICAL.
func (e *Engine) escalateDeadline(m *domain.Milestone, today string, now, due time.Time) {
	if int(due.Sub(now).Hours()/24) != 1 {
		return
	}
	escalated := false
	for _, tid := range m.Tickets {
		t, ok := e.store.Ticket(tid)
		if !ok {
			continue
		}
		if t.Status != domain.StatusOpen && t.Status != domain.StatusInProgress {
			continue
		}
		if t.BusinessPriority == domain.PriorityCritical {
			continue
		}
		old := t.BusinessPriority
		t.BusinessPriority = domain.PriorityCritical
		t.AppendHistory(domain.HistoryEntry{
			Action:      domain.ActionDeadlineImminentEscalation,
			By:          domain.SystemActor,
			Timestamp:   today,
			Description: "Escalated to CRITICAL - 1 day before due date",
			Milestone:   m.Name,
		})
		e.publishEscalation(t, old, today, "deadline_imminent")
		e.recheckAccess(t, today)
		escalated = true
	}
	if escalated {
		e.notifyDevs(m, fmt.Sprintf("Milestone %s is due tomorrow. All unresolved tickets are now CRITICAL.", m.Name))
	}
}

// recheckAccess revokes an assignment that an escalation pushed beyond
// the assignee's clearance. A missing or non-developer assignee is left
// alone.
func (e *Engine) recheckAccess(t *domain.Ticket, today string) {
	if !t.Assigned() {
		return
	}
	dev, ok := e.store.User(t.AssignedTo)
	if !ok || !dev.IsDeveloper() {
		return
	}
	if access.CanAssign(dev, t) {
		return
	}
	assignee := t.AssignedTo
	t.AssignedTo = ""
	t.AssignedAt = ""
	t.Status = domain.StatusOpen
	t.AppendHistory(domain.HistoryEntry{
		Action:      domain.ActionAutoUnassign,
		By:          domain.SystemActor,
		Timestamp:   today,
		Description: fmt.Sprintf("Ticket unassigned: priority %s exceeds dev seniority", t.BusinessPriority),
	})
	e.publish(events.Event{
		Type:      events.EventTicketAutoUnassigned,
		TicketID:  t.ID,
		Actor:     domain.SystemActor,
		Timestamp: today,
		Payload:   events.AssignmentPayload{Assignee: assignee},
	})
}

func (e *Engine) notifyDevs(m *domain.Milestone, message string) {
	for _, dev := range m.AssignedDevs {
		e.sink.Notify(dev, message)
	}
}

func (e *Engine) publishEscalation(t *domain.Ticket, old domain.Priority, today, reason string) {
	e.publish(events.Event{
		Type:      events.EventTicketEscalated,
		TicketID:  t.ID,
		Actor:     domain.SystemActor,
		Timestamp: today,
		Payload: events.EscalationPayload{
			OldPriority: string(old),
			NewPriority: string(t.BusinessPriority),
			Reason:      reason,
		},
	})
}

func (e *Engine) publish(event events.Event) {
	if e.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	_ = e.dispatcher.Publish(context.Background(), event)
}
