// Package service implements the command layer: role-checked
// operations over the entity store, each preceded by an escalation
// engine tick for the command's timestamp.
package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/engine"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/notify"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/store"
	apperrors "github.com/spec-kit/escalation-service/pkg/util"
)

// testingPhaseDays is the length of the testing phase, measured
// inclusively from the first reported ticket.
const testingPhaseDays = 12

// Deps bundles the collaborators every command service needs.
type Deps struct {
	Store      *store.Store
	Engine     *engine.Engine
	Dispatcher events.Dispatcher
	Mailbox    notify.Mailbox
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// begin opens a command: it takes the store-wide critical section,
// refuses work after the investors-lost halt, and advances the engine
// to the command's timestamp. The returned release func must be
// deferred by the caller.
func (d Deps) begin(when string) (release func(), err error) {
	d.Store.Lock()
	if d.Store.InvestorsLost() {
		d.Store.Unlock()
		return nil, apperrors.NewConflict("the system is no longer accepting commands", nil)
	}
	d.Engine.Advance(when)
	return d.Store.Unlock, nil
}

// beginRead is begin without the halt check, for read-only views that
// still move the clock forward.
func (d Deps) beginRead(when string) func() {
	d.Store.Lock()
	if !d.Store.InvestorsLost() && when != "" {
		d.Engine.Advance(when)
	}
	return d.Store.Unlock
}

// testingPhaseActive reports whether the testing phase covers the
// given date. The phase opens at the first reported ticket and lasts
// twelve days inclusive; before any report it is considered active.
func (d Deps) testingPhaseActive(today string) bool {
	start := d.Store.TestingPhaseStart()
	if start == "" {
		return true
	}
	days, err := domain.DaysBetween(start, today)
	if err != nil {
		return true
	}
	return days+1 <= testingPhaseDays
}

func (d Deps) publish(ctx context.Context, event events.Event) {
	if d.Dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().Format(domain.DateLayout)
	}
	_ = d.Dispatcher.Publish(ctx, event)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func requireRole(user *domain.User, role domain.Role) error {
	if user == nil || user.Role != role {
		current := domain.Role("")
		if user != nil {
			current = user.Role
		}
		return apperrors.NewForbidden(
			"The user does not have permission to execute this command: required role " +
				string(role) + "; user role " + string(current) + ".")
	}
	return nil
}
