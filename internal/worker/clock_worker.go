package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/engine"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/store"
)

// StartClockWorker advances the escalation engine on a fixed interval
// using the wall-clock date, so escalations fire even when no command
// traffic arrives. Returns immediately; the loop stops when ctx is
// cancelled.
func StartClockWorker(ctx context.Context, st *store.Store, eng *engine.Engine, metrics *observability.Metrics, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("clock worker stopped")
				return
			case <-ticker.C:
				today := time.Now().Format(domain.DateLayout)
				st.Lock()
				eng.Advance(today)
				st.Unlock()
				if metrics != nil {
					metrics.RecordTick()
				}
			}
		}
	}()
}
