package jobs

import (
	"context"
	"time"

	"github.com/quotewise/intake-api/internal/repository"
	"github.com/quotewise/intake-api/internal/wizard"
	"go.uber.org/zap"
)

// SweeperJob evicts idle wizard sessions and flags leads whose estimate
// computation never finished. Sessions are in-memory and cheap; the lead
// reaper keeps the admin view honest when the backend silently drops a job.
type SweeperJob struct {
	store      *wizard.Store
	leads      *repository.LeadRepository
	leadMaxAge time.Duration
	logger     *zap.Logger
}

// NewSweeperJob creates a sweeper over the session store and lead repository.
// leadMaxAge bounds how long a lead may sit in pending before it is flagged.
func NewSweeperJob(store *wizard.Store, leads *repository.LeadRepository, leadMaxAge time.Duration, logger *zap.Logger) *SweeperJob {
	if leadMaxAge <= 0 {
		leadMaxAge = 30 * time.Minute
	}
	return &SweeperJob{
		store:      store,
		leads:      leads,
		leadMaxAge: leadMaxAge,
		logger:     logger,
	}
}

// Run performs one sweep pass
func (j *SweeperJob) Run() {
	evicted := j.store.SweepExpired()
	if evicted > 0 {
		j.logger.Info("evicted expired wizard sessions",
			zap.Int("count", evicted),
			zap.Int("remaining", j.store.Len()),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reaped, err := j.leads.MarkStalePending(ctx, j.leadMaxAge)
	if err != nil {
		j.logger.Error("failed to reap stale pending leads", zap.Error(err))
		return
	}
	if reaped > 0 {
		j.logger.Warn("flagged stale pending leads as errored",
			zap.Int64("count", reaped),
			zap.Duration("max_age", j.leadMaxAge),
		)
	}
}

// Register wires the sweeper into the scheduler at a 5 minute cadence
func (j *SweeperJob) Register(scheduler *Scheduler) error {
	return scheduler.AddJob("session-sweeper", "0 */5 * * * *", j.Run)
}
