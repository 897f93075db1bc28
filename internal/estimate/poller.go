package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/repository"
	"go.uber.org/zap"
)

// StatusQuerier reads the estimate status snapshot for a lead.
// *repository.LeadRepository satisfies this.
type StatusQuerier interface {
	EstimateStatus(ctx context.Context, id uuid.UUID) (*repository.EstimateStatusRow, error)
}

// OutcomeKind classifies how a poll loop ended
type OutcomeKind string

const (
	// OutcomeComplete means the estimate is ready and attached to the lead
	OutcomeComplete OutcomeKind = "complete"
	// OutcomeError means the backend marked the lead as errored
	OutcomeError OutcomeKind = "error"
	// OutcomeTimeout means the ceiling elapsed without a terminal status
	OutcomeTimeout OutcomeKind = "timeout"
	// OutcomeQueryFailed means a status query failed mid-loop
	OutcomeQueryFailed OutcomeKind = "query_failed"
)

// Outcome is the terminal result of one poll loop
type Outcome struct {
	Kind         OutcomeKind
	EstimateData json.RawMessage
	Message      string
}

// PollerConfig bounds the poll loop
type PollerConfig struct {
	// Interval is the fixed delay between status queries
	Interval time.Duration
	// Deadline is the hard ceiling for the whole loop
	Deadline time.Duration
}

// DefaultPollerConfig polls every 3 seconds for at most 2 minutes
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval: 3 * time.Second,
		Deadline: 120 * time.Second,
	}
}

// Poller watches one lead until its estimate completes, errors, or the
// deadline passes. Each Poller runs at most one loop; create a new one per
// estimate request. Cancel stops the loop without delivering an outcome.
type Poller struct {
	querier StatusQuerier
	cfg     PollerConfig
	logger  *zap.Logger

	cancelOnce sync.Once
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewPoller creates a poller for the given status querier
func NewPoller(querier StatusQuerier, cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Deadline < cfg.Interval {
		cfg.Deadline = cfg.Interval
	}
	return &Poller{
		querier: querier,
		cfg:     cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start begins polling in the background. deliver is called exactly once with
// the terminal outcome, unless the poller is canceled first. A lead row that
// does not exist yet is treated as "not yet ready" and polling continues; any
// other query failure stops the loop immediately.
func (p *Poller) Start(ctx context.Context, leadID uuid.UUID, deliver func(Outcome)) {
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	go func() {
		defer close(p.done)
		defer cancel()

		maxTicks := int(p.cfg.Deadline / p.cfg.Interval)

		for tick := 1; tick <= maxTicks; tick++ {
			select {
			case <-pollCtx.Done():
				p.logger.Debug("poll loop canceled",
					zap.String("leadID", leadID.String()),
					zap.Int("tick", tick),
				)
				return
			case <-time.After(p.cfg.Interval):
			}

			row, err := p.querier.EstimateStatus(pollCtx, leadID)
			if err != nil {
				var gwErr *domain.GatewayError
				if errors.As(err, &gwErr) && gwErr.Kind == domain.GatewayErrorKindNotFound {
					// Row not inserted yet from the poller's perspective;
					// distinct from an explicit error status.
					continue
				}
				if pollCtx.Err() != nil {
					return
				}
				p.logger.Warn("lead status query failed, stopping poll loop",
					zap.String("leadID", leadID.String()),
					zap.Error(err),
				)
				deliver(Outcome{Kind: OutcomeQueryFailed, Message: err.Error()})
				return
			}

			switch row.Status {
			case domain.LeadStatusComplete:
				if len(row.EstimateData) == 0 {
					// Status flipped before the data landed; keep polling.
					continue
				}
				p.logger.Info("estimate ready",
					zap.String("leadID", leadID.String()),
					zap.Int("ticks", tick),
				)
				deliver(Outcome{Kind: OutcomeComplete, EstimateData: row.EstimateData})
				return
			case domain.LeadStatusError:
				message := "estimate generation failed"
				if row.ErrorMessage != nil && *row.ErrorMessage != "" {
					message = *row.ErrorMessage
				}
				deliver(Outcome{Kind: OutcomeError, Message: message})
				return
			}
		}

		p.logger.Warn("estimate polling timed out",
			zap.String("leadID", leadID.String()),
			zap.Duration("deadline", p.cfg.Deadline),
		)
		deliver(Outcome{Kind: OutcomeTimeout, Message: "estimate generation timed out"})
	}()
}

// Cancel stops the poll loop. Safe to call multiple times and before Start
// has scheduled the first tick. No outcome is delivered after Cancel.
func (p *Poller) Cancel() {
	p.cancelOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
	})
}

// Done is closed when the poll loop has fully stopped
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
