package estimate_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"github.com/quotewise/intake-api/internal/estimate"
	"github.com/quotewise/intake-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedQuerier returns a fixed sequence of results, repeating the last one
type scriptedQuerier struct {
	mu      sync.Mutex
	script  []queryResult
	queries int
}

type queryResult struct {
	row *repository.EstimateStatusRow
	err error
}

func (q *scriptedQuerier) EstimateStatus(ctx context.Context, id uuid.UUID) (*repository.EstimateStatusRow, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.queries
	if idx >= len(q.script) {
		idx = len(q.script) - 1
	}
	q.queries++
	r := q.script[idx]
	return r.row, r.err
}

func (q *scriptedQuerier) queryCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queries
}

var notFound = domain.NewGatewayError(domain.GatewayErrorKindNotFound, "lead not found", domain.ErrLeadNotFound)

func pending() queryResult {
	return queryResult{row: &repository.EstimateStatusRow{Status: domain.LeadStatusPending}}
}

func collectOutcome(t *testing.T, p *estimate.Poller) estimate.Outcome {
	t.Helper()
	var (
		mu      sync.Mutex
		got     estimate.Outcome
		arrived = make(chan struct{})
	)
	p.Start(context.Background(), uuid.New(), func(o estimate.Outcome) {
		mu.Lock()
		got = o
		mu.Unlock()
		close(arrived)
	})
	select {
	case <-arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not deliver an outcome")
	}
	mu.Lock()
	defer mu.Unlock()
	return got
}

func TestPoller_Complete(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{
		pending(),
		pending(),
		{row: &repository.EstimateStatusRow{
			Status:       domain.LeadStatusComplete,
			EstimateData: json.RawMessage(`{"total": 1200}`),
		}},
	}}
	p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

	outcome := collectOutcome(t, p)

	assert.Equal(t, estimate.OutcomeComplete, outcome.Kind)
	assert.JSONEq(t, `{"total": 1200}`, string(outcome.EstimateData))
	assert.Equal(t, 3, querier.queryCount())
}

func TestPoller_CompleteWithoutDataKeepsPolling(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{
		{row: &repository.EstimateStatusRow{Status: domain.LeadStatusComplete}},
		{row: &repository.EstimateStatusRow{
			Status:       domain.LeadStatusComplete,
			EstimateData: json.RawMessage(`{"total": 5}`),
		}},
	}}
	p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

	outcome := collectOutcome(t, p)

	assert.Equal(t, estimate.OutcomeComplete, outcome.Kind)
	assert.Equal(t, 2, querier.queryCount())
}

func TestPoller_ErrorStatus(t *testing.T) {
	t.Run("uses the row's error message when present", func(t *testing.T) {
		msg := "no pricing model for category"
		querier := &scriptedQuerier{script: []queryResult{
			{row: &repository.EstimateStatusRow{Status: domain.LeadStatusError, ErrorMessage: &msg}},
		}}
		p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

		outcome := collectOutcome(t, p)

		assert.Equal(t, estimate.OutcomeError, outcome.Kind)
		assert.Equal(t, msg, outcome.Message)
	})

	t.Run("falls back to a generic message", func(t *testing.T) {
		querier := &scriptedQuerier{script: []queryResult{
			{row: &repository.EstimateStatusRow{Status: domain.LeadStatusError}},
		}}
		p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

		outcome := collectOutcome(t, p)

		assert.Equal(t, estimate.OutcomeError, outcome.Kind)
		assert.Equal(t, "estimate generation failed", outcome.Message)
	})
}

func TestPoller_NotFoundIsNotTerminal(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{
		{err: notFound},
		{err: notFound},
		{row: &repository.EstimateStatusRow{
			Status:       domain.LeadStatusComplete,
			EstimateData: json.RawMessage(`{}`),
		}},
	}}
	p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

	outcome := collectOutcome(t, p)

	assert.Equal(t, estimate.OutcomeComplete, outcome.Kind)
	assert.Equal(t, 3, querier.queryCount())
}

func TestPoller_QueryFailureAborts(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{
		pending(),
		{err: errors.New("connection reset")},
	}}
	p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 200 * time.Millisecond}, zap.NewNop())

	outcome := collectOutcome(t, p)

	assert.Equal(t, estimate.OutcomeQueryFailed, outcome.Kind)
	assert.Equal(t, 2, querier.queryCount())
}

func TestPoller_TimeoutAfterFixedTickCount(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{pending()}}
	cfg := estimate.PollerConfig{Interval: 2 * time.Millisecond, Deadline: 20 * time.Millisecond}
	p := estimate.NewPoller(querier, cfg, zap.NewNop())

	outcome := collectOutcome(t, p)

	assert.Equal(t, estimate.OutcomeTimeout, outcome.Kind)
	assert.Equal(t, "estimate generation timed out", outcome.Message)
	// Deadline / Interval queries, no more
	assert.Equal(t, 10, querier.queryCount())
}

func TestPoller_CancelSuppressesOutcome(t *testing.T) {
	querier := &scriptedQuerier{script: []queryResult{pending()}}
	p := estimate.NewPoller(querier, estimate.PollerConfig{Interval: 5 * time.Millisecond, Deadline: 500 * time.Millisecond}, zap.NewNop())

	delivered := make(chan estimate.Outcome, 1)
	p.Start(context.Background(), uuid.New(), func(o estimate.Outcome) {
		delivered <- o
	})

	time.Sleep(12 * time.Millisecond)
	p.Cancel()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	select {
	case o := <-delivered:
		t.Fatalf("unexpected outcome after cancel: %v", o.Kind)
	default:
	}
}

func TestPoller_DefaultConfig(t *testing.T) {
	cfg := estimate.DefaultPollerConfig()
	require.Equal(t, 3*time.Second, cfg.Interval)
	require.Equal(t, 120*time.Second, cfg.Deadline)
	assert.Equal(t, 40, int(cfg.Deadline/cfg.Interval))
}
