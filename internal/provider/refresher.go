package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
)

// Refresher periodically refreshes every connection's snapshot.
type Refresher struct {
	svc     *Service
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewRefresher schedules svc.RefreshAll on a standard five-field cron spec
// (or a descriptor such as "@hourly").
func NewRefresher(svc *Service, schedule string) (*Refresher, error) {
	r := &Refresher{
		svc:     svc,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "refresher"),
		timeout: 5 * time.Minute,
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("%w: refresh schedule %q: %w", common.ErrInvalidConfig, schedule, err)
	}
	return r, nil
}

// Start runs the scheduler in the background.
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("Snapshot refresher started", "next", r.Next())
}

// Stop halts the scheduler and waits for a running refresh, or ctx.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("Refresher stop timed out")
	}
}

// Next returns the next scheduled run, or the zero time before Start.
func (r *Refresher) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.svc.RefreshAll(ctx, nil)
	if err != nil {
		common.LogError(err, "Scheduled refresh finished with errors", common.Fields{"component": "refresher", "refreshed": n})
	}
}
