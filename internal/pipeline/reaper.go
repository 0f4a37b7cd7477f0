package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seonho/docvault/internal/repository"
)

const defaultReapSchedule = "*/1 * * * *"

// Reaper periodically fails file records stuck in processing, covering
// runs lost to a crashed or restarted process that a run-local deadline
// cannot reach.
type Reaper struct {
	repo       repository.FileRepository
	staleAfter time.Duration
	cron       *cron.Cron
}

// NewReaper creates a reaper that fails rows stuck in processing for
// longer than staleAfter.
func NewReaper(repo repository.FileRepository, staleAfter time.Duration) *Reaper {
	return &Reaper{
		repo:       repo,
		staleAfter: staleAfter,
		cron:       cron.New(),
	}
}

// Start schedules the sweep. schedule may be empty to use the default
// (every minute).
func (r *Reaper) Start(schedule string) error {
	if schedule == "" {
		schedule = defaultReapSchedule
	}
	if _, err := r.cron.AddFunc(schedule, r.Sweep); err != nil {
		return fmt.Errorf("schedule reaper: %w", err)
	}
	r.cron.Start()
	slog.Info("stale-run reaper started", "schedule", schedule, "stale_after", r.staleAfter)
	return nil
}

// Stop halts the schedule, waiting for an in-progress sweep.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

// Sweep fails every record stuck in processing past the threshold.
func (r *Reaper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	n, err := r.repo.FailStaleProcessing(ctx, time.Now().Add(-r.staleAfter))
	if err != nil {
		slog.Error("stale-run sweep failed", "err", err)
		return
	}
	if n > 0 {
		slog.Warn("swept stale processing runs", "count", n)
	}
}
