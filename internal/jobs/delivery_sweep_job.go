package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"souvlaki/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep every 30 seconds.
const DefaultSweepSchedule = "*/30 * * * * *"

// sweepTimeout bounds one sweep run.
const sweepTimeout = 25 * time.Second

// OverdueOrdersCompleter completes every pending order whose delivery is due.
type OverdueOrdersCompleter interface {
	Handle(ctx context.Context, command commands.CompleteOverdueOrdersCommand) (int, error)
}

// DeliverySweepJob completes pending orders whose in-memory delivery timer was lost,
// e.g. because the process restarted after the order was accepted.
type DeliverySweepJob struct {
	handler  OverdueOrdersCompleter
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDeliverySweepJob creates the sweep job. An empty schedule falls back to
// DefaultSweepSchedule. The schedule takes a seconds field.
func NewDeliverySweepJob(handler OverdueOrdersCompleter, schedule string, logger *slog.Logger) *DeliverySweepJob {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	return &DeliverySweepJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "delivery_sweep_job"),
	}
}

// Start registers the sweep and starts the cron scheduler.
func (j *DeliverySweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delivery sweep job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep.
func (j *DeliverySweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	completed, err := j.handler.Handle(ctx, commands.NewCompleteOverdueOrdersCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Delivery sweep failed", "error", err)
		return
	}

	if completed > 0 {
		j.logger.InfoContext(ctx, "Overdue orders completed", "count", completed)
	}
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *DeliverySweepJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Delivery sweep job stopped")
}
