package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"souvlaki/internal/core/application/usecases/commands"
)

// TimerRearmer restores delivery timers of pending orders.
type TimerRearmer interface {
	Handle(ctx context.Context, command commands.RearmDeliveryTimersCommand) error
}

// JobManager coordinates all background work of the application.
// Provides a unified interface to start and stop it.
type JobManager struct {
	deliverySweepJob *DeliverySweepJob
	rearmer          TimerRearmer
	logger           *slog.Logger
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	overdueHandler OverdueOrdersCompleter,
	rearmer TimerRearmer,
	sweepSchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		deliverySweepJob: NewDeliverySweepJob(overdueHandler, sweepSchedule, logger),
		rearmer:          rearmer,
		logger:           logger.With("component", "job_manager"),
	}
}

// StartAll re-arms the delivery timers of pending orders and starts the sweep.
// A failure to re-arm is logged only, since the sweep completes those orders anyway.
func (jm *JobManager) StartAll(ctx context.Context) error {
	if err := jm.rearmer.Handle(ctx, commands.NewRearmDeliveryTimersCommand()); err != nil {
		jm.logger.ErrorContext(ctx, "Failed to re-arm delivery timers", "error", err)
	}

	if err := jm.deliverySweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start delivery sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.deliverySweepJob.Stop()
}
