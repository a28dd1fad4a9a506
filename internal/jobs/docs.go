// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// DeliverySweepJob - Runs every 30 seconds and completes pending orders whose
// delivery is due. Delivery timers live in memory, so the sweep is what completes
// orders accepted before a restart.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(overdueHandler, rearmHandler, "", logger)
//
//	// Re-arm timers of pending orders and start the sweep
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - A sweep that fails is logged and retried on the next schedule
// - Overlapping sweeps are skipped
// - Failing to re-arm timers at startup is logged only
package jobs
