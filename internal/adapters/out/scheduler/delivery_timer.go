// Package scheduler implements the delivery timer on top of gocron one-time jobs.
//
// Each armed order owns at most one job, tagged with its id. Arming again removes the
// previous job first, Disarm removes it. Jobs live in memory only; pending orders are
// re-armed at startup from their persisted due time and the delivery sweep job covers
// anything lost in between.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// completionTimeout bounds a single completion attempt.
const completionTimeout = 10 * time.Second

// OrderCompleter completes an order when its timer fires.
type OrderCompleter interface {
	Handle(ctx context.Context, command commands.CompleteOrderCommand) (*order.Order, error)
}

// DeliveryTimer implements ports.DeliveryTimer.
type DeliveryTimer struct {
	scheduler gocron.Scheduler
	completer OrderCompleter
	clock     clockwork.Clock
	logger    *slog.Logger

	// mu makes remove-then-add of one order's job atomic.
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDeliveryTimer creates and starts the underlying scheduler.
func NewDeliveryTimer(completer OrderCompleter, clock clockwork.Clock, logger *slog.Logger) (*DeliveryTimer, error) {
	logger = logger.With("component", "delivery-timer")

	s, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLogger(logger),
		gocron.WithStopTimeout(completionTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &DeliveryTimer{
		scheduler: s,
		completer: completer,
		clock:     clock,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	s.Start()
	return t, nil
}

// Arm schedules the completion of the order after delay. A non-positive delay runs it
// right away.
func (t *DeliveryTimer) Arm(orderID kernel.ID, delay time.Duration) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tag := jobTag(orderID)
	t.scheduler.RemoveByTags(tag)

	definition := gocron.OneTimeJob(gocron.OneTimeJobStartImmediately())
	if delay > 0 {
		definition = gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(t.clock.Now().Add(delay)))
	}

	_, err := t.newJob(orderID, tag, definition)
	if errors.Is(err, gocron.ErrOneTimeJobStartDateTimePast) {
		_, err = t.newJob(orderID, tag, gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()))
	}
	if err != nil {
		return fmt.Errorf("failed to arm delivery timer for order %s: %w", orderID, err)
	}

	t.logger.Debug("delivery timer armed", "order_id", orderID.Int64(), "delay", delay.String())
	return nil
}

// Disarm drops the order's job. Disarming an order without a job is not an error.
func (t *DeliveryTimer) Disarm(orderID kernel.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scheduler.RemoveByTags(jobTag(orderID))
	return nil
}

// IsArmed reports whether a completion job is waiting for the order.
func (t *DeliveryTimer) IsArmed(orderID kernel.ID) bool {
	tag := jobTag(orderID)
	for _, job := range t.scheduler.Jobs() {
		if slices.Contains(job.Tags(), tag) {
			return true
		}
	}
	return false
}

// Shutdown cancels running completions and stops the scheduler.
func (t *DeliveryTimer) Shutdown() error {
	t.cancel()
	return t.scheduler.Shutdown()
}

func (t *DeliveryTimer) newJob(orderID kernel.ID, tag string, definition gocron.JobDefinition) (gocron.Job, error) {
	return t.scheduler.NewJob(
		definition,
		gocron.NewTask(t.complete, orderID),
		gocron.WithTags(tag),
		gocron.WithName("complete-"+tag),
	)
}

func (t *DeliveryTimer) complete(orderID kernel.ID) {
	ctx, cancel := context.WithTimeout(t.ctx, completionTimeout)
	defer cancel()

	cmd, err := commands.NewCompleteOrderCommand(orderID)
	if err != nil {
		t.logger.ErrorContext(ctx, "invalid order for delivery completion", "order_id", orderID.Int64(), "error", err)
		return
	}

	_, err = t.completer.Handle(ctx, cmd)
	switch {
	case err == nil:
		t.logger.InfoContext(ctx, "order completed by delivery timer", "order_id", orderID.Int64())
	case errors.Is(err, errs.ErrStatusTransitionIsInvalid), errors.Is(err, errs.ErrConcurrentModification):
		t.logger.InfoContext(ctx, "delivery timer fired for a closed order", "order_id", orderID.Int64(), "error", err)
	default:
		t.logger.ErrorContext(ctx, "failed to complete order on delivery timer", "order_id", orderID.Int64(), "error", err)
	}
}

func jobTag(orderID kernel.ID) string {
	return "order-" + orderID.String()
}
