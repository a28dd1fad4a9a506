package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"souvlaki/internal/core/ports"

	"github.com/jonboulle/clockwork"
)

// RearmDeliveryTimersCommandHandler arms a timer for every pending order. Orders already
// past their due time are armed with a zero delay and complete right away.
type RearmDeliveryTimersCommandHandler struct {
	uowFactory OrderUoWFactory
	timer      ports.DeliveryTimer
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewRearmDeliveryTimersCommandHandler(
	uowFactory OrderUoWFactory,
	timer ports.DeliveryTimer,
	clock clockwork.Clock,
	logger *slog.Logger,
) *RearmDeliveryTimersCommandHandler {
	return &RearmDeliveryTimersCommandHandler{
		uowFactory: uowFactory,
		timer:      timer,
		clock:      clock,
		logger:     logger.With("component", "rearm-delivery-timers"),
	}
}

func (h *RearmDeliveryTimersCommandHandler) Handle(ctx context.Context, command RearmDeliveryTimersCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	pending, err := h.uowFactory.Create().OrderRepository().GetAllInPendingStatus(ctx)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	armed := 0
	var armErrs []error
	for _, o := range pending {
		due := o.DeliveryDueAt()
		if due == nil {
			h.logger.WarnContext(ctx, "pending order has no due time", "order_id", o.ID().Int64())
			continue
		}

		delay := max(due.Sub(now), 0)
		if err = h.timer.Arm(o.ID(), delay); err != nil {
			armErrs = append(armErrs, fmt.Errorf("order %s: %w", o.ID(), err))
			continue
		}
		armed++
	}

	h.logger.InfoContext(ctx, "delivery timers restored", "count", armed)
	return errors.Join(armErrs...)
}
