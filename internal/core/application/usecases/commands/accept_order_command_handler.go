package commands

import (
	"context"
	"log/slog"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"

	"github.com/jonboulle/clockwork"
)

// AcceptOrderCommandHandler accepts orders and schedules their automatic completion.
//
// The timer is armed and the customer notified only after the transition committed.
// Failing to arm is logged, not returned: the persisted due time lets the delivery
// sweep complete the order anyway.
type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	timer      ports.DeliveryTimer
	mailer     ports.Mailer
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewAcceptOrderCommandHandler(
	uowFactory OrderUoWFactory,
	timer ports.DeliveryTimer,
	mailer ports.Mailer,
	clock clockwork.Clock,
	logger *slog.Logger,
) *AcceptOrderCommandHandler {
	return &AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		timer:      timer,
		mailer:     mailer,
		clock:      clock,
		logger:     logger.With("component", "accept-order"),
	}
}

// Handle accepts a Requested order. Any other status yields errs.ErrStatusTransitionIsInvalid.
func (h *AcceptOrderCommandHandler) Handle(ctx context.Context, command AcceptOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	estimate := command.Estimate()

	accepted, err := transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		return true, o.Accept(estimate, h.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	if err = h.timer.Arm(accepted.ID(), estimate.Delay()); err != nil {
		h.logger.ErrorContext(ctx, "failed to arm delivery timer",
			"order_id", accepted.ID().Int64(),
			"error", err,
		)
	}

	if err = h.mailer.SendOrderAccepted(ctx, accepted); err != nil {
		h.logger.WarnContext(ctx, "failed to send acceptance email",
			"order_id", accepted.ID().Int64(),
			"error", err,
		)
	}

	return accepted, nil
}
