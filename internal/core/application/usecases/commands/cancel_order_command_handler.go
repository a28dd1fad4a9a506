package commands

import (
	"context"
	"log/slog"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"

	"github.com/jonboulle/clockwork"
)

// CancelOrderCommandHandler cancels orders. Money is returned through RefundOrderCommand,
// cancelling alone never refunds.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	timer      ports.DeliveryTimer
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	timer ports.DeliveryTimer,
	clock clockwork.Clock,
	logger *slog.Logger,
) *CancelOrderCommandHandler {
	return &CancelOrderCommandHandler{
		uowFactory: uowFactory,
		timer:      timer,
		clock:      clock,
		logger:     logger.With("component", "cancel-order"),
	}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, command CancelOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	cancelled, err := transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		return true, o.Cancel(h.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	disarm(ctx, h.timer, h.logger, cancelled)

	return cancelled, nil
}

// disarm drops the completion scheduled for an order that reached a terminal status
// by other means. A failure only leaves a job that will find the order terminal.
func disarm(ctx context.Context, timer ports.DeliveryTimer, logger *slog.Logger, o *order.Order) {
	if err := timer.Disarm(o.ID()); err != nil {
		logger.WarnContext(ctx, "failed to disarm delivery timer",
			"order_id", o.ID().Int64(),
			"error", err,
		)
	}
}
