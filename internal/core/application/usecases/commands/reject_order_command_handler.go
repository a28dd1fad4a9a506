package commands

import (
	"context"
	"log/slog"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"

	"github.com/jonboulle/clockwork"
)

// RejectOrderCommandHandler rejects orders and tells the customer about it.
type RejectOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	timer      ports.DeliveryTimer
	mailer     ports.Mailer
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewRejectOrderCommandHandler(
	uowFactory OrderUoWFactory,
	timer ports.DeliveryTimer,
	mailer ports.Mailer,
	clock clockwork.Clock,
	logger *slog.Logger,
) *RejectOrderCommandHandler {
	return &RejectOrderCommandHandler{
		uowFactory: uowFactory,
		timer:      timer,
		mailer:     mailer,
		clock:      clock,
		logger:     logger.With("component", "reject-order"),
	}
}

func (h *RejectOrderCommandHandler) Handle(ctx context.Context, command RejectOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	rejected, err := transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		return true, o.Reject(h.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	disarm(ctx, h.timer, h.logger, rejected)
	notifyRejected(ctx, h.mailer, h.logger, rejected)

	return rejected, nil
}

func notifyRejected(ctx context.Context, mailer ports.Mailer, logger *slog.Logger, o *order.Order) {
	if err := mailer.SendOrderRejected(ctx, o); err != nil {
		logger.WarnContext(ctx, "failed to send rejection email",
			"order_id", o.ID().Int64(),
			"error", err,
		)
	}
}
