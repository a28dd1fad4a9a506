package commands

import (
	"context"

	"souvlaki/internal/core/domain/model/order"

	"github.com/jonboulle/clockwork"
)

// CompleteOrderCommandHandler completes orders.
//
// Completing an already completed order succeeds without a write, so a delivery timer
// firing after a manual completion is a no-op. Cancelled or rejected orders are never
// completed; the caller gets errs.ErrStatusTransitionIsInvalid.
type CompleteOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clockwork.Clock
}

func NewCompleteOrderCommandHandler(uowFactory OrderUoWFactory, clock clockwork.Clock) *CompleteOrderCommandHandler {
	return &CompleteOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *CompleteOrderCommandHandler) Handle(ctx context.Context, command CompleteOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		return o.Complete(h.clock.Now())
	})
}
