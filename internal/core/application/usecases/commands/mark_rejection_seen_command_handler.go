package commands

import (
	"context"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"

	"github.com/jonboulle/clockwork"
)

type MarkRejectionSeenCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clockwork.Clock
}

func NewMarkRejectionSeenCommandHandler(uowFactory OrderUoWFactory, clock clockwork.Clock) *MarkRejectionSeenCommandHandler {
	return &MarkRejectionSeenCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle sets the flag. Orders of other customers are reported as not found.
func (h *MarkRejectionSeenCommandHandler) Handle(
	ctx context.Context,
	command MarkRejectionSeenCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		if o.CustomerID() != command.CustomerID() {
			return false, errs.NewObjectNotFoundError("order", command.OrderID())
		}
		return o.MarkRejectionSeen(h.clock.Now())
	})
}
