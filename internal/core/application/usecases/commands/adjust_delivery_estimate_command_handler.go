package commands

import (
	"context"

	"souvlaki/internal/core/domain/model/order"

	"github.com/jonboulle/clockwork"
)

// AdjustDeliveryEstimateCommandHandler stores a new estimate for a pending order.
// The stored estimate is the previous value the adjustment reconciles against.
// The delivery timer keeps its original schedule.
type AdjustDeliveryEstimateCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      clockwork.Clock
}

func NewAdjustDeliveryEstimateCommandHandler(
	uowFactory OrderUoWFactory,
	clock clockwork.Clock,
) *AdjustDeliveryEstimateCommandHandler {
	return &AdjustDeliveryEstimateCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h *AdjustDeliveryEstimateCommandHandler) Handle(
	ctx context.Context,
	command AdjustDeliveryEstimateCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	return transitionOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		return true, o.AdjustDeliveryEstimate(command.DeltaMinutes(), command.CurrentRange(), h.clock.Now())
	})
}
