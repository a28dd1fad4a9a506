package commands

import (
	"context"
	"fmt"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"
	"souvlaki/internal/pkg/errs"

	"github.com/jonboulle/clockwork"
)

// PlaceOrderCommandHandler turns a completed checkout into a requested order.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   ports.PaymentGateway
	clock      clockwork.Clock
}

func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentGateway,
	clock clockwork.Clock,
) *PlaceOrderCommandHandler {
	return &PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		clock:      clock,
	}
}

// Handle verifies the payment with the provider before anything is stored; an order whose
// payment did not succeed is rejected with errs.ErrValueIsInvalid.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	paid, err := h.payments.PaymentSucceeded(ctx, command.PaymentRef())
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"paymentRef",
			fmt.Errorf("payment %s has not succeeded", command.PaymentRef()),
		)
	}

	placed, err := order.NewOrder(
		command.CustomerID(),
		command.CustomerEmail(),
		command.Items(),
		command.PaymentRef(),
		paid,
		h.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, placed); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return placed, nil
}
