package commands

import (
	"errors"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/guard"
)

var ErrCompleteOrderCommandIsNotConstructed = errors.New(
	"CompleteOrderCommand must be created via NewCompleteOrderCommand constructor",
)

// CompleteOrderCommand marks an order as delivered.
// Issued by operators and by the delivery timer; completing twice is harmless.
type CompleteOrderCommand struct {
	orderID kernel.ID

	guard guard.ConstructorGuard
}

func NewCompleteOrderCommand(orderID kernel.ID) (CompleteOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return CompleteOrderCommand{}, err
	}

	return CompleteOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c *CompleteOrderCommand) OrderID() kernel.ID {
	return c.orderID
}

// Validate ensures the command was created through the constructor.
func (c *CompleteOrderCommand) Validate() error {
	return c.guard.Validate(ErrCompleteOrderCommandIsNotConstructed)
}
