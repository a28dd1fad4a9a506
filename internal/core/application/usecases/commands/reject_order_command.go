package commands

import (
	"errors"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand declines an order that was not delivered yet.
type RejectOrderCommand struct {
	orderID kernel.ID

	guard guard.ConstructorGuard
}

func NewRejectOrderCommand(orderID kernel.ID) (RejectOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RejectOrderCommand{}, err
	}

	return RejectOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c *RejectOrderCommand) OrderID() kernel.ID {
	return c.orderID
}

// Validate ensures the command was created through the constructor.
func (c *RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}
