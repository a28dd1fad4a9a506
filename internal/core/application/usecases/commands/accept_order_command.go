package commands

import (
	"errors"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand moves a requested order to pending with the delivery estimate
// promised to the customer.
//
// Example:
//
//	cmd, err := NewAcceptOrderCommand(orderID, "25-30")
//	if err != nil {
//	    return err // malformed estimate, nothing was changed
//	}
//	accepted, err := handler.Handle(ctx, cmd)
type AcceptOrderCommand struct {
	orderID  kernel.ID
	estimate kernel.DeliveryEstimate

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand parses deliveryTime ("<minutes>-<minutes>") up front so a malformed
// estimate never reaches the store.
func NewAcceptOrderCommand(orderID kernel.ID, deliveryTime string) (AcceptOrderCommand, error) {
	estimate, err := kernel.ParseDeliveryEstimate(deliveryTime)
	if err = errors.Join(orderID.Validate(), err); err != nil {
		return AcceptOrderCommand{}, err
	}

	return AcceptOrderCommand{
		orderID:  orderID,
		estimate: estimate,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c *AcceptOrderCommand) OrderID() kernel.ID {
	return c.orderID
}

func (c *AcceptOrderCommand) Estimate() kernel.DeliveryEstimate {
	return c.estimate
}

// Validate ensures the command was created through the constructor.
func (c *AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}
