package commands

import (
	"errors"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/guard"
)

var ErrMarkRejectionSeenCommandIsNotConstructed = errors.New(
	"MarkRejectionSeenCommand must be created via NewMarkRejectionSeenCommand constructor",
)

// MarkRejectionSeenCommand records that the customer who placed a rejected order saw the rejection.
type MarkRejectionSeenCommand struct {
	orderID    kernel.ID
	customerID kernel.ID

	guard guard.ConstructorGuard
}

func NewMarkRejectionSeenCommand(orderID, customerID kernel.ID) (MarkRejectionSeenCommand, error) {
	if err := errors.Join(orderID.Validate(), customerID.Validate()); err != nil {
		return MarkRejectionSeenCommand{}, err
	}

	return MarkRejectionSeenCommand{
		orderID:    orderID,
		customerID: customerID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c *MarkRejectionSeenCommand) OrderID() kernel.ID {
	return c.orderID
}

func (c *MarkRejectionSeenCommand) CustomerID() kernel.ID {
	return c.customerID
}

func (c *MarkRejectionSeenCommand) Validate() error {
	return c.guard.Validate(ErrMarkRejectionSeenCommandIsNotConstructed)
}
