package commands

import (
	"errors"

	"souvlaki/internal/pkg/guard"
)

var ErrRearmDeliveryTimersCommandIsNotConstructed = errors.New(
	"RearmDeliveryTimersCommand must be created via NewRearmDeliveryTimersCommand constructor",
)

// RearmDeliveryTimersCommand restores the in-memory delivery timers of all pending orders
// from their persisted due time. Issued once at startup.
type RearmDeliveryTimersCommand struct {
	guard guard.ConstructorGuard
}

func NewRearmDeliveryTimersCommand() RearmDeliveryTimersCommand {
	return RearmDeliveryTimersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *RearmDeliveryTimersCommand) Validate() error {
	return c.guard.Validate(ErrRearmDeliveryTimersCommandIsNotConstructed)
}
