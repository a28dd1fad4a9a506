package commands

import (
	"errors"

	"souvlaki/internal/pkg/guard"
)

var ErrCompleteOverdueOrdersCommandIsNotConstructed = errors.New(
	"CompleteOverdueOrdersCommand must be created via NewCompleteOverdueOrdersCommand constructor",
)

// CompleteOverdueOrdersCommand completes every pending order whose scheduled completion
// has passed. It catches up on timers lost with a restarted process.
type CompleteOverdueOrdersCommand struct {
	guard guard.ConstructorGuard
}

func NewCompleteOverdueOrdersCommand() CompleteOverdueOrdersCommand {
	return CompleteOverdueOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *CompleteOverdueOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCompleteOverdueOrdersCommandIsNotConstructed)
}
