package commands

import (
	"context"
	"errors"
	"log/slog"

	"souvlaki/internal/pkg/errs"

	"github.com/jonboulle/clockwork"
)

// CompleteOverdueOrdersCommandHandler runs the completion of each overdue order in its own
// transaction. One failing order does not stop the others; a lost race with an operator
// (the order was cancelled meanwhile) is expected and only logged at debug level.
type CompleteOverdueOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	complete   *CompleteOrderCommandHandler
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewCompleteOverdueOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	complete *CompleteOrderCommandHandler,
	clock clockwork.Clock,
	logger *slog.Logger,
) *CompleteOverdueOrdersCommandHandler {
	return &CompleteOverdueOrdersCommandHandler{
		uowFactory: uowFactory,
		complete:   complete,
		clock:      clock,
		logger:     logger.With("component", "complete-overdue-orders"),
	}
}

// Handle returns the number of orders it completed.
func (h *CompleteOverdueOrdersCommandHandler) Handle(
	ctx context.Context,
	command CompleteOverdueOrdersCommand,
) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	overdue, err := h.uowFactory.Create().OrderRepository().GetAllOverdue(ctx, h.clock.Now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, o := range overdue {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}

		cmd, err := NewCompleteOrderCommand(o.ID())
		if err != nil {
			return completed, err
		}

		_, err = h.complete.Handle(ctx, cmd)
		switch {
		case err == nil:
			completed++
		case errors.Is(err, errs.ErrConcurrentModification), errors.Is(err, errs.ErrStatusTransitionIsInvalid):
			h.logger.DebugContext(ctx, "overdue order changed concurrently", "order_id", o.ID().Int64(), "error", err)
		default:
			h.logger.ErrorContext(ctx, "failed to complete overdue order", "order_id", o.ID().Int64(), "error", err)
		}
	}

	return completed, nil
}
