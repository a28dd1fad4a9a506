package commands

import (
	"context"
	"fmt"
	"log/slog"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"
	"souvlaki/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// refundKeyNamespace scopes the name-based idempotency keys sent with refunds.
var refundKeyNamespace = uuid.MustParse("8f0c3f4e-2b7a-4c55-9d0e-6a1f2b3c4d5e")

// RefundOrderCommandHandler refunds a paid order through the payment provider and then
// cancels or rejects it.
//
// The refund is requested inside the order transaction, before the status write, with the
// order row locked so the delivery timer cannot complete it in between. If the write still
// fails the operator can retry: the idempotency key is derived from the order and the
// amount, so the provider does not pay twice.
type RefundOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   ports.PaymentGateway
	timer      ports.DeliveryTimer
	mailer     ports.Mailer
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewRefundOrderCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentGateway,
	timer ports.DeliveryTimer,
	mailer ports.Mailer,
	clock clockwork.Clock,
	logger *slog.Logger,
) *RefundOrderCommandHandler {
	return &RefundOrderCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		timer:      timer,
		mailer:     mailer,
		clock:      clock,
		logger:     logger.With("component", "refund-order"),
	}
}

func (h *RefundOrderCommandHandler) Handle(ctx context.Context, command RefundOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	var issued *ports.RefundResult

	refunded, err := transitionLockedOrder(ctx, h.uowFactory, command.OrderID(), func(o *order.Order) (bool, error) {
		amount, ok := command.Amount()
		if !ok {
			amount = o.Total()
		}
		if err := o.ValidateRefund(amount); err != nil {
			return false, err
		}

		paid, err := h.payments.PaymentSucceeded(ctx, o.PaymentRef())
		if err != nil {
			return false, err
		}
		if !paid {
			return false, errs.NewValueIsInvalidErrorWithCause(
				"order",
				fmt.Errorf("payment %s has not succeeded", o.PaymentRef()),
			)
		}

		result, err := h.payments.Refund(ctx, ports.RefundRequest{
			PaymentRef:     o.PaymentRef(),
			Amount:         amount,
			IdempotencyKey: RefundIdempotencyKey(o.ID(), amount),
		})
		if err != nil {
			return false, err
		}
		issued = &result

		h.logger.InfoContext(ctx, "refund issued",
			"order_id", o.ID().Int64(),
			"refund_id", result.RefundID,
			"refund_status", result.Status,
			"amount", amount.String(),
		)

		if command.TargetStatus() == order.Rejected {
			return true, o.Reject(h.clock.Now())
		}
		return true, o.Cancel(h.clock.Now())
	})
	if err != nil {
		if issued != nil {
			h.logger.ErrorContext(ctx, "refund issued but order not closed",
				"order_id", command.OrderID().Int64(),
				"refund_id", issued.RefundID,
				"error", err,
			)
		}
		return nil, err
	}

	disarm(ctx, h.timer, h.logger, refunded)
	if refunded.Status() == order.Rejected {
		notifyRejected(ctx, h.mailer, h.logger, refunded)
	}

	return refunded, nil
}

// RefundIdempotencyKey is stable for the same order and amount.
func RefundIdempotencyKey(orderID kernel.ID, amount kernel.Money) string {
	name := fmt.Sprintf("order:%d:refund:%d", orderID.Int64(), amount.Cents())
	return uuid.NewSHA1(refundKeyNamespace, []byte(name)).String()
}
