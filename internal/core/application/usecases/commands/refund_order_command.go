package commands

import (
	"errors"
	"fmt"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"
	"souvlaki/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrRefundOrderCommandIsNotConstructed = errors.New(
	"RefundOrderCommand must be created via NewRefundOrderCommand constructor",
)

// RefundOrderCommand returns money for an order and closes it.
// A nil amount refunds the full total. targetStatus is Cancelled or Rejected.
type RefundOrderCommand struct {
	orderID      kernel.ID
	amount       *kernel.Money
	targetStatus order.Status

	guard guard.ConstructorGuard
}

// NewRefundOrderCommand accepts an empty status as "cancelled".
func NewRefundOrderCommand(orderID kernel.ID, amount *decimal.Decimal, status string) (RefundOrderCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}

	var money *kernel.Money
	if amount != nil {
		m, err := kernel.NewMoney(*amount)
		if err != nil {
			errList = append(errList, err)
		} else {
			money = &m
		}
	}

	target := order.Cancelled
	if status != "" {
		parsed, err := order.ParseStatus(status)
		switch {
		case err != nil:
			errList = append(errList, err)
		case parsed != order.Cancelled && parsed != order.Rejected:
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"status",
				fmt.Errorf("refund can only end in %s or %s, got %s", order.Cancelled, order.Rejected, parsed),
			))
		default:
			target = parsed
		}
	}

	if err := errors.Join(errList...); err != nil {
		return RefundOrderCommand{}, err
	}

	return RefundOrderCommand{
		orderID:      orderID,
		amount:       money,
		targetStatus: target,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c *RefundOrderCommand) OrderID() kernel.ID {
	return c.orderID
}

// Amount returns the requested amount and false when the full total should be refunded.
func (c *RefundOrderCommand) Amount() (kernel.Money, bool) {
	if c.amount == nil {
		return kernel.Money{}, false
	}
	return *c.amount, true
}

func (c *RefundOrderCommand) TargetStatus() order.Status {
	return c.targetStatus
}

func (c *RefundOrderCommand) Validate() error {
	return c.guard.Validate(ErrRefundOrderCommandIsNotConstructed)
}
