package commands

import (
	"errors"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"
	"souvlaki/internal/pkg/guard"
)

// MaxDeliveryAdjustment bounds a single adjustment in either direction, in minutes.
const MaxDeliveryAdjustment = 240

var ErrAdjustDeliveryEstimateCommandIsNotConstructed = errors.New(
	"AdjustDeliveryEstimateCommand must be created via NewAdjustDeliveryEstimateCommand constructor",
)

// AdjustDeliveryEstimateCommand shifts the estimate of a pending order by deltaMinutes.
// currentRange is the estimate the operator was looking at when requesting the change.
type AdjustDeliveryEstimateCommand struct {
	orderID      kernel.ID
	deltaMinutes int
	currentRange kernel.DeliveryEstimate

	guard guard.ConstructorGuard
}

func NewAdjustDeliveryEstimateCommand(
	orderID kernel.ID,
	deltaMinutes int,
	currentRange string,
) (AdjustDeliveryEstimateCommand, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if deltaMinutes < -MaxDeliveryAdjustment || deltaMinutes > MaxDeliveryAdjustment {
		errList = append(errList, errs.NewValueIsOutOfRangeError(
			"deltaMinutes", deltaMinutes, -MaxDeliveryAdjustment, MaxDeliveryAdjustment))
	}
	current, err := kernel.ParseDeliveryEstimate(currentRange)
	if err != nil {
		errList = append(errList, err)
	}
	if err = errors.Join(errList...); err != nil {
		return AdjustDeliveryEstimateCommand{}, err
	}

	return AdjustDeliveryEstimateCommand{
		orderID:      orderID,
		deltaMinutes: deltaMinutes,
		currentRange: current,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c *AdjustDeliveryEstimateCommand) OrderID() kernel.ID {
	return c.orderID
}

func (c *AdjustDeliveryEstimateCommand) DeltaMinutes() int {
	return c.deltaMinutes
}

func (c *AdjustDeliveryEstimateCommand) CurrentRange() kernel.DeliveryEstimate {
	return c.currentRange
}

func (c *AdjustDeliveryEstimateCommand) Validate() error {
	return c.guard.Validate(ErrAdjustDeliveryEstimateCommandIsNotConstructed)
}
