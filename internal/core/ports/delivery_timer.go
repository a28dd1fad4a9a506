package ports

import (
	"time"

	"souvlaki/internal/core/domain/model/kernel"
)

// DeliveryTimer schedules the automatic completion of accepted orders.
type DeliveryTimer interface {
	// Arm schedules one completion attempt for the order after delay, replacing any
	// attempt already scheduled for it. A zero delay completes almost immediately.
	Arm(orderID kernel.ID, delay time.Duration) error

	// Disarm drops the scheduled attempt for the order, if any.
	Disarm(orderID kernel.ID) error
}
