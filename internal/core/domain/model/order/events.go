package order

import (
	"time"

	"souvlaki/internal/core/domain/model/kernel"
)

// StatusChanged is raised by every successful transition, including placement
// (From is Unknown then).
type StatusChanged struct {
	OrderID    kernel.ID
	From       Status
	To         Status
	OccurredAt time.Time
}
