package ports

import (
	"context"

	"souvlaki/internal/core/domain/model/order"
)

// EventPublisher delivers committed order status changes to interested parties
// (live feed wake-ups, other instances, downstream consumers).
type EventPublisher interface {
	Publish(ctx context.Context, events ...order.StatusChanged) error
}
