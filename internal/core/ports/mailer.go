package ports

import (
	"context"

	"souvlaki/internal/core/domain/model/order"
)

// Mailer notifies customers about decisions on their orders.
type Mailer interface {
	SendOrderAccepted(ctx context.Context, o *order.Order) error
	SendOrderRejected(ctx context.Context, o *order.Order) error
}
