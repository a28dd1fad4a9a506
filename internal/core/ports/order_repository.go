package ports

import (
	"context"
	"time"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a newly placed order and assigns its id.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order as a single conditional write:
	// the row is only updated while its stored status still equals the status the
	// aggregate was loaded with. A lost race is reported as errs.ErrConcurrentModification,
	// an unknown id as errs.ErrObjectNotFound.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its line items.
	Get(ctx context.Context, id kernel.ID) (*order.Order, error)

	// GetForUpdate is Get holding a row lock until the transaction ends, so competing
	// transitions of the same order wait instead of racing the conditional Update.
	GetForUpdate(ctx context.Context, id kernel.ID) (*order.Order, error)

	// GetAllInPendingStatus returns every accepted order awaiting completion.
	GetAllInPendingStatus(ctx context.Context) ([]*order.Order, error)

	// GetAllOverdue returns Pending orders whose scheduled completion is at or before now.
	GetAllOverdue(ctx context.Context, now time.Time) ([]*order.Order, error)
}
