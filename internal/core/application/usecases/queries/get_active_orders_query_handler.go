package queries

import (
	"context"

	"souvlaki/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler backs the live order feed; it runs on every poll of every
// connected operator.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle returns an empty, non-nil slice when nothing is active.
func (h GetActiveOrdersQueryHandler) Handle(ctx context.Context, query GetActiveOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	statuses := make([]int, 0, 2)
	for _, s := range order.ActiveStatuses() {
		statuses = append(statuses, int(s))
	}

	var rows []orderRow
	err := h.db.WithContext(ctx).
		Raw(`SELECT `+orderColumns+` FROM orders WHERE status IN ? ORDER BY id DESC`, statuses).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return loadOrderViews(ctx, h.db, rows)
}
