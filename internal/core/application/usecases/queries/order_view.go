// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries read the tables directly and return JSON-ready views.
package queries

import (
	"context"
	"time"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"

	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderView is the read model of an order as shown to customers and operators.
// It is also the element of the live feed snapshot.
type OrderView struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customerId"`
	CustomerEmail string          `json:"customerEmail"`
	Status        string          `json:"status"          copier:"-"`
	Total         string          `json:"total"`
	Paid          bool            `json:"paid"`
	DeliveryTime  *string         `json:"deliveryTime"`
	DeliveryDueAt *time.Time      `json:"deliveryDueAt"`
	RejectionSeen bool            `json:"rejectionSeen"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Items         []OrderItemView `json:"items"           copier:"-"`
}

// OrderItemView is one line of an OrderView.
type OrderItemView struct {
	ProductID   int64    `json:"productId"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	UnitPrice   string   `json:"unitPrice"`
	Ingredients []string `json:"ingredients"`
	Options     []string `json:"options"`
}

// NewOrderView renders an aggregate the way the queries render its stored row.
func NewOrderView(o *order.Order) OrderView {
	view := OrderView{
		ID:            o.ID().Int64(),
		CustomerID:    o.CustomerID().Int64(),
		CustomerEmail: o.CustomerEmail(),
		Status:        o.Status().String(),
		Total:         o.Total().String(),
		Paid:          o.IsPaid(),
		DeliveryDueAt: o.DeliveryDueAt(),
		RejectionSeen: o.RejectionSeen(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
		Items:         make([]OrderItemView, 0, len(o.Items())),
	}
	if estimate, ok := o.DeliveryEstimate(); ok {
		s := estimate.String()
		view.DeliveryTime = &s
	}

	for _, item := range o.Items() {
		view.Items = append(view.Items, OrderItemView{
			ProductID:   item.ProductID().Int64(),
			Name:        item.Name(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().String(),
			Ingredients: nonNil(item.Ingredients()),
			Options:     nonNil(item.Options()),
		})
	}

	return view
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type orderRow struct {
	ID            int64
	CustomerID    int64
	CustomerEmail string
	Total         decimal.Decimal
	Paid          bool
	Status        int
	DeliveryTime  *string
	DeliveryDueAt *time.Time
	RejectionSeen bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type orderItemRow struct {
	OrderID     int64
	ProductID   int64
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	Ingredients []string `gorm:"serializer:json"`
	Options     []string `gorm:"serializer:json"`
}

var copyOptions = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(decimal.Decimal).StringFixed(kernel.MoneyScale), nil
			},
		},
	},
}

// loadOrderViews attaches line items to rows, keeping the order of rows.
func loadOrderViews(ctx context.Context, db *gorm.DB, rows []orderRow) ([]OrderView, error) {
	views := make([]OrderView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var items []orderItemRow
	err := db.WithContext(ctx).
		Table("order_items").
		Select("order_id, product_id, name, quantity, unit_price, ingredients, options").
		Where("order_id IN ?", ids).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]OrderItemView, len(rows))
	for _, item := range items {
		var view OrderItemView
		if err = copier.CopyWithOption(&view, &item, copyOptions); err != nil {
			return nil, err
		}
		view.Ingredients = nonNil(view.Ingredients)
		view.Options = nonNil(view.Options)
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], view)
	}

	for _, row := range rows {
		var view OrderView
		if err = copier.CopyWithOption(&view, &row, copyOptions); err != nil {
			return nil, err
		}
		view.Status = order.Status(row.Status).String()
		view.Items = itemsByOrder[row.ID]
		if view.Items == nil {
			view.Items = []OrderItemView{}
		}
		views = append(views, view)
	}

	return views, nil
}

const orderColumns = `
	id,
	customer_id,
	customer_email,
	total,
	paid,
	status,
	delivery_time,
	delivery_due_at,
	rejection_seen,
	created_at,
	updated_at`
