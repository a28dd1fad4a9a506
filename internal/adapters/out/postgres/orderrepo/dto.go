// Package orderrepo persists the order aggregate with gorm. Orders live in the "orders"
// table, their line items in "order_items".
package orderrepo

import (
	"time"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure of an order. Status is stored as its integer
// value and indexed since every feed poll and the delivery sweep filter on it.
type OrderDTO struct {
	ID            int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID    int64           `gorm:"not null;index"`
	CustomerEmail string          `gorm:"size:320;not null"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Paid          bool            `gorm:"not null;default:false"`
	PaymentRef    string          `gorm:"size:255;not null"`
	Status        int             `gorm:"not null;index"`
	DeliveryTime  *string         `gorm:"size:32"`
	DeliveryDueAt *time.Time      `gorm:"index"`
	RejectionSeen bool            `gorm:"not null;default:false"`
	CreatedAt     time.Time       `gorm:"autoCreateTime:false;not null"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime:false;not null"`
	Items         []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one line item. Customizations are stored as json arrays.
type OrderItemDTO struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"not null;index"`
	ProductID   int64           `gorm:"not null"`
	Name        string          `gorm:"size:255;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Ingredients []string        `gorm:"serializer:json;type:jsonb"`
	Options     []string        `gorm:"serializer:json;type:jsonb"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:            aggregate.ID().Int64(),
		CustomerID:    aggregate.CustomerID().Int64(),
		CustomerEmail: aggregate.CustomerEmail(),
		Total:         aggregate.Total().Decimal(),
		Paid:          aggregate.IsPaid(),
		PaymentRef:    aggregate.PaymentRef(),
		Status:        int(aggregate.Status()),
		DeliveryDueAt: aggregate.DeliveryDueAt(),
		RejectionSeen: aggregate.RejectionSeen(),
		CreatedAt:     aggregate.CreatedAt(),
		UpdatedAt:     aggregate.UpdatedAt(),
	}

	if estimate, ok := aggregate.DeliveryEstimate(); ok {
		s := estimate.String()
		dto.DeliveryTime = &s
	}

	for _, item := range aggregate.Items() {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:     dto.ID,
			ProductID:   item.ProductID().Int64(),
			Name:        item.Name(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().Decimal(),
			Ingredients: item.Ingredients(),
			Options:     item.Options(),
		})
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	var estimate *kernel.DeliveryEstimate
	if dto.DeliveryTime != nil {
		parsed, parseErr := kernel.ParseDeliveryEstimate(*dto.DeliveryTime)
		if parseErr != nil {
			return nil, parseErr
		}
		estimate = &parsed
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		price, priceErr := kernel.NewMoney(itemDTO.UnitPrice)
		if priceErr != nil {
			return nil, priceErr
		}

		item, itemErr := order.NewLineItem(
			kernel.ID(itemDTO.ProductID),
			itemDTO.Name,
			itemDTO.Quantity,
			price,
			itemDTO.Ingredients,
			itemDTO.Options,
		)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.State{
		ID:            kernel.ID(dto.ID),
		CustomerID:    kernel.ID(dto.CustomerID),
		CustomerEmail: dto.CustomerEmail,
		Items:         items,
		Total:         total,
		Paid:          dto.Paid,
		PaymentRef:    dto.PaymentRef,
		Status:        order.Status(dto.Status),
		Estimate:      estimate,
		DeliveryDueAt: dto.DeliveryDueAt,
		RejectionSeen: dto.RejectionSeen,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	})
}
