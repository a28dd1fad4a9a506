package http

import (
	"souvlaki/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the checkout submitted once the payment intent succeeded.
type PlaceOrderRequest struct {
	PaymentRef    string                  `json:"paymentRef"    validate:"required"`
	CustomerEmail string                  `json:"customerEmail" validate:"required,email"`
	Items         []PlaceOrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type PlaceOrderItemRequest struct {
	ProductID   int64           `json:"productId"   validate:"required,gt=0"`
	Name        string          `json:"name"        validate:"required"`
	Quantity    int             `json:"quantity"    validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"   swaggertype:"string" example:"4.50"`
	Ingredients []string        `json:"ingredients"`
	Options     []string        `json:"options"`
}

type AcceptOrderRequest struct {
	DeliveryTime string `json:"deliveryTime" validate:"required,max=11" maxLength:"11" example:"25-30"`
}

type AdjustDeliveryTimeRequest struct {
	DeltaMinutes int    `json:"deltaMinutes" example:"10"`
	CurrentRange string `json:"currentRange" validate:"required" example:"25-30"`
}

// RefundOrderRequest refunds the full total into a cancelled order when empty.
type RefundOrderRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty" swaggertype:"string" example:"12.00"`
	Status string           `json:"status,omitempty" validate:"omitempty,oneof=cancelled rejected"`
}

// OrderResponse wraps the order returned by every order endpoint.
type OrderResponse struct {
	Order queries.OrderView `json:"order"`
}
