package ports

import (
	"context"

	"souvlaki/internal/core/domain/model/kernel"
)

// RefundRequest asks the payment provider to return money for a captured payment.
type RefundRequest struct {
	PaymentRef     string
	Amount         kernel.Money
	IdempotencyKey string
}

// RefundResult is the provider's answer to a refund.
type RefundResult struct {
	RefundID string
	Status   string
}

// PaymentGateway wraps the external payment processor.
type PaymentGateway interface {
	// PaymentSucceeded reports whether the payment referenced by paymentRef was captured.
	PaymentSucceeded(ctx context.Context, paymentRef string) (bool, error)

	// Refund returns money for a captured payment.
	Refund(ctx context.Context, req RefundRequest) (RefundResult, error)
}
