package commands

import (
	"errors"
	"fmt"
	"strings"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"
	"souvlaki/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderItem is one requested line as submitted at checkout.
type PlaceOrderItem struct {
	ProductID   int64
	Name        string
	Quantity    int
	UnitPrice   decimal.Decimal
	Ingredients []string
	Options     []string
}

// PlaceOrderCommand creates a requested order once the customer's payment was captured.
//
// Example:
//
//	cmd, err := NewPlaceOrderCommand(customerID, "maria@example.com", "pi_3Nx...", []PlaceOrderItem{
//	    {ProductID: 7, Name: "Pita gyros", Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
//	})
type PlaceOrderCommand struct {
	customerID    kernel.ID
	customerEmail string
	paymentRef    string
	items         []order.LineItem

	guard guard.ConstructorGuard
}

func NewPlaceOrderCommand(
	customerID kernel.ID,
	customerEmail string,
	paymentRef string,
	items []PlaceOrderItem,
) (PlaceOrderCommand, error) {
	var errList []error
	if err := customerID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if strings.TrimSpace(customerEmail) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("customerEmail"))
	}
	if strings.TrimSpace(paymentRef) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("paymentRef"))
	}
	if len(items) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("items"))
	}

	lines := make([]order.LineItem, 0, len(items))
	for i, item := range items {
		line, err := toLineItem(item)
		if err != nil {
			errList = append(errList, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		lines = append(lines, line)
	}

	if err := errors.Join(errList...); err != nil {
		return PlaceOrderCommand{}, err
	}

	return PlaceOrderCommand{
		customerID:    customerID,
		customerEmail: strings.TrimSpace(customerEmail),
		paymentRef:    strings.TrimSpace(paymentRef),
		items:         lines,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func toLineItem(item PlaceOrderItem) (order.LineItem, error) {
	price, err := kernel.NewMoney(item.UnitPrice)
	if err != nil {
		return order.LineItem{}, err
	}
	return order.NewLineItem(
		kernel.ID(item.ProductID),
		item.Name,
		item.Quantity,
		price,
		item.Ingredients,
		item.Options,
	)
}

func (c *PlaceOrderCommand) CustomerID() kernel.ID {
	return c.customerID
}

func (c *PlaceOrderCommand) CustomerEmail() string {
	return c.customerEmail
}

func (c *PlaceOrderCommand) PaymentRef() string {
	return c.paymentRef
}

func (c *PlaceOrderCommand) Items() []order.LineItem {
	return c.items
}

func (c *PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}
