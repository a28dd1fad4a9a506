package order

import (
	"errors"
	"slices"
	"strings"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"
)

// MaxItemQuantity caps the quantity of a single line.
const MaxItemQuantity = 99

// LineItem is one product in an order, with the price and name captured at checkout.
type LineItem struct {
	productID   kernel.ID
	name        string
	quantity    int
	unitPrice   kernel.Money
	ingredients []string
	options     []string
}

// NewLineItem validates a line. Ingredients are the customer's customizations,
// options the selected product options; both may be empty.
func NewLineItem(
	productID kernel.ID,
	name string,
	quantity int,
	unitPrice kernel.Money,
	ingredients []string,
	options []string,
) (LineItem, error) {
	var errList []error
	if err := productID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}
	if quantity < 1 || quantity > MaxItemQuantity {
		errList = append(errList, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, MaxItemQuantity))
	}
	if err := unitPrice.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return LineItem{}, err
	}

	return LineItem{
		productID:   productID,
		name:        name,
		quantity:    quantity,
		unitPrice:   unitPrice,
		ingredients: slices.Clone(ingredients),
		options:     slices.Clone(options),
	}, nil
}

func (i LineItem) ProductID() kernel.ID {
	return i.productID
}

func (i LineItem) Name() string {
	return i.name
}

func (i LineItem) Quantity() int {
	return i.quantity
}

func (i LineItem) UnitPrice() kernel.Money {
	return i.unitPrice
}

// Subtotal is quantity times unit price.
func (i LineItem) Subtotal() kernel.Money {
	return i.unitPrice.Times(i.quantity)
}

func (i LineItem) Ingredients() []string {
	return slices.Clone(i.ingredients)
}

func (i LineItem) Options() []string {
	return slices.Clone(i.options)
}
