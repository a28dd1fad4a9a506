package queries_test

import (
	"testing"
	"time"

	"souvlaki/internal/core/application/usecases/queries"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderView(t *testing.T) {
	price, err := kernel.MoneyFromCents(450)
	require.NoError(t, err)
	item, err := order.NewLineItem(7, "Pita gyros", 2, price, []string{"no onion"}, nil)
	require.NoError(t, err)
	o, err := order.NewOrder(3, "maria@example.com", []order.LineItem{item}, "pi_123", true, placedAt)
	require.NoError(t, err)
	require.NoError(t, o.AssignID(42))
	estimate, err := kernel.ParseDeliveryEstimate("25-30")
	require.NoError(t, err)
	require.NoError(t, o.Accept(estimate, placedAt))

	view := queries.NewOrderView(o)

	assert.Equal(t, int64(42), view.ID)
	assert.Equal(t, int64(3), view.CustomerID)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "9.00", view.Total)
	assert.True(t, view.Paid)
	require.NotNil(t, view.DeliveryTime)
	assert.Equal(t, "25-30", *view.DeliveryTime)
	require.NotNil(t, view.DeliveryDueAt)
	assert.Equal(t, placedAt.Add(25*time.Minute), *view.DeliveryDueAt)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "4.50", view.Items[0].UnitPrice)
	assert.Equal(t, []string{"no onion"}, view.Items[0].Ingredients)
	assert.Equal(t, []string{}, view.Items[0].Options)
}

func TestNewOrderView_RequestedOrderHasNoEstimate(t *testing.T) {
	o, err := order.RestoreOrder(order.State{ID: 5, CustomerID: 3, Status: order.Requested, Total: kernel.ZeroMoney()})
	require.NoError(t, err)

	view := queries.NewOrderView(o)

	assert.Nil(t, view.DeliveryTime)
	assert.Nil(t, view.DeliveryDueAt)
	assert.Equal(t, "0.00", view.Total)
	assert.NotNil(t, view.Items)
}
