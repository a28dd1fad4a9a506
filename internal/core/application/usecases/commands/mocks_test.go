package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.ID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.ID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllInPendingStatus(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllOverdue(ctx context.Context, at time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDeliveryTimer struct{ mock.Mock }

func (m *MockDeliveryTimer) Arm(orderID kernel.ID, delay time.Duration) error {
	args := m.Called(orderID, delay)
	return args.Error(0)
}

func (m *MockDeliveryTimer) Disarm(orderID kernel.ID) error {
	args := m.Called(orderID)
	return args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendOrderAccepted(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockMailer) SendOrderRejected(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) PaymentSucceeded(ctx context.Context, paymentRef string) (bool, error) {
	args := m.Called(ctx, paymentRef)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, req ports.RefundRequest) (ports.RefundResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.RefundResult), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(now)
}

// requestedOrder returns a stored order in Requested status worth 12.00.
func requestedOrder(t *testing.T, id int64) *order.Order {
	t.Helper()

	gyros, err := kernel.MoneyFromCents(450)
	require.NoError(t, err)
	fries, err := kernel.MoneyFromCents(300)
	require.NoError(t, err)

	first, err := order.NewLineItem(1, "Pita gyros", 2, gyros, []string{"no onion"}, nil)
	require.NoError(t, err)
	second, err := order.NewLineItem(2, "Fries", 1, fries, nil, []string{"feta"})
	require.NoError(t, err)

	o, err := order.NewOrder(3, "maria@example.com", []order.LineItem{first, second}, "pi_123", true, now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, o.AssignID(kernel.ID(id)))
	o.MarkPersisted()
	o.ClearEvents()
	return o
}

func pendingOrder(t *testing.T, id int64, estimate string) *order.Order {
	t.Helper()

	o := requestedOrder(t, id)
	e, err := kernel.ParseDeliveryEstimate(estimate)
	require.NoError(t, err)
	require.NoError(t, o.Accept(e, now.Add(-time.Minute)))
	o.MarkPersisted()
	o.ClearEvents()
	return o
}

// expectTransition wires a uow whose repository returns o from Get and accepts the update.
func expectTransition(
	ctx context.Context,
	o *order.Order,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	return expectTransitionVia(ctx, "Get", o)
}

// expectLockedTransition is expectTransition for handlers that read with GetForUpdate.
func expectLockedTransition(
	ctx context.Context,
	o *order.Order,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	return expectTransitionVia(ctx, "GetForUpdate", o)
}

func expectTransitionVia(
	ctx context.Context,
	load string,
	o *order.Order,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On(load, ctx, o.ID()).Return(o, nil).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	return factory, uow, repo
}

// expectRead wires a uow whose transaction is rolled back after Get, without an update.
func expectRead(
	ctx context.Context,
	id kernel.ID,
	o *order.Order,
	getErr error,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	return expectReadVia(ctx, "Get", id, o, getErr)
}

func expectLockedRead(
	ctx context.Context,
	id kernel.ID,
	o *order.Order,
	getErr error,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	return expectReadVia(ctx, "GetForUpdate", id, o, getErr)
}

func expectReadVia(
	ctx context.Context,
	load string,
	id kernel.ID,
	o *order.Order,
	getErr error,
) (*MockOrderUoWFactory, *MockOrderUoW, *MockOrderRepository) {
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)

	var returned any
	if o != nil {
		returned = o
	}

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On(load, ctx, id).Return(returned, getErr).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	return factory, uow, repo
}
