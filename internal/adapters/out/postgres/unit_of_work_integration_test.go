package postgres_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	postgres_adapter "souvlaki/internal/adapters/out/postgres"
	"souvlaki/internal/adapters/out/postgres/orderrepo"
	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"
	"souvlaki/internal/pkg/errs"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var placedAt = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.StatusChanged
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...order.StatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) Events() []order.StatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]order.StatusChanged(nil), p.events...)
}

// UnitOfWorkIntegrationTestSuite verifies transactions and event publication
// against a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	publisher *recordingPublisher
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.OrderItemDTO{})
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, order_items RESTART IDENTITY").Error
	suite.Require().NoError(err)

	suite.publisher = &recordingPublisher{}
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(
		suite.db, suite.publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PublishesEventsAfterCommit() {
	ctx := context.Background()
	testOrder := suite.newOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Empty(suite.publisher.Events(), "nothing is published before commit")

	suite.Require().NoError(uow.Commit(ctx))

	events := suite.publisher.Events()
	suite.Require().Len(events, 1)
	suite.Equal(testOrder.ID(), events[0].OrderID)
	suite.Equal(order.Unknown, events[0].From)
	suite.Equal(order.Requested, events[0].To)
	suite.Empty(testOrder.Events())

	_ = uow.Rollback(ctx)
	suite.Len(suite.publisher.Events(), 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsChangesAndEvents() {
	ctx := context.Background()
	testOrder := suite.newOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Rollback(ctx))

	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Zero(count)
	suite.Empty(suite.publisher.Events())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PublisherFailureDoesNotFailCommit() {
	ctx := context.Background()
	suite.publisher.err = errors.New("broker down")
	testOrder := suite.newOrder()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	suite.Require().NoError(uow.Commit(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Requested, stored.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransition_PublishesStatusChange() {
	ctx := context.Background()
	testOrder := suite.newOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, testOrder))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.Reject(placedAt.Add(time.Minute)))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))

	events := suite.publisher.Events()
	suite.Require().Len(events, 1, "the Add outside a transaction was never committed through a unit of work")
	suite.Equal(order.Requested, events[0].From)
	suite.Equal(order.Rejected, events[0].To)
}

type noopTimer struct{}

func (noopTimer) Arm(kernel.ID, time.Duration) error { return nil }

func (noopTimer) Disarm(kernel.ID) error { return nil }

type orderUoWFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f orderUoWFactory) Create() commands.OrderUoW {
	return f.factory.Create()
}

// A timer firing while an operator cancels must leave the order either cancelled or
// completed, with the losing command reporting why it lost.
func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentCancelAndComplete_ExactlyOneWins() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewRealClock()
	factory := orderUoWFactory{factory: suite.factory}
	cancelHandler := commands.NewCancelOrderCommandHandler(factory, noopTimer{}, clock, logger)
	completeHandler := commands.NewCompleteOrderCommandHandler(factory, clock)

	for range 10 {
		pending := suite.newPendingOrder()
		cancelCmd, err := commands.NewCancelOrderCommand(pending.ID())
		suite.Require().NoError(err)
		completeCmd, err := commands.NewCompleteOrderCommand(pending.ID())
		suite.Require().NoError(err)

		var (
			wg          sync.WaitGroup
			start       = make(chan struct{})
			cancelErr   error
			completeErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, cancelErr = cancelHandler.Handle(ctx, cancelCmd)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, completeErr = completeHandler.Handle(ctx, completeCmd)
		}()
		close(start)
		wg.Wait()

		stored, err := suite.factory.Create().OrderRepository().Get(ctx, pending.ID())
		suite.Require().NoError(err)

		switch stored.Status() {
		case order.Cancelled:
			suite.NoError(cancelErr)
			suite.True(isLostRace(completeErr), "complete: %v", completeErr)
		case order.Completed:
			suite.NoError(completeErr)
			suite.True(isLostRace(cancelErr), "cancel: %v", cancelErr)
		default:
			suite.Failf("unexpected status", "order %s ended as %s", pending.ID(), stored.Status())
		}
	}
}

func isLostRace(err error) bool {
	return errors.Is(err, errs.ErrConcurrentModification) || errors.Is(err, errs.ErrStatusTransitionIsInvalid)
}

func (suite *UnitOfWorkIntegrationTestSuite) newPendingOrder() *order.Order {
	ctx := context.Background()
	o := suite.newOrder()
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	estimate, err := kernel.ParseDeliveryEstimate("25-30")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	loaded, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.Accept(estimate, placedAt))
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.Commit(ctx))
	return loaded
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	price, err := kernel.MoneyFromCents(450)
	suite.Require().NoError(err)
	item, err := order.NewLineItem(7, "Pita gyros", 1, price, nil, nil)
	suite.Require().NoError(err)
	o, err := order.NewOrder(3, "maria@example.com", []order.LineItem{item}, "pi_123", true, placedAt)
	suite.Require().NoError(err)
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
