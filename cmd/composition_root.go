package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "souvlaki/internal/adapters/in/http"
	"souvlaki/internal/adapters/out/kafka"
	"souvlaki/internal/adapters/out/mail"
	"souvlaki/internal/adapters/out/payment"
	"souvlaki/internal/adapters/out/postgres"
	"souvlaki/internal/adapters/out/postgres/pgnotify"
	"souvlaki/internal/adapters/out/scheduler"
	"souvlaki/internal/core/application/livefeed"
	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/core/application/usecases/queries"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"
	"souvlaki/internal/jobs"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs     Config
	gormDB      *gorm.DB
	clock       clockwork.Clock
	logger      *slog.Logger
	broadcaster *livefeed.Broadcaster
	uowFactory  *postgres.GormUnitOfWorkFactory
	payments    *payment.Client
	mailer      *mail.Mailer
	kafka       *kafka.OrderEventPublisher
	timer       *scheduler.DeliveryTimer
	complete    *commands.CompleteOrderCommandHandler
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		configs:     configs,
		gormDB:      gormDB,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		broadcaster: livefeed.NewBroadcaster(),
		payments:    payment.NewClient(configs.PaymentsBaseURL, configs.PaymentsSecretKey, logger),
	}

	publishers := EventPublishers{c.broadcaster, pgnotify.NewPublisher(gormDB)}
	if len(configs.KafkaHosts) > 0 {
		producer, err := kafka.NewOrderEventPublisher(configs.KafkaHosts, configs.KafkaOrderChangedTopic, logger)
		if err != nil {
			return nil, err
		}
		c.kafka = producer
		publishers = append(publishers, producer)
	} else {
		logger.Warn("KAFKA_HOST is not set, order events are not published to kafka")
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, publishers, logger)

	mailer, err := mail.NewMailer(mail.Config{
		Host:     configs.SMTPHost,
		Port:     configs.SMTPPort,
		Username: configs.SMTPUsername,
		Password: configs.SMTPPassword,
		From:     configs.MailFrom,
		ShopName: configs.ShopName,
	}, logger)
	if err != nil {
		return nil, err
	}
	c.mailer = mailer

	// The timer completes orders through the complete handler, every other handler arms it.
	c.complete = commands.NewCompleteOrderCommandHandler(c.orderUoWFactory(), c.clock)
	c.timer, err = scheduler.NewDeliveryTimer(c.complete, c.clock, logger)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() *commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.orderUoWFactory(), c.payments, c.clock)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() *commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoWFactory(), c.timer, c.mailer, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() *commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.timer, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() *commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.orderUoWFactory(), c.timer, c.mailer, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() *commands.CompleteOrderCommandHandler {
	return c.complete
}

func (c *CompositionRoot) CreateAdjustDeliveryEstimateCommandHandler() *commands.AdjustDeliveryEstimateCommandHandler {
	return commands.NewAdjustDeliveryEstimateCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateRefundOrderCommandHandler() *commands.RefundOrderCommandHandler {
	return commands.NewRefundOrderCommandHandler(c.orderUoWFactory(), c.payments, c.timer, c.mailer, c.clock, c.logger)
}

func (c *CompositionRoot) CreateMarkRejectionSeenCommandHandler() *commands.MarkRejectionSeenCommandHandler {
	return commands.NewMarkRejectionSeenCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCompleteOverdueOrdersCommandHandler() *commands.CompleteOverdueOrdersCommandHandler {
	return commands.NewCompleteOverdueOrdersCommandHandler(c.orderUoWFactory(), c.complete, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRearmDeliveryTimersCommandHandler() *commands.RearmDeliveryTimersCommandHandler {
	return commands.NewRearmDeliveryTimersCommandHandler(c.orderUoWFactory(), c.timer, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateLiveFeed() *livefeed.Feed {
	return livefeed.NewFeed(
		c.CreateGetActiveOrdersQueryHandler(),
		c.broadcaster,
		c.clock,
		c.configs.FeedPollInterval,
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		PlaceOrder:             c.CreatePlaceOrderCommandHandler(),
		AcceptOrder:            c.CreateAcceptOrderCommandHandler(),
		CancelOrder:            c.CreateCancelOrderCommandHandler(),
		RejectOrder:            c.CreateRejectOrderCommandHandler(),
		CompleteOrder:          c.CreateCompleteOrderCommandHandler(),
		AdjustDeliveryEstimate: c.CreateAdjustDeliveryEstimateCommandHandler(),
		RefundOrder:            c.CreateRefundOrderCommandHandler(),
		MarkRejectionSeen:      c.CreateMarkRejectionSeenCommandHandler(),
		GetOrder:               c.CreateGetOrderQueryHandler(),
		LiveFeed:               c.CreateLiveFeed(),
	}, c.configs.AllowedOrigins, c.logger)
}

func (c *CompositionRoot) CreateAuthenticator() *httpin.Authenticator {
	return httpin.NewAuthenticator([]byte(c.configs.JWTSecret), c.configs.JWTIssuer)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateCompleteOverdueOrdersCommandHandler(),
		c.CreateRearmDeliveryTimersCommandHandler(),
		c.configs.SweepSchedule,
		c.logger,
	)
}

// CreateOrderChangesListener wakes the live feed when another instance changed an order.
func (c *CompositionRoot) CreateOrderChangesListener() (*pgnotify.Listener, error) {
	return pgnotify.NewListener(c.configs.DSN(), c.broadcaster, c.logger)
}

// Close stops the delivery timer and flushes outgoing mail and events.
func (c *CompositionRoot) Close() error {
	var errList []error
	if err := c.timer.Shutdown(); err != nil {
		errList = append(errList, fmt.Errorf("failed to stop delivery timer: %w", err))
	}
	c.mailer.Wait()
	if c.kafka != nil {
		if err := c.kafka.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// EventPublishers fans committed status changes out to every publisher. A failing
// publisher does not keep the others from being called.
type EventPublishers []ports.EventPublisher

func (p EventPublishers) Publish(ctx context.Context, events ...order.StatusChanged) error {
	var errList []error
	for _, publisher := range p {
		if err := publisher.Publish(ctx, events...); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
