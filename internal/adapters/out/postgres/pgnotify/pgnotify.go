// Package pgnotify relays order changes between service instances through Postgres
// LISTEN/NOTIFY. The publisher sends the id of every changed order on the
// order_changes channel; the listener wakes the local live feeds when one arrives.
package pgnotify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"souvlaki/internal/core/domain/model/order"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Channel is the notification channel carrying order ids.
const Channel = "order_changes"

const (
	minReconnectInterval = 1 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Publisher implements ports.EventPublisher with pg_notify.
type Publisher struct {
	db *gorm.DB
}

func NewPublisher(db *gorm.DB) *Publisher {
	return &Publisher{db: db}
}

func (p *Publisher) Publish(ctx context.Context, events ...order.StatusChanged) error {
	sent := make(map[int64]struct{}, len(events))
	for _, e := range events {
		if _, ok := sent[e.OrderID.Int64()]; ok {
			continue
		}
		sent[e.OrderID.Int64()] = struct{}{}

		if err := p.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", Channel, e.OrderID.String()).Error; err != nil {
			return fmt.Errorf("failed to notify change of order %s: %w", e.OrderID, err)
		}
	}
	return nil
}

// Notifier is woken for every received notification.
type Notifier interface {
	Notify()
}

// Listener keeps a dedicated connection listening on Channel.
type Listener struct {
	listener *pq.Listener
	notifier Notifier
	logger   *slog.Logger
}

// NewListener opens the listening connection. dsn must be a lib/pq connection string.
func NewListener(dsn string, notifier Notifier, logger *slog.Logger) (*Listener, error) {
	logger = logger.With("component", "pg-listener")

	l := pq.NewListener(dsn, minReconnectInterval, maxReconnectInterval,
		func(event pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("listener connection event", "event", int(event), "error", err)
			}
		})

	if err := l.Listen(Channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}

	return &Listener{
		listener: l,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Run forwards notifications until ctx is cancelled, then closes the connection.
// A nil notification means the connection was re-established and changes may have been
// missed, so the feeds are woken as well.
func (l *Listener) Run(ctx context.Context) {
	defer func() {
		if err := l.listener.Close(); err != nil {
			l.logger.Warn("failed to close listener", "error", err)
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			if n != nil {
				l.logger.Debug("order change received", "order_id", n.Extra)
			}
			l.notifier.Notify()
		case <-ticker.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.logger.Warn("listener ping failed", "error", err)
				}
			}()
		}
	}
}
