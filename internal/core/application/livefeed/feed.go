package livefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"souvlaki/internal/core/application/usecases/queries"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is used when the feed is created with a non-positive interval.
const DefaultPollInterval = 2 * time.Second

// ActiveOrdersReader returns the current active orders.
type ActiveOrdersReader interface {
	Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.OrderView, error)
}

// SendFunc writes one snapshot to the client. An error means the client is gone.
type SendFunc func(payload []byte) error

// Feed produces active-order snapshots for one or more connections. It keeps no per
// connection state itself; Stream holds the baseline of its caller.
type Feed struct {
	reader      ActiveOrdersReader
	broadcaster *Broadcaster
	clock       clockwork.Clock
	interval    time.Duration
	logger      *slog.Logger
}

func NewFeed(
	reader ActiveOrdersReader,
	broadcaster *Broadcaster,
	clock clockwork.Clock,
	interval time.Duration,
	logger *slog.Logger,
) *Feed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Feed{
		reader:      reader,
		broadcaster: broadcaster,
		clock:       clock,
		interval:    interval,
		logger:      logger.With("component", "live-feed"),
	}
}

// Interval is the fallback poll period.
func (f *Feed) Interval() time.Duration {
	return f.interval
}

// Stream polls right away and then on every tick or wake-up until ctx is cancelled or
// send fails. A snapshot equal to the last one sent is not sent again. A failing query
// only skips the tick. Stream returns nil on cancellation and the send error otherwise.
func (f *Feed) Stream(ctx context.Context, send SendFunc) error {
	var wake <-chan struct{}
	if f.broadcaster != nil {
		ch, unsubscribe := f.broadcaster.Subscribe()
		defer unsubscribe()
		wake = ch
	}

	ticker := f.clock.NewTicker(f.interval)
	defer ticker.Stop()

	var last []byte
	for {
		payload, err := f.snapshot(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			f.logger.WarnContext(ctx, "live feed poll failed", "error", err)
		case last == nil || !bytes.Equal(payload, last):
			if err = send(payload); err != nil {
				return err
			}
			last = payload
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		case <-wake:
		}
	}
}

func (f *Feed) snapshot(ctx context.Context) ([]byte, error) {
	active, err := f.reader.Handle(ctx, queries.NewGetActiveOrdersQuery())
	if err != nil {
		return nil, err
	}
	return json.Marshal(active)
}
