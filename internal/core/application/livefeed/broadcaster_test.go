package livefeed_test

import (
	"context"
	"testing"
	"time"

	"souvlaki/internal/core/application/livefeed"
	"souvlaki/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_NotifyWakesEverySubscriber(t *testing.T) {
	b := livefeed.NewBroadcaster()
	first, unsubscribeFirst := b.Subscribe()
	defer unsubscribeFirst()
	second, unsubscribeSecond := b.Subscribe()
	defer unsubscribeSecond()

	b.Notify()

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestBroadcaster_PendingWakeUpsCollapse(t *testing.T) {
	b := livefeed.NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Notify()
	b.Notify()
	b.Notify()

	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending wake-up")
	default:
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := livefeed.NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	unsubscribe()
	unsubscribe()
	b.Notify()

	assert.Equal(t, 0, b.SubscriberCount())
	assert.Empty(t, ch)
}

func TestBroadcaster_Publish(t *testing.T) {
	b := livefeed.NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	require.NoError(t, b.Publish(context.Background()))
	assert.Empty(t, ch)

	require.NoError(t, b.Publish(context.Background(), order.StatusChanged{
		OrderID:    42,
		From:       order.Requested,
		To:         order.Pending,
		OccurredAt: time.Now(),
	}))
	assert.Len(t, ch, 1)
}
