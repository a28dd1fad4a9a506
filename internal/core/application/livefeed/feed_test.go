package livefeed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"souvlaki/internal/core/application/livefeed"
	"souvlaki/internal/core/application/usecases/queries"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const interval = 2 * time.Second

type stubReader struct {
	mu    sync.Mutex
	views []queries.OrderView
	err   error
	calls chan struct{}
}

func newStubReader(views ...queries.OrderView) *stubReader {
	return &stubReader{views: views, calls: make(chan struct{}, 64)}
}

func (r *stubReader) set(views []queries.OrderView, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = views
	r.err = err
}

func (r *stubReader) Handle(_ context.Context, query queries.GetActiveOrdersQuery) ([]queries.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	views, err := append([]queries.OrderView{}, r.views...), r.err
	r.mu.Unlock()

	r.calls <- struct{}{}
	return views, err
}

type recorder struct {
	sent chan string
	err  error
}

func newRecorder() *recorder {
	return &recorder{sent: make(chan string, 64)}
}

func (r *recorder) send(payload []byte) error {
	if r.err != nil {
		return r.err
	}
	r.sent <- string(payload)
	return nil
}

func view(id int64, status string) queries.OrderView {
	return queries.OrderView{
		ID:     id,
		Status: status,
		Total:  "12.00",
		Items:  []queries.OrderItemView{},
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

func startFeed(
	t *testing.T,
	reader *stubReader,
	b *livefeed.Broadcaster,
	rec *recorder,
) (*clockwork.FakeClock, context.CancelFunc, <-chan error) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := livefeed.NewFeed(reader, b, clock, interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Stream(ctx, rec.send) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	return clock, cancel, done
}

func TestFeed_SendsOnlyChangedSnapshots(t *testing.T) {
	reader := newStubReader(view(42, "requested"))
	rec := newRecorder()
	clock, cancel, done := startFeed(t, reader, nil, rec)
	defer cancel()

	first := receive(t, rec.sent)
	receive(t, reader.calls)
	assert.Contains(t, first, `"id":42`)
	assert.Contains(t, first, `"status":"requested"`)

	clock.Advance(interval)
	receive(t, reader.calls)

	reader.set([]queries.OrderView{view(42, "pending")}, nil)
	clock.Advance(interval)
	receive(t, reader.calls)

	second := receive(t, rec.sent)
	assert.Contains(t, second, `"status":"pending"`)
	assert.NotEqual(t, first, second)

	cancel()
	require.NoError(t, receive(t, done))
	assert.Empty(t, rec.sent)
}

func TestFeed_EmptyListIsSentOnce(t *testing.T) {
	reader := newStubReader()
	rec := newRecorder()
	clock, cancel, done := startFeed(t, reader, nil, rec)
	defer cancel()

	assert.Equal(t, "[]", receive(t, rec.sent))
	receive(t, reader.calls)

	clock.Advance(interval)
	receive(t, reader.calls)

	cancel()
	require.NoError(t, receive(t, done))
	assert.Empty(t, rec.sent)
}

func TestFeed_FailedPollSkipsTick(t *testing.T) {
	reader := newStubReader()
	reader.set(nil, errors.New("connection reset"))
	rec := newRecorder()
	clock, cancel, done := startFeed(t, reader, nil, rec)
	defer cancel()

	receive(t, reader.calls)
	reader.set([]queries.OrderView{view(7, "pending")}, nil)

	clock.Advance(interval)
	receive(t, reader.calls)

	assert.Contains(t, receive(t, rec.sent), `"id":7`)

	cancel()
	require.NoError(t, receive(t, done))
}

func TestFeed_SendErrorEndsStream(t *testing.T) {
	reader := newStubReader(view(1, "requested"))
	rec := newRecorder()
	rec.err = errors.New("broken pipe")
	b := livefeed.NewBroadcaster()

	clock := clockwork.NewFakeClock()
	feed := livefeed.NewFeed(reader, b, clock, interval, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := feed.Stream(context.Background(), rec.send)

	require.EqualError(t, err, "broken pipe")
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestFeed_WakeUpPollsBeforeTick(t *testing.T) {
	reader := newStubReader(view(1, "requested"))
	rec := newRecorder()
	b := livefeed.NewBroadcaster()
	_, cancel, done := startFeed(t, reader, b, rec)
	defer cancel()

	receive(t, rec.sent)
	receive(t, reader.calls)

	reader.set([]queries.OrderView{view(2, "requested"), view(1, "requested")}, nil)
	b.Notify()
	receive(t, reader.calls)

	assert.Contains(t, receive(t, rec.sent), `"id":2`)

	cancel()
	require.NoError(t, receive(t, done))
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestFeed_CancellationStopsPolling(t *testing.T) {
	reader := newStubReader()
	rec := newRecorder()
	clock, cancel, done := startFeed(t, reader, nil, rec)

	receive(t, rec.sent)
	receive(t, reader.calls)

	cancel()
	require.NoError(t, receive(t, done))

	clock.Advance(3 * interval)
	assert.Empty(t, reader.calls)
}

func TestNewFeed_DefaultInterval(t *testing.T) {
	feed := livefeed.NewFeed(newStubReader(), nil, clockwork.NewFakeClock(), 0, slog.Default())

	assert.Equal(t, livefeed.DefaultPollInterval, feed.Interval())
}
