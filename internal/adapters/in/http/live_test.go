package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamOrders_ServerSentEvents(t *testing.T) {
	f := newFixture(t)
	f.feed.snapshots = []string{`[]`, `[{"id":1,"status":"requested"}]`}

	rec := f.do(http.MethodGet, "/api/v1/orders/live", operatorToken(t), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: []\n\ndata: [{\"id\":1,\"status\":\"requested\"}]\n\n", rec.Body.String())
}

func TestStreamOrders_RequiresOperator(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/orders/live", customerToken(t, "3"), "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStreamOrders_WebSocket(t *testing.T) {
	f := newFixture(t)
	f.feed.snapshots = []string{`[]`, `[{"id":7}]`}
	srv := httptest.NewServer(f.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/orders/live/ws?access_token=" + operatorToken(t)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	for _, want := range f.feed.snapshots {
		kind, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.JSONEq(t, want, string(payload))
	}

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestStreamOrders_WebSocketRejectsMissingToken(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/orders/live/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
