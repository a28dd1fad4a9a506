package http

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// StreamOrders handles GET /api/v1/orders/live as server-sent events. Each event
// carries the full list of active orders and is only sent when the list changed.
//
//	@Summary	Live feed of active orders (SSE)
//	@Tags		operator
//	@Produce	text/event-stream
//	@Security	BearerAuth
//	@Success	200	{array}	queries.OrderView
//	@Router		/orders/live [get]
func (s *Server) StreamOrders(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request().Context()
	err := s.handlers.LiveFeed.Stream(ctx, func(payload []byte) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		w.Flush()
		return nil
	})
	if err != nil {
		s.logger.DebugContext(ctx, "live feed client gone", "transport", "sse", "error", err)
	}

	return nil
}

// StreamOrdersWebSocket handles GET /api/v1/orders/live/ws. Each text frame carries the
// full list of active orders. Messages from the client are ignored; closing the
// connection ends the stream.
//
//	@Summary	Live feed of active orders (WebSocket)
//	@Tags		operator
//	@Security	BearerAuth
//	@Success	101	{string}	string	"Switching protocols"
//	@Router		/orders/live/ws [get]
func (s *Server) StreamOrdersWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.WarnContext(c.Request().Context(), "websocket upgrade failed", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	err = s.handlers.LiveFeed.Stream(ctx, func(payload []byte) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, payload)
	})
	if err != nil {
		s.logger.DebugContext(ctx, "live feed client gone", "transport", "websocket", "error", err)
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	return nil
}
