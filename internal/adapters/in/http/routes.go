package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the API under /api/v1. Every route requires a token;
// validate checks requests against the OpenAPI document after authentication.
func RegisterRoutes(e *echo.Echo, s *Server, auth *Authenticator, validate echo.MiddlewareFunc) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	api := e.Group("/api/v1", auth.Middleware())

	customer := RequireRole(RoleCustomer)
	operator := RequireRole(RoleOperator)
	anyone := RequireRole(RoleCustomer, RoleOperator)

	api.POST("/orders", s.PlaceOrder, customer, validate)
	api.GET("/orders/:id", s.GetOrder, anyone, validate)
	api.POST("/orders/:id/rejection/seen", s.MarkRejectionSeen, customer, validate)

	api.GET("/orders/live", s.StreamOrders, operator)
	api.GET("/orders/live/ws", s.StreamOrdersWebSocket, operator)
	api.POST("/orders/:id/accept", s.AcceptOrder, operator, validate)
	api.POST("/orders/:id/cancel", s.CancelOrder, operator, validate)
	api.POST("/orders/:id/reject", s.RejectOrder, operator, validate)
	api.POST("/orders/:id/complete", s.CompleteOrder, operator, validate)
	api.POST("/orders/:id/delivery-time", s.AdjustDeliveryTime, operator, validate)
	api.POST("/orders/:id/refund", s.RefundOrder, operator, validate)
}
