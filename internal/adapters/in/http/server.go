package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"souvlaki/internal/core/application/livefeed"
	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/core/application/usecases/queries"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// CommandHandler runs one order command and returns the resulting order.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, command C) (*order.Order, error)
}

// OrderReader reads the view of one order.
type OrderReader interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

// LiveFeed streams active-order snapshots until ctx ends or send fails.
type LiveFeed interface {
	Stream(ctx context.Context, send livefeed.SendFunc) error
}

// Handlers are the use cases behind the HTTP routes.
type Handlers struct {
	PlaceOrder             CommandHandler[commands.PlaceOrderCommand]
	AcceptOrder            CommandHandler[commands.AcceptOrderCommand]
	CancelOrder            CommandHandler[commands.CancelOrderCommand]
	RejectOrder            CommandHandler[commands.RejectOrderCommand]
	CompleteOrder          CommandHandler[commands.CompleteOrderCommand]
	AdjustDeliveryEstimate CommandHandler[commands.AdjustDeliveryEstimateCommand]
	RefundOrder            CommandHandler[commands.RefundOrderCommand]
	MarkRejectionSeen      CommandHandler[commands.MarkRejectionSeenCommand]
	GetOrder               OrderReader
	LiveFeed               LiveFeed
}

// Server handles HTTP requests. It coordinates between HTTP handlers and application
// use cases. Command endpoints answer with the order as the command committed it, in the
// same shape GET /orders/{id} reads back from the store.
type Server struct {
	handlers Handlers
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. An empty allowedOrigins accepts WebSocket
// connections from any origin.
func NewServer(handlers Handlers, allowedOrigins []string, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		upgrader: newUpgrader(allowedOrigins),
		logger:   logger.With("component", "http-server"),
	}
}

// PlaceOrder handles POST /api/v1/orders.
//
//	@Summary	Place a paid order
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		PlaceOrderRequest	true	"Checkout"
//	@Success	201		{object}	OrderResponse
//	@Failure	400		{object}	Error
//	@Failure	401		{object}	Error
//	@Router		/orders [post]
func (s *Server) PlaceOrder(c echo.Context) error {
	p, _ := principalFrom(c)

	var req PlaceOrderRequest
	if err := s.bind(c, &req); err != nil {
		return respondError(c, err)
	}

	items := make([]commands.PlaceOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, commands.PlaceOrderItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Ingredients: item.Ingredients,
			Options:     item.Options,
		})
	}

	cmd, err := commands.NewPlaceOrderCommand(p.CustomerID, req.CustomerEmail, req.PaymentRef, items)
	if err != nil {
		return respondError(c, err)
	}

	placed, err := s.handlers.PlaceOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, OrderResponse{Order: queries.NewOrderView(placed)})
}

// GetOrder handles GET /api/v1/orders/{id}. Customers only see their own orders.
//
//	@Summary	Get an order
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	Error
//	@Router		/orders/{id} [get]
func (s *Server) GetOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	view, err := s.readOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	p, _ := principalFrom(c)
	if !p.IsOperator() && view.CustomerID != p.CustomerID.Int64() {
		return respondError(c, errs.NewObjectNotFoundError("order", id))
	}

	return c.JSON(http.StatusOK, OrderResponse{Order: view})
}

// AcceptOrder handles POST /api/v1/orders/{id}/accept.
//
//	@Summary	Accept a requested order
//	@Tags		operator
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"Order id"
//	@Param		request	body		AcceptOrderRequest	true	"Delivery estimate in minutes"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	Error
//	@Failure	409		{object}	Error
//	@Router		/orders/{id}/accept [post]
func (s *Server) AcceptOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req AcceptOrderRequest
	if err = s.bind(c, &req); err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewAcceptOrderCommand(id, req.DeliveryTime)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.AcceptOrder.Handle(ctx, cmd)
	})
}

// CancelOrder handles POST /api/v1/orders/{id}/cancel.
//
//	@Summary	Cancel an order
//	@Tags		operator
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	Error
//	@Router		/orders/{id}/cancel [post]
func (s *Server) CancelOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewCancelOrderCommand(id)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.CancelOrder.Handle(ctx, cmd)
	})
}

// RejectOrder handles POST /api/v1/orders/{id}/reject.
//
//	@Summary	Reject an order
//	@Tags		operator
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	Error
//	@Router		/orders/{id}/reject [post]
func (s *Server) RejectOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewRejectOrderCommand(id)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.RejectOrder.Handle(ctx, cmd)
	})
}

// CompleteOrder handles POST /api/v1/orders/{id}/complete.
//
//	@Summary	Complete an order
//	@Tags		operator
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	409	{object}	Error
//	@Router		/orders/{id}/complete [post]
func (s *Server) CompleteOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewCompleteOrderCommand(id)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.CompleteOrder.Handle(ctx, cmd)
	})
}

// AdjustDeliveryTime handles POST /api/v1/orders/{id}/delivery-time.
//
//	@Summary	Shift the delivery estimate of a pending order
//	@Tags		operator
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int							true	"Order id"
//	@Param		request	body		AdjustDeliveryTimeRequest	true	"Shift in minutes and the range the operator saw"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	Error
//	@Failure	409		{object}	Error
//	@Router		/orders/{id}/delivery-time [post]
func (s *Server) AdjustDeliveryTime(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req AdjustDeliveryTimeRequest
	if err = s.bind(c, &req); err != nil {
		return respondError(c, err)
	}

	cmd, err := commands.NewAdjustDeliveryEstimateCommand(id, req.DeltaMinutes, req.CurrentRange)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.AdjustDeliveryEstimate.Handle(ctx, cmd)
	})
}

// RefundOrder handles POST /api/v1/orders/{id}/refund.
//
//	@Summary	Refund a paid order and close it
//	@Tags		operator
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		int					true	"Order id"
//	@Param		request	body		RefundOrderRequest	false	"Amount (default: total) and final status (default: cancelled)"
//	@Success	200		{object}	OrderResponse
//	@Failure	400		{object}	Error
//	@Failure	409		{object}	Error
//	@Failure	500		{object}	Error
//	@Router		/orders/{id}/refund [post]
func (s *Server) RefundOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	var req RefundOrderRequest
	if c.Request().ContentLength != 0 {
		if err = s.bind(c, &req); err != nil {
			return respondError(c, err)
		}
	}

	cmd, err := commands.NewRefundOrderCommand(id, req.Amount, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.RefundOrder.Handle(ctx, cmd)
	})
}

// MarkRejectionSeen handles POST /api/v1/orders/{id}/rejection/seen.
//
//	@Summary	Acknowledge the rejection of an own order
//	@Tags		orders
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Order id"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	Error
//	@Failure	409	{object}	Error
//	@Router		/orders/{id}/rejection/seen [post]
func (s *Server) MarkRejectionSeen(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return respondError(c, err)
	}

	p, _ := principalFrom(c)
	cmd, err := commands.NewMarkRejectionSeenCommand(id, p.CustomerID)
	if err != nil {
		return respondError(c, err)
	}

	return s.runCommand(c, func(ctx context.Context) (*order.Order, error) {
		return s.handlers.MarkRejectionSeen.Handle(ctx, cmd)
	})
}

func (s *Server) runCommand(c echo.Context, run func(ctx context.Context) (*order.Order, error)) error {
	o, err := run(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: queries.NewOrderView(o)})
}

func (s *Server) readOrder(ctx context.Context, id kernel.ID) (queries.OrderView, error) {
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return queries.OrderView{}, err
	}
	return s.handlers.GetOrder.Handle(ctx, query)
}

func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return c.Validate(req)
}

func orderID(c echo.Context) (kernel.ID, error) {
	var raw int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("invalid format for parameter id: %w", err))
	}
	return kernel.NewID(raw)
}
