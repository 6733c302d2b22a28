package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
	"github.com/superdelivery/storefront/internal/core/service"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// OrderTracker starts order pollers.
type OrderTracker interface {
	TrackOrder(ctx context.Context, orderID int, onUpdate func(domain.Tracking)) *service.TrackingHandle
	TrackActiveOrders(ctx context.Context, customerID int, onUpdate func([]domain.ActiveOrder)) *service.TrackingHandle
}

type OrderHandler struct {
	checkout ports.CheckoutService
	tracker  OrderTracker
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewOrderHandler builds the order handler. Tracking sockets accept
// connections from allowedOrigins only; "*" or an empty list allows any.
func NewOrderHandler(checkout ports.CheckoutService, tracker OrderTracker, allowedOrigins []string, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		tracker:  tracker,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		log:      log.With().Str("component", "tracking_ws").Logger(),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Place submits the current cart as an order.
//
// @Summary      Place order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      domain.CustomerInfo  true  "Delivery details"
// @Success      201   {object}  domain.PlacedOrder
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	var req domain.CustomerInfo
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	order, err := h.checkout.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// trackingMessage is one frame sent on a tracking socket.
type trackingMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TrackOrder streams an order's tracking data over a WebSocket until the
// order reaches a final status or the client goes away.
func (h *OrderHandler) TrackOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	return h.serve(c, func(ctx context.Context, push func(any)) *service.TrackingHandle {
		return h.tracker.TrackOrder(ctx, orderID, func(t domain.Tracking) { push(t) })
	})
}

// TrackActiveOrders streams the signed-in customer's in-progress orders.
func (h *OrderHandler) TrackActiveOrders(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	return h.serve(c, func(ctx context.Context, push func(any)) *service.TrackingHandle {
		return h.tracker.TrackActiveOrders(ctx, user.ID, func(o []domain.ActiveOrder) { push(o) })
	})
}

func (h *OrderHandler) serve(c echo.Context, start func(context.Context, func(any)) *service.TrackingHandle) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// The poller callback must never block, so only the latest update is kept.
	updates := make(chan any, 1)
	push := func(v any) {
		select {
		case updates <- v:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- v:
		default:
		}
	}

	handle := start(ctx, push)
	defer handle.Stop()

	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case v := <-updates:
			if err := h.write(ws, trackingMessage{Type: "update", Data: v}); err != nil {
				return nil
			}
		case <-handle.Done():
			select {
			case v := <-updates:
				_ = h.write(ws, trackingMessage{Type: "update", Data: v})
			default:
			}
			_ = h.write(ws, trackingMessage{Type: string(handle.State())})
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteTimeout))
			return nil
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (h *OrderHandler) write(ws *websocket.Conn, msg trackingMessage) error {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		h.log.Debug().Err(err).Msg("websocket write failed")
		return err
	}
	return nil
}
