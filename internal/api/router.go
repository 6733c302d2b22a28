package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/superdelivery/storefront/internal/api/docs"
	"github.com/superdelivery/storefront/internal/api/handler"
	"github.com/superdelivery/storefront/internal/api/middleware"
	"github.com/superdelivery/storefront/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
// Mongo and Redis are optional and only used for readiness.
type Deps struct {
	Sessions ports.SessionService
	Cart     ports.CartService
	Catalog  ports.CatalogService
	Checkout ports.CheckoutService
	Tracker  handler.OrderTracker
	Notices  handler.NoticeSource

	// Observations is nil when status recording is disabled.
	Observations ports.ObservationRepository

	Mongo *mongo.Database
	Redis *redis.Client

	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("storefront_bff"))

	// --- Health, metrics and docs ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	sessionHandler := handler.NewSessionHandler(d.Sessions)
	restaurantHandler := handler.NewRestaurantHandler(d.Catalog)
	cartHandler := handler.NewCartHandler(d.Cart)
	orderHandler := handler.NewOrderHandler(d.Checkout, d.Tracker, d.AllowedOrigins, d.Log)
	noticeHandler := handler.NewNoticeHandler(d.Notices)
	observationHandler := handler.NewObservationHandler(d.Observations)
	requireSession := middleware.RequireSession(d.Sessions)

	v1 := e.Group("/v1")

	// --- Session ---
	v1.GET("/session", sessionHandler.Get)
	v1.POST("/session/login", sessionHandler.Login)
	v1.POST("/session/register", sessionHandler.Register)
	v1.POST("/session/logout", sessionHandler.Logout)
	v1.POST("/session/refresh", sessionHandler.Refresh)
	v1.PUT("/session/profile", sessionHandler.UpdateProfile)
	v1.PUT("/session/password", sessionHandler.ChangePassword)

	// --- Catalog ---
	v1.GET("/restaurants", restaurantHandler.List)

	// --- Cart (mutations answer 401 on their own for anonymous sessions) ---
	v1.GET("/cart", cartHandler.Get)
	v1.GET("/cart/count", cartHandler.Count)
	v1.GET("/cart/conflict/:restaurant_id", cartHandler.Conflict)
	v1.POST("/cart/items", cartHandler.AddItem)
	v1.PUT("/cart/items/:id", cartHandler.UpdateItem)
	v1.DELETE("/cart/items/:id", cartHandler.RemoveItem)
	v1.DELETE("/cart", cartHandler.Clear)

	// --- Orders ---
	v1.POST("/orders", orderHandler.Place)
	v1.GET("/orders/active/track", orderHandler.TrackActiveOrders, requireSession)
	v1.GET("/orders/:id/track", orderHandler.TrackOrder, requireSession)
	v1.GET("/orders/:id/history", observationHandler.History, requireSession)

	v1.GET("/notices", noticeHandler.Drain)

	return e
}
