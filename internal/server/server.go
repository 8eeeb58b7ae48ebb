package server

import (
	"context"
	"net/http"
	"time"

	"derby-shop-api/internal/handler"
	"derby-shop-api/internal/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	JWTSecret         []byte
	AllowedOrigins    []string
	CheckoutPerMinute int64
	Redis             *redis.Client // optional, enables checkout rate limiting
	Gatherer          prometheus.Gatherer
}

type Server struct {
	echo           *echo.Echo
	orderHandler   *handler.OrderHandler
	webhookHandler *handler.WebhookHandler
	logger         *zap.Logger
	opts           Options
}

func NewServer(orderHandler *handler.OrderHandler, webhookHandler *handler.WebhookHandler, logger *zap.Logger, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.AllowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin, "X-Requested-With", echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
		},
	}))

	s := &Server{
		echo:           e,
		orderHandler:   orderHandler,
		webhookHandler: webhookHandler,
		logger:         logger,
		opts:           opts,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.echo.Group("/api/v1")

	// -------- stripe webhooks, authenticated by signature --------
	api.POST("/webhook/stripe", s.webhookHandler.StripeWebhook)

	// -------- orders --------
	auth := middleware.AuthMiddleware(s.opts.JWTSecret, s.logger)
	admin := middleware.RequireAdmin()
	checkoutLimit := middleware.RateLimit(s.opts.Redis, "checkout", s.opts.CheckoutPerMinute, time.Minute, s.logger)

	orders := api.Group("/orders", auth)
	orders.POST("/checkout", s.orderHandler.CreateOrderAndCheckout, checkoutLimit)
	orders.GET("", s.orderHandler.GetAllOrders, admin)
	orders.GET("/:id", s.orderHandler.GetOneOrder)
	orders.PUT("/:id/status", s.orderHandler.UpdateStatus, admin)
	orders.DELETE("/:id", s.orderHandler.DeleteOrder, admin)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
