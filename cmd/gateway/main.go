package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/pkg/circuitbreaker"
	"shareit/pkg/config"
	"shareit/pkg/middleware"

	"github.com/gin-gonic/gin"
)

var (
	serverURL  string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	now        = time.Now
)

func main() {
	cfg := config.LoadGateway()
	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	serverURL = cfg.ServerURL
	httpClient = &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}
	breaker = circuitbreaker.NewCircuitBreaker(cfg.BreakerMaxFailures, cfg.BreakerOpenTimeout)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("gateway starting", "port", cfg.Port, "server_url", serverURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

func setupRouter(logger *slog.Logger) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Metrics("gateway"),
	)

	users := r.Group("/users")
	users.POST("", validateBody[newUser](), forward)
	users.GET("", forward)
	users.DELETE("", forward)
	users.GET("/:id", forward)
	users.PATCH("/:id", validateBody[userPatch](), forward)
	users.DELETE("/:id", forward)

	items := r.Group("/items", requireUser)
	items.POST("", validateBody[newItem](), forward)
	items.GET("", forward)
	items.DELETE("", forward)
	items.GET("/search", forward)
	items.GET("/:id", forward)
	items.PATCH("/:id", validateBody[itemPatch](), forward)
	items.DELETE("/:id", forward)
	items.POST("/:id/comment", validateBody[newComment](), forward)

	bookings := r.Group("/bookings", requireUser)
	bookings.POST("", validateBody[newBooking](), forward)
	bookings.GET("", validateState, validatePaging, forward)
	bookings.GET("/owner", validateState, validatePaging, forward)
	bookings.GET("/:id", forward)
	bookings.PATCH("/:id", validateApproved, forward)
	bookings.PATCH("/:id/cancel", forward)

	requests := r.Group("/requests", requireUser)
	requests.POST("", validateBody[newRequest](), forward)
	requests.GET("", forward)
	requests.GET("/all", validatePaging, forward)
	requests.GET("/:id", forward)

	r.GET("/manage/health", healthCheck)
	r.GET("/metrics", middleware.MetricsHandler())
	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": gin.H{"upstream": breaker.GetState().String()},
	})
}
