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

	"shareit/pkg/config"
	"shareit/pkg/database"
	"shareit/pkg/middleware"
	"shareit/pkg/service"

	"github.com/gin-gonic/gin"
)

var svc *service.Service

func main() {
	cfg := config.LoadServer()
	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting shareit server", "port", cfg.Port, "driver", cfg.Database.Driver)

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	svc = service.New(db, service.WithLogger(logger))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down shareit server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func setupRouter(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.Metrics("server"),
	)

	users := r.Group("/users")
	users.POST("", createUser)
	users.GET("", listUsers)
	users.DELETE("", deleteAllUsers)
	users.GET("/:id", getUser)
	users.PATCH("/:id", updateUser)
	users.DELETE("/:id", deleteUser)

	items := r.Group("/items")
	items.POST("", createItem)
	items.GET("", listOwnItems)
	items.DELETE("", deleteOwnItems)
	items.GET("/search", searchItems)
	items.GET("/:id", getItem)
	items.PATCH("/:id", updateItem)
	items.DELETE("/:id", deleteItem)
	items.POST("/:id/comment", createComment)

	bookings := r.Group("/bookings")
	bookings.POST("", createBooking)
	bookings.GET("", listBookings)
	bookings.GET("/owner", listOwnerBookings)
	bookings.GET("/:id", getBooking)
	bookings.PATCH("/:id", approveBooking)
	bookings.PATCH("/:id/cancel", cancelBooking)

	requests := r.Group("/requests")
	requests.POST("", createRequest)
	requests.GET("", listOwnRequests)
	requests.GET("/all", listOtherRequests)
	requests.GET("/:id", getRequest)

	r.GET("/manage/health", healthCheck)
	r.GET("/metrics", middleware.MetricsHandler())
	return r
}

func healthCheck(c *gin.Context) {
	if err := svc.Ping(c.Request.Context()); err != nil {
		slog.Error("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": gin.H{"database": err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": gin.H{"database": "UP"},
	})
}
