// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/analytics"
	"github.com/andresuchdata/stockpilot/backend-go/internal/api"
	"github.com/andresuchdata/stockpilot/backend-go/internal/cache"
	"github.com/andresuchdata/stockpilot/backend-go/internal/config"
	"github.com/andresuchdata/stockpilot/backend-go/internal/notification"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository"
	"github.com/andresuchdata/stockpilot/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/stockpilot/backend-go/internal/service"
	"github.com/andresuchdata/stockpilot/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	orders := postgres.NewOrderRepository(db)
	products := repository.NewCachedProductReader(
		postgres.NewProductRepository(db),
		cfg.Cache.ProductLookupSize,
		time.Duration(cfg.Cache.ProductLookupTTL)*time.Second,
	)

	// Response cache
	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, analytics cache disabled")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	// Notifications
	var publishers []notification.Publisher
	var hub *notification.Hub
	if cfg.Notification.WebSocket {
		hub = notification.NewHub()
		go hub.Run(ctx)
		publishers = append(publishers, hub)
	}
	if cfg.Notification.RabbitMQURL != "" {
		conn, ch, err := notification.SetupConn(cfg.Notification.RabbitMQURL, cfg.Notification.Exchange)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("RabbitMQ unavailable, broker notifications disabled")
		} else {
			defer conn.Close()
			defer ch.Close()
			publishers = append(publishers, notification.NewRabbitPublisher(ch, cfg.Notification.Exchange))
		}
	}
	emitter := notification.NewEmitter(publishers...)

	// Engine and services
	engine := analytics.NewEngine(orders, products, analytics.ConfigFrom(cfg.Analytics))
	analyticsService := service.NewAnalyticsService(engine, analyticsCache, emitter, cfg.Notification.RecipientIDs)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		Analytics: analyticsService,
		Hub:       hub,
		DB:        db,
	}, api.Options{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		JWTSecret:         cfg.Auth.JWTSecret,
		RequestTimeout:    time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Location:          cfg.Analytics.Location(),
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
