// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/api/handlers"
	"github.com/andresuchdata/stockpilot/backend-go/internal/api/middleware"
	"github.com/andresuchdata/stockpilot/backend-go/internal/notification"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Analytics handlers.AnalyticsService
	Hub       *notification.Hub
	DB        handlers.Pinger
}

type Options struct {
	AllowedOrigins    []string
	JWTSecret         string
	RequestTimeout    time.Duration
	Location          *time.Location
	RateLimitEnabled  bool
	RequestsPerSecond float64
	Burst             int
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	var db handlers.Pinger
	if services != nil {
		db = services.DB
	}
	health := handlers.NewHealthHandler(db)
	router.GET("/health", health.Check)

	secret := []byte(opts.JWTSecret)
	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.RequireAuth(secret))
	if opts.RateLimitEnabled {
		apiGroup.Use(middleware.RateLimit(opts.RequestsPerSecond, opts.Burst))
	}

	if services != nil {
		if services.Analytics != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics, opts.RequestTimeout, opts.Location)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.GET("/sales", analyticsHandler.GetSalesAnalytics)
				analyticsGroup.GET("/inventory", analyticsHandler.GetInventoryAnalytics)
				analyticsGroup.GET("/reorder-recommendations", analyticsHandler.GetReorderRecommendations)
			}
		}

		if services.Hub != nil {
			hub := services.Hub
			router.GET("/ws/notifications", func(c *gin.Context) {
				notification.ServeWs(hub, c, secret)
			})
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
