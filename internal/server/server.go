package server

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/travelapp/restaurants/backend/go-services/handlers"
	"github.com/travelapp/restaurants/backend/go-services/internal/config"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/handler"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/service"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
	"github.com/travelapp/restaurants/backend/go-services/pkg/metrics"
	"github.com/travelapp/restaurants/backend/go-services/pkg/middleware"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router is built from. Only Config and
// Service are required.
type Deps struct {
	Config      *config.Config
	Service     service.Service
	Pinger      Pinger
	Redis       *redis.Client
	Verifier    middleware.Verifier
	Revocations middleware.RevocationChecker
	Registry    *prometheus.Registry
}

var startTime = time.Now()

// NewEngine builds the gin engine with middleware and all routes.
func NewEngine(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(ginzap.Ginzap(logger.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger.L(), true))
	r.Use(middleware.RequestID())

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.RegisterCollectors(reg)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", readyHandler(d.Pinger, cfg.Server.RequestTimeout))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterSwagger(r)

	api := r.Group("/")
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis, %v req per %s", cfg.RateLimit.RPS, win)
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: in-memory, %v rps burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}
	if d.Verifier != nil {
		api.Use(middleware.AuthMiddleware(d.Verifier, d.Revocations))
		logger.Info("bearer token auth enabled on restaurant routes")
	}
	handler.RegisterRoutes(api, d.Service, handler.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})
	return r
}

// New returns the engine wrapped in a permissive CORS handler.
func New(d Deps) http.Handler {
	return cors.AllowAll().Handler(NewEngine(d))
}

func readyHandler(p Pinger, timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(c *gin.Context) {
		uptime := time.Since(startTime).Truncate(time.Second).String()
		if p == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": gin.H{"mongodb": false}, "uptime": uptime})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logger.Warnf("ready: mongodb ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": gin.H{"mongodb": false}, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": gin.H{"mongodb": true}, "uptime": uptime})
	}
}
