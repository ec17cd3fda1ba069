// internal/interfaces/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/interfaces/http/handlers"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/interfaces/http/routes"
	"github.com/hackerz/marketplace/internal/pkg/auth"
	"github.com/hackerz/marketplace/internal/pkg/session"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const maxRequestBytes = 10 << 20

// HealthChecker is a dependency probed by the health endpoint
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps holds what the HTTP server needs
type Deps struct {
	Config   *config.Config
	Logger   *logrus.Logger
	JWT      *auth.JWTManager
	Sessions session.Store
	// Redis backs the rate limiter; nil disables rate limiting
	Redis    *redis.Client
	Handlers *routes.Handlers
	// Checks are probed by /health, keyed by name
	Checks map[string]HealthChecker
}

// Server represents the HTTP server
type Server struct {
	deps       Deps
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates the server and registers every route
func NewServer(deps Deps) *Server {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		deps:      deps,
		gin:       gin.New(),
		startedAt: time.Now(),
	}
	if len(deps.Config.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(deps.Config.Security.TrustedProxies); err != nil {
			deps.Logger.WithError(err).Warn("invalid trusted proxies, trusting none")
			_ = s.gin.SetTrustedProxies(nil)
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + deps.Config.Server.Port,
		Handler:      middleware.CORS(deps.Config, s.gin),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}
	return s
}

// Handler returns the root handler, CORS included
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.deps.Logger.WithFields(logrus.Fields{
		"port":        s.deps.Config.Server.Port,
		"environment": s.deps.Config.App.Environment,
		"version":     s.deps.Config.App.Version,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.deps.Logger.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.deps.Logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) setupMiddleware() {
	cfg := s.deps.Config

	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.deps.Logger))
	s.gin.Use(middleware.SecurityHeaders())
	if s.deps.Redis != nil && cfg.Security.RateLimitPerMinute > 0 {
		s.gin.Use(middleware.RateLimit(cfg.Security.RateLimitPerMinute, s.deps.Redis, s.deps.Logger))
	}
	s.gin.Use(middleware.RequestSizeLimit(maxRequestBytes))
	s.gin.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	s.gin.Use(middleware.Authenticate(s.deps.JWT))
	s.gin.Use(middleware.Session(s.deps.Sessions, cfg.Checkout.SessionTTL, cfg.IsProduction()))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	h := s.deps.Handlers
	if h.Docs == nil {
		h.Docs = handlers.NewDocsHandler(s.gin.Routes, s.deps.Config.App.Version)
	}
	routes.Setup(s.gin, h)
}

// healthCheck probes every dependency and reports the first failures
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, checker := range s.deps.Checks {
		if err := checker.Health(ctx); err != nil {
			s.deps.Logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":      state,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.deps.Config.App.Version,
		"environment": s.deps.Config.App.Environment,
	})
}

func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
