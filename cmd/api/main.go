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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpAdapter "github.com/cafeflow/backend/internal/adapters/primary/http"
	mw "github.com/cafeflow/backend/internal/adapters/primary/http/middleware"
	"github.com/cafeflow/backend/internal/adapters/primary/websocket"
	"github.com/cafeflow/backend/internal/adapters/secondary/postgres"
	redisAdapter "github.com/cafeflow/backend/internal/adapters/secondary/redis"
	"github.com/cafeflow/backend/internal/auth"
	"github.com/cafeflow/backend/internal/config"
	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
	"github.com/cafeflow/backend/internal/core/services"
	"github.com/cafeflow/backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// 4. Initialize optional Redis cache
	var menuCache ports.MenuCache
	var cacheChecker httpAdapter.HealthChecker
	if cfg.Redis.URL != "" {
		cache, err := redisAdapter.NewMenuCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Error("failed to configure redis", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		menuCache = cache
		cacheChecker = cache
		logger.Info("redis cache configured")
	}

	// 5. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	hub := websocket.NewHub(logger)

	// 6. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter, orderRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})

		orderRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.OrderRPS,
			BurstSize:         cfg.RateLimit.OrderBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	// 7. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Repositories (Secondary Adapters)
	userRepo := postgres.NewUserRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	menuRepo := postgres.NewMenuItemRepository(pool)

	// Services (Core)
	authService := services.NewAuthService(userRepo, tokenManager, logger)
	orderService := services.NewOrderService(orderRepo, menuRepo, hub, logger)
	menuService := services.NewMenuService(menuRepo, menuCache, logger)

	// Handlers (Primary Adapters)
	authHandler := httpAdapter.NewAuthHandler(authService, cfg.JWT.RefreshTokenTTL, cfg.IsProduction(), errorHandler, logger)
	orderHandler := httpAdapter.NewOrderHandler(orderService, errorHandler, logger)
	staffHandler := httpAdapter.NewStaffHandler(orderService, errorHandler, logger)
	menuHandler := httpAdapter.NewMenuHandler(menuService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, cacheChecker, hub, cfg.App.Version)

	// 8. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api for standard probe paths)
	healthHandler.RegisterRoutes(r)

	// WebSocket routes (authentication is handled inside the handlers)
	r.Get("/ws/staff", wsHandler.HandleStaff)
	r.Get("/ws/orders", wsHandler.HandleOrders)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public auth routes with stricter rate limiting
		r.Group(func(r chi.Router) {
			if authRateLimiter != nil {
				r.Use(authRateLimiter.Middleware)
			}
			r.Route("/auth", authHandler.RegisterRoutes)
		})

		// Guest order routes
		r.Group(func(r chi.Router) {
			if orderRateLimiter != nil {
				r.Use(orderRateLimiter.Middleware)
			}
			r.Route("/orders", orderHandler.RegisterRoutes)
		})

		// Public menu
		r.Route("/menu", menuHandler.RegisterPublicRoutes)

		// Protected staff routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Use(mw.RequireRoles(domain.RoleAdmin, domain.RoleStaff))
			r.Route("/staff", staffHandler.RegisterRoutes)
			r.Post("/auth/logout", authHandler.HandleLogout)
		})

		// Admin catalog management
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Use(mw.RequireRoles(domain.RoleAdmin))
			r.Route("/admin/menu", menuHandler.RegisterAdminRoutes)
		})
	})

	// 9. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
