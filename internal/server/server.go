package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Story91/Gambly/internal/auth"
	"github.com/Story91/Gambly/internal/config"
	"github.com/Story91/Gambly/internal/events"
	"github.com/Story91/Gambly/internal/handlers"
	"github.com/Story91/Gambly/internal/leaderboard"
	custommiddleware "github.com/Story91/Gambly/internal/middleware"
	"github.com/Story91/Gambly/internal/names"
	"github.com/Story91/Gambly/internal/services"
	"github.com/Story91/Gambly/internal/stats"
	"github.com/Story91/Gambly/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// StatsServer owns the process: store connection, services, router and
// the websocket hub.
type StatsServer struct {
	config         *config.Config
	statsService   *services.StatsService
	authMiddleware *auth.AuthMiddleware
	apiRateLimiter *custommiddleware.RateLimiter
	hub            *events.Hub
	server         *http.Server
}

func NewStatsServer() (*StatsServer, error) {
	// Load configuration
	cfg := config.Load()

	// Connect to the store
	client, err := store.NewRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	kv := store.NewRedisStore(client)

	// Wire the stats subsystem: repository -> index -> resolver -> service
	repo := stats.NewRepository(kv)
	index := leaderboard.NewIndex(kv, repo)
	resolver := names.NewResolver(kv,
		names.NewHTTPSource("ens", cfg.EnsResolverURL),
		names.NewHTTPSource("basename", cfg.BasenameResolverURL),
	)
	hub := events.NewHub()
	statsService := services.NewStatsService(repo, index, resolver, hub, cfg)

	// Auth guards the bulk export endpoint
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, "gambly-stats")
	authMiddleware := auth.NewAuthMiddleware(jwtManager)

	return &StatsServer{
		config:         cfg,
		statsService:   statsService,
		authMiddleware: authMiddleware,
		apiRateLimiter: custommiddleware.NewAPIRateLimiter(),
		hub:            hub,
	}, nil
}

func (s *StatsServer) Start() error {
	router := s.setupRouter()

	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: router,
	}

	// Start websocket hub
	go s.hub.Run()

	// Start server in goroutine
	go func() {
		slog.Info("Starting stats server", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *StatsServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	s.apiRateLimiter.Close()

	slog.Info("Server shutdown complete")
	return nil
}

func (s *StatsServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth.SecurityHeaders)
	r.Use(s.apiRateLimiter.RateLimit)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure properly for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Live stats feed
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		events.ServeWs(s.hub, w, r)
	})

	// API routes
	statsHandler := handlers.NewStatsHandler(s.statsService)
	leaderboardHandler := handlers.NewLeaderboardHandler(s.statsService)
	spinHandler := handlers.NewSpinHandler(s.statsService)

	r.Get("/user-stats", statsHandler.GetUserStats)
	r.Post("/user-stats", statsHandler.PostUserStats)
	r.Get("/global-stats", statsHandler.GetGlobalStats)
	r.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
	r.Post("/spin", spinHandler.PostSpin)

	// Bulk export dumps every user; bearer token required
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware.RequireAuth)
		r.Get("/all-user-stats", statsHandler.AllUserStats)
	})

	return r
}
