package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/chesswatch/chesswatch-api/internal/config"
	"github.com/chesswatch/chesswatch-api/internal/domain/reputation"
	"github.com/chesswatch/chesswatch-api/internal/middleware"
	"github.com/chesswatch/chesswatch-api/internal/pkg/database"
	"github.com/chesswatch/chesswatch-api/internal/pkg/logger"
	"github.com/chesswatch/chesswatch-api/internal/pkg/response"
)

const version = "2.0.0"

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting ChessWatch API")

	ctx := context.Background()

	// ---------- Store ----------
	var store reputation.Store
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer database.ClosePostgres(db)

		store, err = reputation.NewPostgresStore(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Postgres store")
		}
	} else {
		fileStore, err := reputation.NewFileStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize file store")
		}
		log.Info().Str("dir", cfg.DataDir).Msg("Using JSON document store")
		store = fileStore
	}

	// ---------- Cache (optional) ----------
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	statsCache := reputation.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	// ---------- Service and handler ----------
	reputationService := reputation.NewService(ctx, store, statsCache, version)
	reputationHandler := reputation.NewHandler(reputationService)

	// ---------- Router ----------
	r := newRouter(reputationHandler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newRouter(h *reputation.Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(allowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"message": "ChessWatch Global Database API",
			"version": version,
			"health":  "/health",
		})
	})

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/reports", h.Routes())
		r.Mount("/statistics", h.StatsRoutes())
		r.Mount("/admin", h.AdminRoutes())
	})

	return r
}
