package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"spendtracker/src/api"
	"spendtracker/src/config"
	"spendtracker/src/currency"
	"spendtracker/src/db"
	"spendtracker/src/handlers"
	"spendtracker/src/logger"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Migrations failed")
		}
		log.Info().Msg("Database schema is up to date")
	}

	// Connect to database
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer pool.Close()

	cache, err := newCache(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Cache setup failed")
	}
	defer cache.Close()

	formatter, err := currency.NewFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		log.Fatal().Err(err).Msg("Currency formatter setup failed")
	}

	// Router
	router := api.NewRouter(api.Deps{
		Pool:   pool,
		Cache:  cache,
		Logger: log,
		Auth:   handlers.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL},
		Settings: handlers.Settings{
			WeekStart: cfg.WeekStart,
			Currency:  cfg.Currency,
			Formatter: formatter,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		DemoMode:       cfg.DemoMode,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("demo_mode", cfg.DemoMode).Str("cache", cfg.CacheBackend).Msg("API server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (db.Cache, error) {
	switch cfg.CacheBackend {
	case "redis":
		log.Info().Msg("Using redis analytics cache")
		return db.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
	case "none":
		return db.NopCache{}, nil
	default:
		return db.NewMemoryCache(cfg.CacheTTL)
	}
}
