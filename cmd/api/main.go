// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/almanac/internal/app"
	"github.com/briangreenhill/almanac/internal/config"
	"github.com/briangreenhill/almanac/internal/http/routes"
	"github.com/briangreenhill/almanac/internal/jobs"
)

func main() {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	logger = logger.Level(cfg.Level())
	zerolog.DefaultContextLogger = &logger

	// Sources
	sources := app.New(cfg, nil)

	// Cache warming
	if cfg.HasRedis() {
		warmer, err := jobs.NewWarmer(cfg.RedisAddr, cfg.WarmSchedule, jobs.InstanceName(), sources.Registry, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("warmer setup failed")
		}
		if err := warmer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("warmer start failed")
		}
		defer warmer.Shutdown()
		logger.Info().Str("redis", cfg.RedisAddr).Str("schedule", cfg.WarmSchedule).Str("queue", warmer.Queue()).Msg("cache warming enabled")
	}

	// Router / server
	s := routes.New(routes.ServerOptions{
		Logger:  logger,
		Plugins: sources.Registry,
		Stats:   sources,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("port", cfg.Port).Strs("plugins", sources.Registry.List()).Msg("starting app")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
