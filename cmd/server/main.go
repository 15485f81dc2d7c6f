// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/quadras/internal/api/auth"
	"github.com/codr1/quadras/internal/config"
	"github.com/codr1/quadras/internal/db"
	"github.com/codr1/quadras/internal/ratelimit"
	"github.com/codr1/quadras/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("Invalid server configuration")
	}

	setupLogger(cfg.App.Environment)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := auth.EnsureAdmin(ctx, database.Queries,
		os.Getenv("QUADRAS_ADMIN_NAME"),
		os.Getenv("QUADRAS_ADMIN_EMAIL"),
		os.Getenv("QUADRAS_ADMIN_PASSWORD"),
	); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	loginLimiter := ratelimit.New(ratelimit.DefaultConfig())
	defer loginLimiter.Close()

	jobs, err := scheduler.New(ctx)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if err := scheduler.RegisterHousekeeping(jobs, database, cfg.Housekeeping.PurgeCron, cfg.Housekeeping.RetentionDays); err != nil {
		return fmt.Errorf("register housekeeping: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	server := newServer(cfg, deps{
		database: database,
		issuer:   auth.NewTokenIssuer(cfg.App.SecretKey, cfg.App.TokenTTL),
		limiter:  loginLimiter,
	})

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
