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

	"github.com/dominikpree-ux/scolia-180-league/internal/config"
	"github.com/dominikpree-ux/scolia-180-league/internal/email"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/photos"
	"github.com/dominikpree-ux/scolia-180-league/internal/scheduler"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()
	if env := os.Getenv("CONFIG_PATH"); env != "" && *configPath == "config.yaml" {
		*configPath = env
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	st, err := store.OpenSQLite(cfg.Database.Filename)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer st.Close()

	var sender email.Sender
	if cfg.Email.Enabled {
		sesClient, err := email.NewSESClient(cfg.Email)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize email client")
		}
		sender = sesClient
	}

	photoStore, err := photos.NewFromConfig(cfg.Photos)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize photo storage")
	}

	var events league.Events
	if sender != nil {
		events = email.NewNotifier(sender, cfg.App.Name, &log.Logger)
	}
	service := league.NewService(st, events)

	server := newServer(cfg, st, service, photoStore, sender)

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if cfg.Reminders.Enabled && sender != nil {
		if err := scheduler.RegisterReminderJob(sched, st, sender, cfg.App.Name, cfg.Reminders.Cron); err != nil {
			log.Fatal().Err(err).Msg("Failed to register reminder job")
		}
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("league", cfg.App.Name).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("Scheduler shutdown error")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
