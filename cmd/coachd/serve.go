package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/stridewell/coachcore/internal/api"
	"github.com/stridewell/coachcore/internal/breaker"
	"github.com/stridewell/coachcore/internal/coach"
	"github.com/stridewell/coachcore/internal/config"
	"github.com/stridewell/coachcore/internal/memory"
	"github.com/stridewell/coachcore/internal/nudge"
	"github.com/stridewell/coachcore/internal/platform/factory"
	"github.com/stridewell/coachcore/internal/platform/logger"
	"github.com/stridewell/coachcore/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the coach runtime HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	log := logger.New("coachd")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// -------- Durable store --------
	port, closePort, err := factory.NewPort(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = closePort() }()

	// Startup-only bootstrap wait: give the store a short window to come
	// up before serving. Per-call failures afterwards are the breaker's
	// job; they are never retried synchronously.
	if p, ok := port.(factory.Pinger); ok {
		if err := waitForStore(ctx, p); err != nil {
			log.Warn().Err(err).Msg("durable store unreachable at startup, serving degraded")
		}
	}

	// -------- Core wiring --------
	tel := telemetry.New(log)
	br := breaker.New("memory-persistence", log,
		breaker.WithFailureThreshold(cfg.BreakerFailureThreshold),
		breaker.WithResetTimeout(cfg.BreakerReset()),
	)
	facade := memory.NewFacade(memory.NewService(), port, br, tel, log)
	runtime := coach.NewRuntime(facade, tel, log)

	// -------- Nudge scheduler --------
	if cfg.NudgesEnabled {
		sched := nudge.NewScheduler(runtime, func(d nudge.Delivery) {
			log.Info().
				Str("nudge_id", d.ID).
				Str("kind", string(d.Kind)).
				Str("message", d.Response.Message).
				Msg("nudge ready for delivery")
		}, log)
		if err := sched.Start(cfg.MorningNudgeCron, cfg.EveningNudgeCron); err != nil {
			log.Error().Err(err).Msg("Failed to start nudge scheduler")
			return err
		}
		defer sched.Stop()
	}

	// -------- Router & server --------
	router := api.NewRouter(runtime, log)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("Coach runtime listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// waitForStore probes the store with exponential backoff, capped at 30s.
func waitForStore(ctx context.Context, p factory.Pinger) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5),
		ctx,
	)
	return backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return p.Ping(pingCtx)
	}, policy)
}
