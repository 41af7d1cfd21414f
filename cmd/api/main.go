package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"

	"github.com/nyashahama/partner-risk-engine/internal/api"
	"github.com/nyashahama/partner-risk-engine/internal/app"
	"github.com/nyashahama/partner-risk-engine/internal/config"
	"github.com/nyashahama/partner-risk-engine/internal/rpc"
	"github.com/nyashahama/partner-risk-engine/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "ai_enabled", cfg.AIEnabled())

	// Root context cancelled by OS signal. Worker and servers all respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Dependencies ──────────────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close dependencies", "error", err)
		}
	}()

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(a.Service, a.Pinger(), a.Metrics.Handler(), api.Config{
		Env:          cfg.Env,
		BatchTimeout: cfg.BatchTimeout,
	}, logger)

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BatchTimeout + 10*time.Second, // batch runs hold the response open
		IdleTimeout:  120 * time.Second,
	}

	// ── gRPC server ───────────────────────────────────────────────────────────
	grpcSrv := rpc.NewServer(a.Service, logger)

	// ── Shared listener ───────────────────────────────────────────────────────
	// gRPC is recognised by its HTTP/2 content-type; everything else is HTTP.
	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := mux.Match(cmux.Any())

	serverErr := make(chan error, 3)
	go func() {
		if err := grpcSrv.Serve(grpcL); err != nil && !errors.Is(err, cmux.ErrListenerClosed) && !errors.Is(err, net.ErrClosed) {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		logger.Info("server listening", "addr", lis.Addr().String())
		if err := srv.Serve(httpL); err != nil && !errors.Is(err, http.ErrServerClosed) &&
			!errors.Is(err, cmux.ErrListenerClosed) && !errors.Is(err, net.ErrClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		if err := mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			serverErr <- fmt.Errorf("cmux: %w", err)
		}
	}()

	// ── Worker ────────────────────────────────────────────────────────────────
	workerDone := make(chan struct{})
	if cfg.BatchInterval > 0 {
		job := worker.NewJob(a.Service, cfg.BatchTimeout, logger)
		runner := worker.NewRunner(job, worker.RunnerConfig{
			Interval:   cfg.BatchInterval,
			MaxRetries: cfg.BatchMaxRetries,
		}, logger)
		go func() {
			runner.Start(ctx)
			close(workerDone)
		}()
	} else {
		close(workerDone)
	}

	// Block until either a signal arrives or a server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	grpcStopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(grpcStopped)
	}()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	select {
	case <-grpcStopped:
	case <-shutdownCtx.Done():
		grpcSrv.Stop()
	}
	mux.Close()
	<-workerDone

	logger.Info("shutdown complete")
	return nil
}
