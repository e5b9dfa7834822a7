package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/logger"
	"github.com/Strob0t/AgentRelay/internal/worker"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.Service = cfg.Worker.Name
	slog.SetDefault(logger.New(logCfg))

	executors := worker.DefaultExecutors(cfg.Worker.Capabilities)
	if len(executors) == 0 {
		return fmt.Errorf("no executors for capabilities %v", cfg.Worker.Capabilities)
	}

	srv := worker.NewServer(cfg.Worker.Name, executors)
	registrar := worker.NewRegistrar(cfg.Worker.CoordinatorURL, cfg.Worker.HeartbeatInterval, agent.RegisterRequest{
		Name:         cfg.Worker.Name,
		URL:          cfg.Worker.URL,
		Capabilities: srv.Capabilities(),
	})

	addr := ":" + cfg.Worker.Port
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting worker", "addr", addr, "coordinator", cfg.Worker.CoordinatorURL, "capabilities", srv.Capabilities())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := registrar.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down worker")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
