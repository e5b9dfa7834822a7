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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	relayhttp "github.com/Strob0t/AgentRelay/internal/adapter/http"
	"github.com/Strob0t/AgentRelay/internal/adapter/mcp"
	"github.com/Strob0t/AgentRelay/internal/adapter/memstore"
	relaynats "github.com/Strob0t/AgentRelay/internal/adapter/nats"
	"github.com/Strob0t/AgentRelay/internal/adapter/natskv"
	relayotel "github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/adapter/ristretto"
	"github.com/Strob0t/AgentRelay/internal/adapter/tiered"
	"github.com/Strob0t/AgentRelay/internal/adapter/workerhttp"
	"github.com/Strob0t/AgentRelay/internal/adapter/ws"
	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/logger"
	"github.com/Strob0t/AgentRelay/internal/middleware"
	"github.com/Strob0t/AgentRelay/internal/port/a2a"
	"github.com/Strob0t/AgentRelay/internal/port/cache"
	"github.com/Strob0t/AgentRelay/internal/port/eventbus"
	"github.com/Strob0t/AgentRelay/internal/resilience"
	"github.com/Strob0t/AgentRelay/internal/service"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

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

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"auth_enabled", cfg.Auth.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	if cfg.Telemetry.Enabled {
		shutdown, err := relayotel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown", "error", err)
			}
		}()
	}

	metrics, err := relayotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	var bus *relaynats.Bus
	if cfg.NATS.URL != "" {
		bus, err = relaynats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = bus.Close() }()
	} else {
		slog.Info("nats disabled, lifecycle events are local only")
	}

	l1, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	var appCache cache.Cache = l1
	if bus != nil {
		// With NATS available, back the in-process cache with a shared KV
		// bucket so capability and skill lookups survive restarts and are
		// consistent across relay instances.
		kv, kvErr := bus.KeyValue(ctx, "agentrelay-cache", cfg.Cache.TTL)
		if kvErr != nil {
			return fmt.Errorf("nats kv: %w", kvErr)
		}
		appCache = tiered.New(l1, natskv.New(kv), cfg.Cache.TTL)
	}

	store := memstore.New()
	hub := ws.NewHub()

	// --- Services ---
	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	dispatcher := workerhttp.New(cfg.Delegation.DispatchTimeout, breaker)

	registrySvc := service.NewRegistryService(store, busOrNil(bus), hub)
	coordinator := service.NewCoordinator(store, registrySvc, dispatcher, busOrNil(bus), hub, metrics)
	authSvc := service.NewAuthService(store, &cfg.Auth)
	sessionSvc := service.NewSessionService(store)

	// --- HTTP ---
	handlers := &relayhttp.Handlers{
		Coordinator: coordinator,
		Registry:    registrySvc,
		Auth:        authSvc,
		Sessions:    sessionSvc,
		Cache:       appCache,
		Hub:         hub,
		Bus:         bus,
		Breaker:     breaker,
		SkillPath:   cfg.Skill.Path,
		StartedAt:   time.Now(),
	}
	a2aHandler := a2a.NewHandler(cfg.Server.BaseURL, coordinator)
	rateLimiter := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)

	r := chi.NewRouter()
	r.Use(relayhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.RequestID)
	r.Use(relayhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(relayotel.HTTPMiddleware)
	}
	r.Use(rateLimiter.Handler)
	r.Use(middleware.Auth(authSvc, cfg.Auth.Enabled))

	relayhttp.MountRoutes(r, handlers, a2aHandler)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// --- MCP ---
	var mcpServer *mcp.Server
	if cfg.MCP.Enabled {
		mcpServer = mcp.NewServer(
			mcp.ServerConfig{Addr: cfg.MCP.Addr, Name: cfg.Logging.Service, Version: version},
			mcp.ServerDeps{Tasks: coordinator, Workers: registrySvc},
		)
		if err := mcpServer.Start(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	}

	sweeper := memstore.NewSweeper(store, busOrNil(bus), hub, cfg.Store.SweepInterval, cfg.Store.TaskTTL, cfg.Registry.StaleAfter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := sweeper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if mcpServer != nil {
			if err := mcpServer.Stop(shutdownCtx); err != nil {
				slog.Warn("mcp shutdown", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// busOrNil avoids a non-nil interface wrapping a nil *Bus.
func busOrNil(b *relaynats.Bus) eventbus.Publisher {
	if b == nil {
		return nil
	}
	return b
}
