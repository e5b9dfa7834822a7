package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
)

// Registrar keeps the worker registered with the coordinator. Registration
// doubles as the heartbeat: re-registering refreshes liveness.
type Registrar struct {
	coordinatorURL string
	interval       time.Duration
	request        agent.RegisterRequest
	httpClient     *http.Client
}

// NewRegistrar creates a registrar for the given worker identity.
func NewRegistrar(coordinatorURL string, interval time.Duration, req agent.RegisterRequest) *Registrar {
	return &Registrar{
		coordinatorURL: coordinatorURL,
		interval:       interval,
		request:        req,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Run registers immediately, then re-registers on every tick until the
// context is canceled. Failures are logged and retried on the next tick.
func (r *Registrar) Run(ctx context.Context) error {
	if err := r.register(ctx); err != nil {
		slog.Warn("initial registration failed, will retry", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.register(ctx); err != nil {
				slog.Warn("heartbeat registration failed", "error", err)
			}
		}
	}
}

func (r *Registrar) register(ctx context.Context) error {
	body, err := json.Marshal(r.request)
	if err != nil {
		return fmt.Errorf("marshal register request: %w", err)
	}

	url := r.coordinatorURL + "/api/v1/workers/register"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("register with coordinator: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coordinator returned %d", resp.StatusCode)
	}

	slog.Debug("registered with coordinator", "worker", r.request.Name)
	return nil
}
