package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
	"github.com/Strob0t/AgentRelay/internal/port/eventbus"
	"github.com/Strob0t/AgentRelay/internal/port/store"
)

// RegistryService tracks self-registered workers and matches capabilities.
type RegistryService struct {
	store store.WorkerStore
	bus   eventbus.Publisher
	hub   broadcast.Broadcaster
}

// NewRegistryService creates a registry service. bus and hub may be nil.
func NewRegistryService(s store.WorkerStore, bus eventbus.Publisher, hub broadcast.Broadcaster) *RegistryService {
	return &RegistryService{store: s, bus: bus, hub: hub}
}

// Register upserts a worker. Re-registration under the same name silently
// overwrites URL and capabilities and refreshes liveness.
func (s *RegistryService) Register(ctx context.Context, req agent.RegisterRequest) (*agent.Worker, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	w := &agent.Worker{
		Name:         req.Name,
		URL:          req.URL,
		Capabilities: req.Capabilities,
		Status:       agent.StatusOnline,
		LastSeen:     now,
		RegisteredAt: now,
	}
	if existing, err := s.store.GetWorker(ctx, req.Name); err == nil {
		w.RegisteredAt = existing.RegisteredAt
	}

	if err := s.store.UpsertWorker(ctx, w); err != nil {
		return nil, fmt.Errorf("upsert worker: %w", err)
	}

	slog.Info("worker registered", "name", w.Name, "url", w.URL, "capabilities", w.Capabilities)
	s.publish(ctx, eventbus.SubjectWorkerRegistered, w)
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, broadcast.EventWorkerOnline, broadcast.WorkerEvent{
			Name:         w.Name,
			Status:       string(w.Status),
			Capabilities: w.Capabilities,
		})
	}
	return w, nil
}

// List returns all known workers in first-registration order.
func (s *RegistryService) List(ctx context.Context) ([]agent.Worker, error) {
	return s.store.ListWorkers(ctx)
}

// FindCapable returns the first online worker advertising the capability,
// in first-registration order. No load awareness, no failover candidate.
func (s *RegistryService) FindCapable(ctx context.Context, capability string) (*agent.Worker, error) {
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range workers {
		w := &workers[i]
		if w.Status == agent.StatusOnline && w.HasCapability(capability) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no capable agent for %q: %w", capability, domain.ErrNotFound)
}

// Capabilities aggregates advertised capabilities across online workers.
func (s *RegistryService) Capabilities(ctx context.Context) (map[string][]string, error) {
	workers, err := s.store.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, w := range workers {
		if w.Status != agent.StatusOnline {
			continue
		}
		for _, c := range w.Capabilities {
			out[c] = append(out[c], w.Name)
		}
	}
	return out, nil
}

// publish sends a best-effort lifecycle event; failures are logged, never fatal.
func (s *RegistryService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal event", "subject", subject, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, subject, data); err != nil {
		slog.Warn("publish event failed", "subject", subject, "error", err)
	}
}
