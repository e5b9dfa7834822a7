package memstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
	"github.com/Strob0t/AgentRelay/internal/port/eventbus"
)

// Sweeper periodically deletes old terminal tasks and flags silent workers
// offline, announcing each offline transition on the event bus and the
// observer stream.
type Sweeper struct {
	store      *Store
	bus        eventbus.Publisher
	hub        broadcast.Broadcaster
	interval   time.Duration
	taskTTL    time.Duration
	staleAfter time.Duration
}

// NewSweeper creates a sweeper over the given store. bus and hub may be nil.
func NewSweeper(store *Store, bus eventbus.Publisher, hub broadcast.Broadcaster, interval, taskTTL, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		store:      store,
		bus:        bus,
		hub:        hub,
		interval:   interval,
		taskTTL:    taskTTL,
		staleAfter: staleAfter,
	}
}

// Run blocks, sweeping on every tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()

	removed, err := s.store.SweepTasks(ctx, now.Add(-s.taskTTL))
	if err != nil {
		slog.Error("task sweep failed", "error", err)
	}

	flagged, err := s.store.MarkStaleWorkers(ctx, now.Add(-s.staleAfter))
	if err != nil {
		slog.Error("worker staleness sweep failed", "error", err)
	}

	for i := range flagged {
		w := &flagged[i]
		if s.bus != nil {
			if data, err := json.Marshal(w); err == nil {
				if err := s.bus.Publish(ctx, eventbus.SubjectWorkerOffline, data); err != nil {
					slog.Warn("publish worker offline failed", "worker", w.Name, "error", err)
				}
			}
		}
		if s.hub != nil {
			s.hub.BroadcastEvent(ctx, broadcast.EventWorkerOffline, broadcast.WorkerEvent{
				Name:   w.Name,
				Status: string(w.Status),
			})
		}
	}

	if removed > 0 || len(flagged) > 0 {
		slog.Info("state sweep", "tasks_removed", removed, "workers_offline", len(flagged))
	}
}
