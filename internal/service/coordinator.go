package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	relayotel "github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/domain/plan"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
	"github.com/Strob0t/AgentRelay/internal/port/dispatch"
	"github.com/Strob0t/AgentRelay/internal/port/eventbus"
	"github.com/Strob0t/AgentRelay/internal/port/store"
)

// Failure reasons recorded on subtasks.
const (
	ReasonNoCapableAgent   = "no capable agent"
	ReasonDependencyNotMet = "dependency not met"
)

// Coordinator decomposes queries into subtasks and delegates them to workers.
//
// The delegation loop is deliberately simple: subtasks run one at a time in
// ascending priority order, each dispatched once to the first capable worker.
// A failed subtask never aborts the rest of the run.
type Coordinator struct {
	store      store.TaskStore
	registry   *RegistryService
	dispatcher dispatch.Dispatcher
	bus        eventbus.Publisher
	hub        broadcast.Broadcaster
	metrics    *relayotel.Metrics
}

// NewCoordinator creates a coordinator. bus, hub and metrics may be nil.
func NewCoordinator(s store.TaskStore, registry *RegistryService, dispatcher dispatch.Dispatcher, bus eventbus.Publisher, hub broadcast.Broadcaster, metrics *relayotel.Metrics) *Coordinator {
	return &Coordinator{
		store:      s,
		registry:   registry,
		dispatcher: dispatcher,
		bus:        bus,
		hub:        hub,
		metrics:    metrics,
	}
}

// Submit decomposes the query, runs the delegation loop to completion and
// returns the finished task. The task is always marked completed when the
// loop ends; callers inspect per-subtask statuses for partial failure.
func (c *Coordinator) Submit(ctx context.Context, clientID string, req task.SubmitRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &task.Task{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Query:     req.Query,
		Depth:     task.Depth(req.Depth),
		Status:    task.StatusPending,
		Results:   make(map[string]task.Result),
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Subtasks = plan.Decompose(t.ID, t.Depth)

	if err := c.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	slog.Info("task submitted", "task", t.ID, "depth", t.Depth, "subtasks", len(t.Subtasks))
	c.publish(ctx, eventbus.SubjectTaskSubmitted, t)
	if c.metrics != nil {
		c.metrics.TasksSubmitted.Add(ctx, 1)
	}

	t.Status = task.StatusInProgress
	c.broadcastTask(ctx, broadcast.EventTaskSubmitted, t)

	c.executeSubtasks(ctx, t)

	t.Status = task.StatusCompleted
	t.UpdatedAt = time.Now()
	if err := c.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	slog.Info("task finished", "task", t.ID, "failed_subtasks", plan.FailedCount(t.Subtasks))
	c.publish(ctx, eventbus.SubjectTaskCompleted, t)
	c.broadcastTask(ctx, broadcast.EventTaskCompleted, t)
	if c.metrics != nil {
		c.metrics.TasksCompleted.Add(ctx, 1)
	}

	return t, nil
}

// Get returns a task by id.
func (c *Coordinator) Get(ctx context.Context, id string) (*task.Task, error) {
	return c.store.GetTask(ctx, id)
}

// List returns all tasks.
func (c *Coordinator) List(ctx context.Context) ([]task.Task, error) {
	return c.store.ListTasks(ctx)
}

// executeSubtasks runs the sequential delegation loop over t.Subtasks.
func (c *Coordinator) executeSubtasks(ctx context.Context, t *task.Task) {
	plan.SortByPriority(t.Subtasks)

	for i := range t.Subtasks {
		st := &t.Subtasks[i]

		if plan.CheckDeps(*st, t.Subtasks) != plan.Ready {
			// In priority order every dependency has already run, so an
			// unmet dependency here can never recover within this run.
			c.failSubtask(ctx, t, st, ReasonDependencyNotMet)
			continue
		}

		worker, err := c.registry.FindCapable(ctx, st.Capability)
		if err != nil {
			c.failSubtask(ctx, t, st, ReasonNoCapableAgent)
			continue
		}

		st.Status = task.StatusInProgress
		c.publish(ctx, eventbus.SubjectSubtaskDispatch, st)

		req := &dispatch.ExecuteRequest{
			TaskID:     t.ID,
			SubtaskID:  st.ID,
			Capability: st.Capability,
			Query:      t.Query,
			Context:    dependencyOutputs(st, t.Subtasks),
		}

		started := time.Now()
		resp, err := c.dispatcher.Execute(ctx, worker, req)
		elapsed := time.Since(started)
		if c.metrics != nil {
			c.metrics.DispatchDuration.Record(ctx, elapsed.Seconds())
		}

		if err != nil {
			slog.Warn("subtask dispatch failed", "task", t.ID, "subtask", st.ID, "worker", worker.Name, "error", err)
			c.failSubtask(ctx, t, st, err.Error())
			continue
		}
		if resp.Error != "" {
			c.failSubtask(ctx, t, st, resp.Error)
			continue
		}

		result := task.Result{
			Worker:     worker.Name,
			Output:     resp.Output,
			DurationMS: elapsed.Milliseconds(),
			FinishedAt: time.Now(),
		}
		st.Result = &result
		st.Status = task.StatusCompleted
		t.Results[worker.Name] = result

		slog.Debug("subtask completed", "task", t.ID, "subtask", st.ID, "worker", worker.Name)
		c.publish(ctx, eventbus.SubjectSubtaskResult, st)
		c.broadcastSubtask(ctx, t, st)
	}
}

// dependencyOutputs collects outputs of completed dependencies, keyed by
// subtask type, for inclusion in the dispatch payload.
func dependencyOutputs(st *task.Subtask, all []task.Subtask) map[string]string {
	if len(st.DependsOn) == 0 {
		return nil
	}
	out := make(map[string]string, len(st.DependsOn))
	for _, dep := range st.DependsOn {
		for i := range all {
			if all[i].Type == dep && all[i].Result != nil {
				out[dep] = all[i].Result.Output
			}
		}
	}
	return out
}

func (c *Coordinator) failSubtask(ctx context.Context, t *task.Task, st *task.Subtask, reason string) {
	st.Status = task.StatusFailed
	st.Reason = reason
	slog.Warn("subtask failed", "task", t.ID, "subtask", st.ID, "reason", reason)
	c.publish(ctx, eventbus.SubjectSubtaskResult, st)
	c.broadcastSubtask(ctx, t, st)
	if c.metrics != nil {
		c.metrics.SubtasksFailed.Add(ctx, 1)
	}
}

func (c *Coordinator) broadcastTask(ctx context.Context, eventType string, t *task.Task) {
	if c.hub == nil {
		return
	}
	c.hub.BroadcastEvent(ctx, eventType, broadcast.TaskEvent{
		TaskID:   t.ID,
		ClientID: t.ClientID,
		Status:   string(t.Status),
	})
}

func (c *Coordinator) broadcastSubtask(ctx context.Context, t *task.Task, st *task.Subtask) {
	if c.hub == nil {
		return
	}
	ev := broadcast.SubtaskEvent{
		TaskID:    t.ID,
		SubtaskID: st.ID,
		Status:    string(st.Status),
		Reason:    st.Reason,
	}
	if st.Result != nil {
		ev.Worker = st.Result.Worker
	}
	c.hub.BroadcastEvent(ctx, broadcast.EventSubtaskResult, ev)
}

func (c *Coordinator) publish(ctx context.Context, subject string, payload any) {
	if c.bus == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal event", "subject", subject, "error", err)
		return
	}
	if err := c.bus.Publish(ctx, subject, data); err != nil {
		slog.Warn("publish event failed", "subject", subject, "error", err)
	}
}
