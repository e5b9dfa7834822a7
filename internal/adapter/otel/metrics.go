package otel

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the coordinator's instruments. All instruments come from
// the global meter provider, so they are no-ops until Setup runs.
type Metrics struct {
	TasksSubmitted   metric.Int64Counter
	TasksCompleted   metric.Int64Counter
	SubtasksFailed   metric.Int64Counter
	DispatchDuration metric.Float64Histogram
}

// NewMetrics creates the coordinator instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("agentrelay")

	submitted, err := meter.Int64Counter("agentrelay.tasks.submitted",
		metric.WithDescription("Number of tasks submitted"))
	if err != nil {
		return nil, fmt.Errorf("tasks.submitted counter: %w", err)
	}
	completed, err := meter.Int64Counter("agentrelay.tasks.completed",
		metric.WithDescription("Number of tasks that reached a terminal state"))
	if err != nil {
		return nil, fmt.Errorf("tasks.completed counter: %w", err)
	}
	failed, err := meter.Int64Counter("agentrelay.subtasks.failed",
		metric.WithDescription("Number of subtasks that failed"))
	if err != nil {
		return nil, fmt.Errorf("subtasks.failed counter: %w", err)
	}
	dispatch, err := meter.Float64Histogram("agentrelay.dispatch.duration",
		metric.WithDescription("Worker dispatch round-trip duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("dispatch.duration histogram: %w", err)
	}

	return &Metrics{
		TasksSubmitted:   submitted,
		TasksCompleted:   completed,
		SubtasksFailed:   failed,
		DispatchDuration: dispatch,
	}, nil
}
