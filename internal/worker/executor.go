// Package worker implements the relay-worker: a specialist that registers
// with the coordinator, heartbeats, and executes delegated subtasks.
package worker

import (
	"context"
	"fmt"
	"strings"
)

// Executor handles one capability.
type Executor interface {
	Capability() string
	Execute(ctx context.Context, query string, inputs map[string]string) (string, error)
}

// ResearchExecutor produces findings for a research query. Output is
// deterministic and templated; a real deployment would back this with a
// retrieval pipeline or an LLM call.
type ResearchExecutor struct{}

// Capability implements Executor.
func (ResearchExecutor) Capability() string { return "research" }

// Execute implements Executor.
func (ResearchExecutor) Execute(_ context.Context, query string, _ map[string]string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("empty query")
	}
	return fmt.Sprintf("Research findings for %q: collected sources, extracted key facts and open questions.", query), nil
}

// SummarizeExecutor condenses upstream research output. It requires the
// research result in its inputs.
type SummarizeExecutor struct{}

// Capability implements Executor.
func (SummarizeExecutor) Capability() string { return "summarize" }

// Execute implements Executor.
func (SummarizeExecutor) Execute(_ context.Context, query string, inputs map[string]string) (string, error) {
	research, ok := inputs["research"]
	if !ok || research == "" {
		return "", fmt.Errorf("summarize requires research output")
	}
	return fmt.Sprintf("Summary for %q: %s", query, firstSentence(research)), nil
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 {
		return s[:i+1]
	}
	return s
}

// DefaultExecutors returns executors matching the given capability names.
// Unknown names are skipped.
func DefaultExecutors(capabilities []string) []Executor {
	all := map[string]Executor{
		"research":  ResearchExecutor{},
		"summarize": SummarizeExecutor{},
	}
	var out []Executor
	for _, c := range capabilities {
		if e, ok := all[c]; ok {
			out = append(out, e)
		}
	}
	return out
}
