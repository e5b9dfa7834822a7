package task_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

func TestValidDepth(t *testing.T) {
	for _, d := range []string{"basic", "detailed", "comprehensive"} {
		if !task.ValidDepth(d) {
			t.Errorf("expected %q to be valid", d)
		}
	}
	for _, d := range []string{"", "deep", "BASIC"} {
		if task.ValidDepth(d) {
			t.Errorf("expected %q to be invalid", d)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if !task.StatusCompleted.IsTerminal() || !task.StatusFailed.IsTerminal() {
		t.Fatal("completed and failed must be terminal")
	}
	if task.StatusPending.IsTerminal() || task.StatusInProgress.IsTerminal() {
		t.Fatal("pending and in_progress must not be terminal")
	}
}

func TestSubtaskID(t *testing.T) {
	if got := task.SubtaskID("t1", 0); got != "t1-0" {
		t.Fatalf("expected t1-0, got %q", got)
	}
}

func TestSubmitRequestValidate(t *testing.T) {
	req := task.SubmitRequest{Query: "golang schedulers", Depth: "basic"}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	cases := []task.SubmitRequest{
		{Query: "", Depth: "basic"},
		{Query: "q", Depth: ""},
		{Query: "q", Depth: "extreme"},
	}
	for _, c := range cases {
		err := c.Validate()
		if err == nil {
			t.Fatalf("expected error for %+v", c)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
}

func TestResultMarshalsMilliseconds(t *testing.T) {
	r := task.Result{Worker: "researcher", Output: "ok", DurationMS: 42}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if !strings.Contains(string(data), `"duration_ms":42`) {
		t.Fatalf("expected duration_ms in milliseconds, got %s", data)
	}
}
