package plan

import (
	"sort"

	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// SortByPriority orders subtasks by ascending priority, preserving the
// decomposition order for equal priorities.
func SortByPriority(subtasks []task.Subtask) {
	sort.SliceStable(subtasks, func(i, j int) bool {
		return subtasks[i].Priority < subtasks[j].Priority
	})
}

// Readiness is the outcome of the dependency check for one subtask.
type Readiness int

const (
	// Ready means every declared dependency has produced a result.
	Ready Readiness = iota
	// Blocked means at least one dependency has not finished yet.
	Blocked
	// Dead means at least one dependency is in a terminal failed state,
	// so the subtask can never become ready in this run.
	Dead
)

// CheckDeps reports whether a subtask's dependencies are satisfied within the
// given run. Dependencies are named by subtask type; a dependency is met when
// a subtask of that type has completed with a result.
func CheckDeps(st task.Subtask, all []task.Subtask) Readiness {
	if len(st.DependsOn) == 0 {
		return Ready
	}

	byType := make(map[string]task.Status, len(all))
	for i := range all {
		byType[all[i].Type] = all[i].Status
	}

	for _, dep := range st.DependsOn {
		status, ok := byType[dep]
		if !ok || status == task.StatusFailed {
			return Dead
		}
		if status != task.StatusCompleted {
			return Blocked
		}
	}
	return Ready
}

// AllTerminal reports whether every subtask has reached a final state.
func AllTerminal(subtasks []task.Subtask) bool {
	for i := range subtasks {
		if !subtasks[i].Status.IsTerminal() {
			return false
		}
	}
	return true
}

// FailedCount returns the number of subtasks that ended in failure.
func FailedCount(subtasks []task.Subtask) int {
	count := 0
	for i := range subtasks {
		if subtasks[i].Status == task.StatusFailed {
			count++
		}
	}
	return count
}
