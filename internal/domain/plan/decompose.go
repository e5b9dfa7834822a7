// Package plan turns a research query into an ordered set of subtasks and
// provides the readiness checks the delegation loop runs over them.
package plan

import "github.com/Strob0t/AgentRelay/internal/domain/task"

// Decompose expands a query into subtasks according to the requested depth.
//
// Every depth yields one "research" subtask at priority 1. The "detailed" and
// "comprehensive" depths append a "summarize" subtask at priority 2 that
// depends on the research output. There is no recursive decomposition and the
// query content is not inspected.
func Decompose(taskID string, depth task.Depth) []task.Subtask {
	subtasks := []task.Subtask{
		{
			ID:         task.SubtaskID(taskID, 0),
			Type:       task.TypeResearch,
			Capability: task.TypeResearch,
			Priority:   1,
			Status:     task.StatusPending,
		},
	}

	if depth == task.DepthDetailed || depth == task.DepthComprehensive {
		subtasks = append(subtasks, task.Subtask{
			ID:         task.SubtaskID(taskID, 1),
			Type:       task.TypeSummarize,
			Capability: task.TypeSummarize,
			Priority:   2,
			DependsOn:  []string{task.TypeResearch},
			Status:     task.StatusPending,
		})
	}

	return subtasks
}
