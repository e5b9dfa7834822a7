package broadcast

// Event types pushed to observers. They mirror the bus subjects so a client
// watching the WebSocket stream sees the same lifecycle as a NATS consumer.
const (
	EventTaskSubmitted = "task.submitted"
	EventTaskCompleted = "task.completed"
	EventSubtaskResult = "task.subtask.result"
	EventWorkerOnline  = "worker.online"
	EventWorkerOffline = "worker.offline"
)

// TaskEvent is pushed when a task is submitted or reaches a terminal state.
type TaskEvent struct {
	TaskID   string `json:"task_id"`
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// SubtaskEvent is pushed when a subtask resolves, successfully or not.
type SubtaskEvent struct {
	TaskID    string `json:"task_id"`
	SubtaskID string `json:"subtask_id"`
	Status    string `json:"status"`
	Worker    string `json:"worker,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// WorkerEvent is pushed when a worker registers or is flagged offline.
type WorkerEvent struct {
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Capabilities []string `json:"capabilities,omitempty"`
}
