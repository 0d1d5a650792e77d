package entity

// ChatRequest is the body of POST /api/chat/
type ChatRequest struct {
	Message     string   `json:"message"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ChatResponse is returned with the generated reply.
type ChatResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

// ChatTask is the unit of work serialized onto the broker for the async path.
// TaskID doubles as the idempotency key: a redelivered task with an already
// claimed ID is dropped by the worker.
type ChatTask struct {
	TaskID      string  `json:"task_id"`
	Message     string  `json:"message"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Requester   string  `json:"requester"`
}

// ChatTaskResult is delivered through the result store.
type ChatTaskResult struct {
	TaskID string `json:"task_id"`
	Reply  string `json:"reply,omitempty"`
	Model  string `json:"model,omitempty"`
	Error  string `json:"error,omitempty"`
}
