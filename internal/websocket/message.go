package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewTaskMessage marshals a task feed notification, e.g. action "task_created".
func NewTaskMessage(action string, payload interface{}) []byte {
	b, _ := json.Marshal(Message{Action: action, Payload: payload})
	return b
}

// NewErrorMessage marshals an error notification for a client.
func NewErrorMessage(msg string) []byte {
	b, _ := json.Marshal(Message{Action: "error", Payload: msg})
	return b
}
