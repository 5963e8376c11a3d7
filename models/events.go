package models

const (
	ActionTodoAdded   = "todo_added"
	ActionUserDeleted = "user_deleted"
	ActionTodoDeleted = "todo_deleted"
)

// TodoEvent is published after every successful change to the store.
type TodoEvent struct {
	Action    string `json:"action"`
	Name      string `json:"name"`
	Todo      string `json:"todo,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
