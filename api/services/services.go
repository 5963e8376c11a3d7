package services

import (
	"sync"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/internal/events"
	"github.com/EO-DataHub/eodhp-todo-services/store"
)

// TodoService implements the todo operations on top of a store.Store. Each
// operation is one read-modify-write cycle of the whole store; cycles are
// serialized by mu so concurrent requests in this process cannot lose
// updates.
type TodoService struct {
	Store  store.Store
	Events events.Notifier

	mu  sync.Mutex
	now func() time.Time
}

// NewTodoService returns a TodoService. A nil notifier disables events.
func NewTodoService(s store.Store, notifier events.Notifier) *TodoService {
	if notifier == nil {
		notifier = events.NopNotifier{}
	}
	return &TodoService{
		Store:  s,
		Events: notifier,
		now:    time.Now,
	}
}
