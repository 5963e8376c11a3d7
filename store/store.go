// Package store persists the ordered list of users and their todos.
package store

import (
	"context"
	"errors"

	"github.com/EO-DataHub/eodhp-todo-services/models"
)

var (
	ErrDataFileAccess = errors.New("failed to access data file")
	ErrDataFileCreate = errors.New("failed to create data file")
	ErrDataFileRead   = errors.New("failed to read data file")
	ErrDataFileWrite  = errors.New("failed to write data file")
)

// Store reads and writes the whole user list in one operation. Every call
// completes the full read or write before returning.
type Store interface {
	// Initialize makes sure the backing storage exists and is usable.
	Initialize(ctx context.Context) error
	ReadAll(ctx context.Context) ([]models.User, error)
	// WriteAll replaces the stored list with users.
	WriteAll(ctx context.Context, users []models.User) error
}

// cloneUsers returns a deep copy of users with nil todo lists replaced by
// empty ones.
func cloneUsers(users []models.User) []models.User {
	out := make([]models.User, len(users))
	for i, u := range users {
		todos := make([]string, len(u.Todos))
		copy(todos, u.Todos)
		out[i] = models.User{Name: u.Name, Todos: todos}
	}
	return out
}
