package services

import (
	"context"
	"slices"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/rs/zerolog"
)

// AddTodo appends todo to the named user's list, creating the user if it
// does not exist yet, and returns the user's todos after the change.
func (s *TodoService) AddTodo(ctx context.Context, name, todo string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var todos []string
	err := s.update(ctx, func(users []models.User) ([]models.User, error) {
		i := findUser(users, name)
		if i >= 0 {
			users[i].Todos = append(users[i].Todos, todo)
		} else {
			users = append(users, models.User{Name: name, Todos: []string{todo}})
			i = len(users) - 1
			logger.Debug().Str("name", name).Msg("Creating new user")
		}
		todos = slices.Clone(users[i].Todos)
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Str("name", name).Int("todo_count", len(todos)).Msg("Todo added successfully")
	s.notify(ctx, models.ActionTodoAdded, name, todo)
	return todos, nil
}

// ListTodos returns the named user's todos in insertion order.
func (s *TodoService) ListTodos(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.Store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	i := findUser(users, name)
	if i < 0 {
		return nil, ErrUserNotFound
	}

	if users[i].Todos == nil {
		return []string{}, nil
	}
	return users[i].Todos, nil
}

// DeleteUser removes the named user and all of their todos.
func (s *TodoService) DeleteUser(ctx context.Context, name string) error {
	err := s.update(ctx, func(users []models.User) ([]models.User, error) {
		i := findUser(users, name)
		if i < 0 {
			return nil, ErrUserNotFound
		}
		return slices.Delete(users, i, i+1), nil
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("name", name).Msg("User deleted successfully")
	s.notify(ctx, models.ActionUserDeleted, name, "")
	return nil
}

// DeleteTodo removes the first todo equal to todo from the named user's list.
// Nothing is written when the user or the todo is missing.
func (s *TodoService) DeleteTodo(ctx context.Context, name, todo string) error {
	remaining := 0
	err := s.update(ctx, func(users []models.User) ([]models.User, error) {
		i := findUser(users, name)
		if i < 0 {
			return nil, ErrUserNotFound
		}

		j := slices.Index(users[i].Todos, todo)
		if j < 0 {
			return nil, ErrTodoNotFound
		}
		users[i].Todos = slices.Delete(users[i].Todos, j, j+1)
		remaining = len(users[i].Todos)
		return users, nil
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("name", name).Int("todo_count", remaining).Msg("Todo deleted successfully")
	s.notify(ctx, models.ActionTodoDeleted, name, todo)
	return nil
}

// update runs one read-modify-write cycle of the store under mu. The store
// is not written when fn fails.
func (s *TodoService) update(ctx context.Context, fn func([]models.User) ([]models.User, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.Store.ReadAll(ctx)
	if err != nil {
		return err
	}

	users, err = fn(users)
	if err != nil {
		return err
	}

	return s.Store.WriteAll(ctx, users)
}

// notify publishes a change event. It must be called without mu held so a
// slow broker never blocks other requests. A failed publish is only logged.
func (s *TodoService) notify(ctx context.Context, action, name, todo string) {
	if s.Events == nil {
		return
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	event := models.TodoEvent{
		Action:    action,
		Name:      name,
		Todo:      todo,
		Timestamp: now().Unix(),
	}
	if err := s.Events.Notify(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", action).Msg("Failed to publish todo event")
	}
}

// findUser returns the index of the user with exactly this name, or -1.
func findUser(users []models.User, name string) int {
	return slices.IndexFunc(users, func(u models.User) bool {
		return u.Name == name
	})
}
