package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/EO-DataHub/eodhp-todo-services/store"
)

// ReadAll rebuilds the ordered user list from the users and todos tables.
func (t *TodoDB) ReadAll(ctx context.Context) ([]models.User, error) {
	rows, err := t.DB.QueryContext(ctx, `SELECT name FROM users ORDER BY position`)
	if err != nil {
		t.Log.Error().Err(err).Msg("error querying users")
		return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
	}
	defer rows.Close()

	users := []models.User{}
	index := make(map[string]int)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
		}
		index[name] = len(users)
		users = append(users, models.User{Name: name, Todos: []string{}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
	}

	todoRows, err := t.DB.QueryContext(ctx, `SELECT user_name, todo FROM todos ORDER BY user_name, position`)
	if err != nil {
		t.Log.Error().Err(err).Msg("error querying todos")
		return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
	}
	defer todoRows.Close()

	for todoRows.Next() {
		var name, todo string
		if err := todoRows.Scan(&name, &todo); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
		}
		i, ok := index[name]
		if !ok {
			continue
		}
		users[i].Todos = append(users[i].Todos, todo)
	}
	if err := todoRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrDataFileRead, err)
	}

	return users, nil
}

// WriteAll replaces every row in one transaction, so a failed write leaves
// the previous contents in place.
func (t *TodoDB) WriteAll(ctx context.Context, users []models.User) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Log.Error().Err(err).Msg("error starting transaction")
		return fmt.Errorf("%w: %w", store.ErrDataFileWrite, err)
	}

	if err := t.replaceAll(ctx, tx, users); err != nil {
		t.Log.Error().Err(err).Msg("error writing users, rolling back")
		tx.Rollback()
		return fmt.Errorf("%w: %w", store.ErrDataFileWrite, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: error committing transaction: %w", store.ErrDataFileWrite, err)
	}

	t.Log.Debug().Int("users", len(users)).Msg("Users written successfully")
	return nil
}

func (t *TodoDB) replaceAll(ctx context.Context, tx *sql.Tx, users []models.User) error {
	// todos are removed by the cascade
	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}

	for i, u := range users {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (name, position) VALUES ($1, $2)`, u.Name, i)
		if err != nil {
			return fmt.Errorf("failed to insert user %q: %w", u.Name, err)
		}
		for j, todo := range u.Todos {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO todos (user_name, position, todo) VALUES ($1, $2, $3)`,
				u.Name, j, todo)
			if err != nil {
				return fmt.Errorf("failed to insert todo for user %q: %w", u.Name, err)
			}
		}
	}
	return nil
}
