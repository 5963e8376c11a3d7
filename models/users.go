package models

// User represents a named owner of an ordered list of todos.
type User struct {
	Name  string   `json:"name"`
	Todos []string `json:"todos"`
}

// TodoRequest is the body accepted by the add and update routes.
type TodoRequest struct {
	Name string `json:"name" validate:"required"`
	Todo string `json:"todo" validate:"required"`
}

// DeleteUserRequest is the body accepted by the delete route.
type DeleteUserRequest struct {
	Name string `json:"name" validate:"required"`
}

// TodosResponse is returned as data when a todo is added.
type TodosResponse struct {
	Name  string   `json:"name"`
	Todos []string `json:"todos"`
}
