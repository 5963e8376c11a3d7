package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	services "github.com/EO-DataHub/eodhp-todo-services/api/services"
	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RegisterTodoRoutes adds the todo API routes to r. r should match on the
// encoded path (mux.Router.UseEncodedPath) so /todos/a%2Fb reaches ListTodos.
func RegisterTodoRoutes(r *mux.Router, svc *services.TodoService) {
	r.HandleFunc("/add", AddTodo(svc)).Methods(http.MethodPost)
	r.HandleFunc("/todos/{name}", ListTodos(svc)).Methods(http.MethodGet)
	r.HandleFunc("/delete", DeleteUser(svc)).Methods(http.MethodDelete)
	r.HandleFunc("/update", DeleteTodo(svc)).Methods(http.MethodPut)
}

// @Summary Add a todo
// @Description Append a todo to a user's list, creating the user if needed.
// @Tags todos
// @Accept json
// @Produce json
// @Param body body models.TodoRequest true "User name and todo"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /add [post]
func AddTodo(svc *services.TodoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		var req models.TodoRequest
		if err := decodeRequest(r, &req); err != nil {
			logger.Warn().Err(err).Msg("Invalid add request")
			services.HandleErrResponse(w, err)
			return
		}

		todos, err := svc.AddTodo(r.Context(), req.Name, req.Todo)
		if err != nil {
			logger.Error().Err(err).Str("name", req.Name).Msg("Failed to add todo")
			services.HandleErrResponse(w, err)
			return
		}

		services.HandleSuccessResponse(w, http.StatusOK,
			fmt.Sprintf("Todo added successfully for user %s.", req.Name),
			models.TodosResponse{Name: req.Name, Todos: todos})
	}
}

// @Summary List a user's todos
// @Tags todos
// @Produce json
// @Param name path string true "User name" example(Jukka)
// @Success 200 {array} string
// @Failure 404 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /todos/{name} [get]
func ListTodos(svc *services.TodoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Routers built with UseEncodedPath leave the segment escaped so
		// names containing "/" still match the route
		name, err := url.PathUnescape(mux.Vars(r)["name"])
		if err != nil {
			services.HandleErrResponse(w, services.NewBadRequestError("Invalid user name."))
			return
		}
		logger := zerolog.Ctx(r.Context()).With().Str("name", name).Logger()

		todos, err := svc.ListTodos(r.Context(), name)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to list todos")
			services.HandleErrResponse(w, err)
			return
		}

		logger.Debug().Int("todo_count", len(todos)).Msg("Successfully retrieved todos")
		services.WriteResponse(w, http.StatusOK, todos)
	}
}

// @Summary Delete a user
// @Description Remove a user and all of their todos.
// @Tags todos
// @Accept json
// @Produce json
// @Param body body models.DeleteUserRequest true "User name"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /delete [delete]
func DeleteUser(svc *services.TodoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		var req models.DeleteUserRequest
		if err := decodeRequest(r, &req); err != nil {
			logger.Warn().Err(err).Msg("Invalid delete request")
			services.HandleErrResponse(w, err)
			return
		}

		if err := svc.DeleteUser(r.Context(), req.Name); err != nil {
			logger.Warn().Err(err).Str("name", req.Name).Msg("Failed to delete user")
			services.HandleErrResponse(w, err)
			return
		}

		services.HandleSuccessResponse(w, http.StatusOK, "User deleted successfully.", nil)
	}
}

// @Summary Delete a todo
// @Description Remove the first todo equal to the given one from a user's list.
// @Tags todos
// @Accept json
// @Produce json
// @Param body body models.TodoRequest true "User name and todo"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /update [put]
func DeleteTodo(svc *services.TodoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		var req models.TodoRequest
		if err := decodeRequest(r, &req); err != nil {
			logger.Warn().Err(err).Msg("Invalid update request")
			services.HandleErrResponse(w, err)
			return
		}

		if err := svc.DeleteTodo(r.Context(), req.Name, req.Todo); err != nil {
			logger.Warn().Err(err).Str("name", req.Name).Msg("Failed to delete todo")
			services.HandleErrResponse(w, err)
			return
		}

		services.HandleSuccessResponse(w, http.StatusOK, "Todo deleted successfully.", nil)
	}
}
