package handlers

import (
	"net/http"

	services "github.com/EO-DataHub/eodhp-todo-services/api/services"
)

// Health reports that the server is up.
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.WriteResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
