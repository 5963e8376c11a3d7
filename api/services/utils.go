package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/EO-DataHub/eodhp-todo-services/store"
	"github.com/lib/pq"
)

const unknownErrorMessage = "Unknown error occurred."

// WriteResponse writes response as uncached JSON.
func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "max-age=0")
	w.WriteHeader(statusCode)

	if response == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HandleSuccessResponse writes the success envelope with message and data.
func HandleSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteResponse(w, statusCode, models.Response{
		Success: 1,
		Message: message,
		Data:    data,
	})
}

// HandleErrResponse maps err to a status code and writes the error envelope.
func HandleErrResponse(w http.ResponseWriter, err error) {
	statusCode, response := ErrorResponse(err)
	WriteResponse(w, statusCode, response)
}

// ErrorResponse classifies err into an HTTP status and error envelope.
func ErrorResponse(err error) (int, models.Response) {
	var (
		badRequest *BadRequestError
		statusCode int
		response   = models.Response{Success: 0}
	)

	switch {
	case errors.Is(err, ErrUserNotFound):
		statusCode = http.StatusNotFound
		response.ErrorCode = "UserNotFound"
		response.ErrorDetails = "User not found"
	case errors.As(err, &badRequest):
		statusCode = http.StatusBadRequest
		response.ErrorCode = "BadRequest"
		response.ErrorDetails = badRequest.Message
	case errors.Is(err, store.ErrDataFileWrite):
		statusCode = http.StatusInternalServerError
		response.ErrorCode = "WriteDataFileError"
		response.ErrorDetails = "Failed to write data file."
	case errors.Is(err, store.ErrDataFileRead):
		statusCode = http.StatusInternalServerError
		response.ErrorCode = "ReadDataFileError"
		response.ErrorDetails = "Failed to read data file."
	case errors.Is(err, store.ErrDataFileAccess), errors.Is(err, store.ErrDataFileCreate):
		statusCode = http.StatusInternalServerError
		response.ErrorCode = "DataFileAccessError"
		response.ErrorDetails = "Failed to access data file."
	default:
		statusCode = http.StatusInternalServerError
		response.ErrorCode = "Unknown"
		response.ErrorDetails = unknownErrorMessage
	}

	// Browser clients show message for both outcomes
	response.Message = response.ErrorDetails

	// Surface the SQLSTATE name when the postgres store failed
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		response.ErrorCode = pqErr.Code.Name()
	}

	return statusCode, response
}
