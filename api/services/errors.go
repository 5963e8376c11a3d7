package services

import (
	"errors"
)

// ErrUserNotFound is returned when no user has the requested name.
var ErrUserNotFound = errors.New("user not found")

// BadRequestError reports a request that cannot be served as sent.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// NewBadRequestError returns a BadRequestError carrying message.
func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

// ErrTodoNotFound is returned when the user has no todo equal to the one
// being deleted.
var ErrTodoNotFound = NewBadRequestError("Todo not found.")
