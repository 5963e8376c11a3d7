package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	services "github.com/EO-DataHub/eodhp-todo-services/api/services"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decodeRequest decodes the JSON body into v and validates it. Every failure
// is returned as a *services.BadRequestError.
func decodeRequest(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return services.NewBadRequestError("Invalid request payload.")
	}

	if err := validate.Struct(v); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			fe := validationErrs[0]
			if fe.Tag() == "required" {
				return services.NewBadRequestError(fmt.Sprintf("%s is required.", fe.Field()))
			}
			return services.NewBadRequestError(fmt.Sprintf("%s is invalid.", fe.Field()))
		}
		return services.NewBadRequestError("Invalid request payload.")
	}

	return nil
}
