package utils

import (
	"errors"
	"log/slog"
	"net/http"

	appErrors "github.com/aaravmahajanofficial/clothing-store/internal/errors"
	"github.com/aaravmahajanofficial/clothing-store/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// ParseAndValidate decodes the JSON body into dest and validates it, writing
// a 400 response and returning false on failure.
func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate, logger *slog.Logger) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		response.Error(w, appErrors.BadRequestError("Failed to parse request body").WithDetail(err.Error()))
		return false
	}

	if !ValidateValue(w, validate, dest, logger) {
		return false
	}

	return true

}

func ValidateValue(w http.ResponseWriter, validate *validator.Validate, data any, logger *slog.Logger) bool {

	err := ValidateStruct(validate, data)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		logger.Warn("Input validation failed", slog.String("error", validationErrs.Error()))
		response.ValidationError(w, validationErrs)
		return false
	}

	logger.Error("Unexpected validation error", slog.String("error", err.Error()))
	response.Error(w, appErrors.InternalError("Failed to validate request"))
	return false
}
