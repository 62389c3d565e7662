package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	appErrors "github.com/aaravmahajanofficial/clothing-store/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *appErrors.AppError
		code       string
		statusCode int
	}{
		{"Validation", appErrors.ValidationError("bad"), appErrors.ErrCodeValidation, http.StatusBadRequest},
		{"BadRequest", appErrors.BadRequestError("bad"), appErrors.ErrCodeBadRequest, http.StatusBadRequest},
		{"NotFound", appErrors.NotFoundError("bad"), appErrors.ErrCodeNotFound, http.StatusNotFound},
		{"Internal", appErrors.InternalError("bad"), appErrors.ErrCodeInternal, http.StatusInternalServerError},
		{"Database", appErrors.DatabaseError("bad"), appErrors.ErrCodeDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.Equal(t, "bad", tt.err.Error())
		})
	}
}

func TestWithErrorAndDetail(t *testing.T) {
	cause := errors.New("connection reset")

	err := appErrors.DatabaseError("Failed to update cart").WithError(cause).WithDetail("cart 1")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cart 1", err.Detail)
}

func TestIsAppError(t *testing.T) {
	t.Run("Wrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", appErrors.NotFoundError("Cart not found"))

		appErr, ok := appErrors.IsAppError(wrapped)

		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Plain Error", func(t *testing.T) {
		appErr, ok := appErrors.IsAppError(errors.New("plain"))

		assert.False(t, ok)
		assert.Nil(t, appErr)
	})
}

func TestAddValidationError(t *testing.T) {
	err := appErrors.AddValidationError("quantity", "must be greater than 0")

	assert.Equal(t, appErrors.ErrCodeValidation, err.Code)
	assert.Equal(t, "Invalid field 'quantity': must be greater than 0", err.Message)
}
