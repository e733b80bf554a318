package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		statusCode int
	}{
		{"not found", NotFound("order"), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", Unauthorized(""), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", Forbidden(""), "FORBIDDEN", http.StatusForbidden},
		{"bad request", BadRequest("bad"), "BAD_REQUEST", http.StatusBadRequest},
		{"validation", ValidationError("bad"), "VALIDATION_ERROR", http.StatusUnprocessableEntity},
		{"conflict", Conflict("busy"), "CONFLICT", http.StatusConflict},
		{"internal", Internal("boom", nil), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"rate limited", RateLimited(""), "RATE_LIMITED", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.statusCode, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ToResponse().Error.Code)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("row not found")
	appErr := NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, cause)

	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, "order not found: row not found", appErr.Error())
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetStatusCode(NotFound("order")))
	assert.Equal(t, http.StatusConflict, GetStatusCode(fmt.Errorf("wrap: %w", ErrConflict)))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("anything")))
}
