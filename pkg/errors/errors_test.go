package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := New("TEST_ERROR", "Test error message", http.StatusBadRequest)
	assert.Equal(t, "TEST_ERROR: Test error message", err.Error())

	wrapped := err.WithError(errors.New("cause"))
	assert.Equal(t, "TEST_ERROR: Test error message: cause", wrapped.Error())
}

func TestError_WithErrorDoesNotMutateShared(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := ErrServiceUnavailable.WithError(base)

	assert.Nil(t, ErrServiceUnavailable.Err)
	assert.Same(t, base, wrapped.Err)
	assert.ErrorIs(t, wrapped, base)
}

func TestError_WithDetailsAndMessage(t *testing.T) {
	err := ErrValidationFailed.WithDetails(map[string]string{"field": "email"}).WithMessage("email required")

	assert.Nil(t, ErrValidationFailed.Details)
	assert.Equal(t, "email required", err.Message)
	assert.NotNil(t, err.Details)
}

func TestError_IsMatchesCodeAcrossCopies(t *testing.T) {
	copied := ErrSongNotFound.WithError(errors.New("no rows")).WithMessage("song 1001 not found")
	assert.ErrorIs(t, copied, ErrSongNotFound)
	assert.NotErrorIs(t, copied, ErrRequestNotFound)
	assert.ErrorIs(t, fmt.Errorf("submit: %w", copied), ErrSongNotFound)
}

func TestIsError(t *testing.T) {
	assert.True(t, IsError(ErrUserNotFound, ErrUserNotFound))
	assert.False(t, IsError(ErrUserNotFound, ErrInvalidInput))
	assert.False(t, IsError(errors.New("standard error"), ErrUserNotFound))
	assert.True(t, IsError(fmt.Errorf("ctx: %w", ErrInvalidState), ErrInvalidState))
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, GetHTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatus(ErrServiceUnavailable))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("standard error")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, "", GetCode(nil))
	assert.Equal(t, ErrCodeUnauthorized, GetCode(ErrUnauthorized))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("x")))
}
