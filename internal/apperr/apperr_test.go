package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad").Status())
	assert.Equal(t, http.StatusConflict, Conflict("taken").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("booking").Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no").Status())
	assert.Equal(t, http.StatusForbidden, Forbidden("no").Status())
	assert.Equal(t, http.StatusInternalServerError, Internal(errors.New("db down")).Status())
}

func TestAsAndIs(t *testing.T) {
	cause := errors.New("db down")
	wrapped := fmt.Errorf("list bookings: %w", NotFound("booking"))

	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
	assert.Equal(t, KindNotFound, As(wrapped).Kind)

	internal := As(cause)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.ErrorIs(t, internal, cause)
	assert.NotContains(t, internal.Message, "db down")
}

func TestErrorString(t *testing.T) {
	e := Conflict("seats already booked").WithDetails(map[string]any{"seats": []string{"A1"}})
	assert.Equal(t, "CONFLICT: seats already booked", e.Error())
	assert.Equal(t, []string{"A1"}, e.Details["seats"])
	assert.Equal(t, "booking not found", NotFound("booking").Message)
}

func TestBody(t *testing.T) {
	body := Conflict("taken").WithDetails(map[string]any{"seats": []string{"A1"}}).Body()
	assert.Equal(t, false, body["success"])
	assert.Equal(t, KindConflict, body["code"])
	assert.Contains(t, body, "details")

	assert.NotContains(t, NotFound("cart").Body(), "details")
}

func TestFromStatus(t *testing.T) {
	assert.Equal(t, KindNotFound, FromStatus(http.StatusNotFound, "").Kind)
	assert.Equal(t, "Not Found", FromStatus(http.StatusNotFound, "").Message)
	assert.Equal(t, KindValidation, FromStatus(http.StatusUnsupportedMediaType, "bad type").Kind)
	assert.Equal(t, KindInternal, FromStatus(http.StatusBadGateway, "").Kind)
}
