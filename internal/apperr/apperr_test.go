package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.HTTPStatus())
		})
	}
}

func TestFrom(t *testing.T) {
	nf := NotFound("Note not found")
	wrapped := fmt.Errorf("lookup: %w", nf)

	assert.Same(t, nf, From(wrapped))
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	plain := errors.New("connection reset")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, InternalMessage, got.Message)
	assert.ErrorIs(t, got, plain)
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("handler: %w", Validation("Title is required"))
	assert.ErrorIs(t, err, Validation("anything"))
	assert.NotErrorIs(t, err, NotFound("anything"))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "Invalid token", Forbidden("Invalid token").Error())
	assert.Equal(t, "Internal Server Error: boom", Internal(errors.New("boom")).Error())
}
