package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "P42")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "product with id P42 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "NOT_FOUND: product with id P42 not found: resource not found", err.Error())
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("limit must be positive")

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("elasticsearch", cause)

	assert.Equal(t, "UNAVAILABLE", err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestInternal(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load product")

	assert.EqualError(t, err, "load product: resource not found")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("handler: %w", NotFound("product", "x")), http.StatusNotFound},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"sentinel unavailable", ErrUnavailable, http.StatusServiceUnavailable},
		{"plain error", errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
