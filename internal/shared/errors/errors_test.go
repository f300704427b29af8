package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrap(t *testing.T) {
	base := errors.New("edge not found")
	appErr := NotFound("family member")
	assert.True(t, errors.Is(appErr, ErrNotFound))
	assert.False(t, errors.Is(appErr, base))

	wrapped := fmt.Errorf("lookup: %w", appErr)
	assert.Equal(t, http.StatusNotFound, GetStatusCode(wrapped))
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrProviderFailure, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
		{Forbidden(""), http.StatusForbidden},
		{ValidationError("bad category"), http.StatusUnprocessableEntity},
		{Configuration("unknown model"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetStatusCode(tt.err), tt.err.Error())
	}
}

func TestProviderFailureWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := ProviderFailure("", cause)
	assert.True(t, errors.Is(err, ErrProviderFailure))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}
