package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookErrorMessage(t *testing.T) {
	err := NewWebhookError(500, "boom")
	assert.Equal(t, "Webhook failed: 500 - boom", err.Message)
	assert.True(t, err.Retryable)
	assert.Equal(t, 500, err.Metadata["status"])

	assert.False(t, NewWebhookError(404, "").Retryable)
}

func TestCodeOfWrapped(t *testing.T) {
	base := NewBoardQueryError(errors.New("timeout"))
	wrapped := fmt.Errorf("fetch units: %w", base)

	assert.Equal(t, ErrCodeBoardQueryFailed, CodeOf(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, "timeout", base.Details)
	assert.ErrorContains(t, wrapped, "timeout")
}

func TestCodeOfPlainError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, ErrorCode(""), CodeOf(err))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewFileRejectedError("too big"), http.StatusBadRequest},
		{NewNotFoundError(7), http.StatusNotFound},
		{NewWebhookError(500, "x"), http.StatusBadGateway},
		{NewStorageError(errors.New("db")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("io")
	err := NewEncryptionError(cause)
	assert.ErrorIs(t, err, cause)
}
