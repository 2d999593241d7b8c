package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeRenderFailed         ErrorCode = "RENDER_FAILED"
	ErrCodeBoardQueryFailed     ErrorCode = "BOARD_QUERY_FAILED"
	ErrCodeWebhookDelivery      ErrorCode = "WEBHOOK_DELIVERY_FAILED"
	ErrCodeEncryptionFailed     ErrorCode = "ENCRYPTION_FAILED"
	ErrCodeDecryptionFailed     ErrorCode = "DECRYPTION_FAILED"
	ErrCodeFileRejected         ErrorCode = "FILE_REJECTED"
	ErrCodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeStorageFailed        ErrorCode = "STORAGE_FAILED"
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"
)

// StandardError is the error shape shared by every service boundary.
type StandardError struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Retryable bool           `json:"retryable"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func (e *StandardError) WithMetadata(key string, value any) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func NewValidationError(details string) *StandardError {
	e := newError(ErrCodeValidationFailed, "Validation failed", nil, false)
	e.Details = details
	return e
}

func NewRenderError(err error) *StandardError {
	return newError(ErrCodeRenderFailed, "failed to render application document", err, false)
}

func NewBoardQueryError(err error) *StandardError {
	return newError(ErrCodeBoardQueryFailed, "board query failed", err, true)
}

// NewWebhookError carries the status and body returned by the receiver.
func NewWebhookError(status int, body string) *StandardError {
	e := newError(ErrCodeWebhookDelivery, fmt.Sprintf("Webhook failed: %d - %s", status, body), nil, status >= 500)
	return e.WithMetadata("status", status)
}

func NewEncryptionError(err error) *StandardError {
	return newError(ErrCodeEncryptionFailed, "failed to encrypt file", err, false)
}

func NewDecryptionError(err error) *StandardError {
	return newError(ErrCodeDecryptionFailed, "failed to decrypt file", err, false)
}

func NewFileRejectedError(reason string) *StandardError {
	return newError(ErrCodeFileRejected, reason, nil, false)
}

func NewNotFoundError(id int64) *StandardError {
	return newError(ErrCodeApplicationNotFound, "Application not found", nil, false).WithMetadata("id", id)
}

func NewStorageError(err error) *StandardError {
	return newError(ErrCodeStorageFailed, "storage operation failed", err, true)
}

func NewConfigError(details string) *StandardError {
	e := newError(ErrCodeConfigurationInvalid, "invalid configuration", nil, false)
	e.Details = details
	return e
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// HTTPStatus maps an error to the status the HTTP layer should answer with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeValidationFailed, ErrCodeFileRejected:
		return http.StatusBadRequest
	case ErrCodeApplicationNotFound:
		return http.StatusNotFound
	case ErrCodeBoardQueryFailed, ErrCodeWebhookDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
