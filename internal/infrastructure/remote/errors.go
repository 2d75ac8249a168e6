package remote

import (
	"errors"
	"fmt"

	"github.com/erp/orderdesk/internal/domain/shared"
)

// Error codes produced by the client itself rather than the server
const (
	ErrCodeMalformedResponse = "ERR_MALFORMED_RESPONSE"
	ErrCodeUnknown           = "ERR_UNKNOWN"
)

// FallbackMessage is shown when a failure carries no structured server message
const FallbackMessage = "Network error, please try again"

// RemoteError is a rejection reported by the server in its error envelope,
// or a response the client could not accept
type RemoteError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Details   []FieldDetail
}

// FieldDetail is one field-level validation failure reported by the server
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %d %s: %s", e.Status, e.Code, e.Message)
}

// Is matches remote errors by code, and maps a few server codes onto the
// shared sentinels so callers can use errors.Is(err, shared.ErrNotFound)
func (e *RemoteError) Is(target error) bool {
	switch t := target.(type) {
	case *RemoteError:
		return e.Code == t.Code
	case *shared.DomainError:
		return e.Code == t.Code || sentinelCodes[e.Code] == t.Code
	}
	return false
}

var sentinelCodes = map[string]string{
	"ERR_NOT_FOUND":            shared.ErrNotFound.Code,
	"ERR_ALREADY_EXISTS":       shared.ErrAlreadyExists.Code,
	"ERR_CONCURRENCY_CONFLICT": shared.ErrConcurrencyConflict.Code,
	"ERR_INVALID_STATE":        shared.ErrInvalidState.Code,
	"ERR_UNAUTHORIZED":         shared.ErrUnauthorized.Code,
	"ERR_INSUFFICIENT_STOCK":   shared.ErrInsufficientStock.Code,
	"ERR_DUPLICATE_REQUEST":    shared.ErrDuplicateRequest.Code,
}

// TransportError is a failure to reach the server or read its reply
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func malformed(status int, format string, args ...any) *RemoteError {
	return &RemoteError{
		Status:  status,
		Code:    ErrCodeMalformedResponse,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorMessage returns the text to show the user for err.
// Server messages are returned verbatim; local validation messages are
// returned as-is; anything else gets the generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Code == ErrCodeMalformedResponse || remoteErr.Message == "" {
			return FallbackMessage
		}
		return remoteErr.Message
	}

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	var fieldErrs shared.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Error()
	}

	return FallbackMessage
}
