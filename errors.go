package fulfillmentlocation

import (
	"errors"
	"fmt"
	"net/http"
)

// Classifications for errors returned by the client. Use errors.Is to test
// for them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// Both authorization failures are also ErrInvalidInput.
	ErrMissingAuthorization   = fmt.Errorf("missing authorization: %w", ErrInvalidInput)
	ErrMalformedAuthorization = fmt.Errorf("malformed authorization: %w", ErrInvalidInput)
)

// Error is a classified failure with a stable status code. For errors mapped
// from a service response, AdditionalData holds the response body.
type Error struct {
	Status         int
	Message        string
	AdditionalData string

	kind error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newInvalidInputError(kind error, message string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: message,
		kind:    kind,
	}
}

// TransportError is returned when the service answers with a status the
// client does not map to a classified Error. Failures below HTTP (connection,
// timeout) are returned as the underlying *url.Error instead.
type TransportError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

// CacheReadError describes a response cache read that failed. It is reported
// to the client's logger and the lookup continues as a cache miss; it is never
// returned to callers.
type CacheReadError struct {
	Operation string
	Err       error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("failed to read %s from response cache: %v", e.Operation, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}
