package domain

import (
	"errors"
	"fmt"
)

// Credential decoding failures. Both are local and non-fatal: the session
// downgrades to anonymous and the stored credential is discarded.
var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrCredentialExpired = errors.New("credential expired")
)

// ValidationError blocks a flow transition without changing state. The
// message is meant to be shown inline on the current form.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// BookingRejectedError is a remote rejection of the finalize step (tour
// full, invalid dates, and so on). The flow stays in its current state so
// the user may retry or abandon.
type BookingRejectedError struct {
	Message string
}

func (e *BookingRejectedError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Message)
}

// NetworkError is any transport failure during a backend call. It is
// treated as a failed transition; retries are always user-initiated.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
