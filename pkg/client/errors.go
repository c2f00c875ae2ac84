package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork means the remote service could not be reached.
	ErrNetwork = errors.New("network failure")
	// ErrNonSuccessStatus means the remote service answered with a non-2xx status.
	ErrNonSuccessStatus = errors.New("non-success status")
	// ErrDecode means the response body could not be understood.
	ErrDecode = errors.New("malformed response")
	// ErrCircuitOpen means recent failures tripped the circuit breaker and the
	// request was not sent.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// StatusError carries the status of a non-2xx response. It matches
// ErrNonSuccessStatus with errors.Is.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNonSuccessStatus, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNonSuccessStatus
}
