package piped

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the instance does not know the requested video.
var ErrNotFound = errors.New("piped: not found")

// TransportError means the instance could not be reached at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("piped %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError means the instance answered, but not with something usable.
type ServerError struct {
	Op     string
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("piped %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("piped %s: unexpected status %d", e.Op, e.Status)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
