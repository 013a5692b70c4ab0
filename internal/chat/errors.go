package chat

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the REST handlers and the websocket path. REST
// callers map these to status codes; the streaming path logs and drops.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
)

// StoreError wraps a failed durable-state operation. The core never retries;
// retry policy belongs to the store adapter.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
