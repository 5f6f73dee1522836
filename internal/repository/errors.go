package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when no todo matches (userId, todoId).
	ErrItemNotFound = errors.New("todo item not found")

	// ErrStoreRead matches any StoreError from a failed read.
	ErrStoreRead = errors.New("store read failed")

	// ErrStoreWrite matches any StoreError from a failed write.
	ErrStoreWrite = errors.New("store write failed")
)

// StoreError wraps a failed call to the underlying store.
type StoreError struct {
	Op    string
	Write bool
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is matches ErrStoreRead or ErrStoreWrite depending on the kind of operation.
func (e *StoreError) Is(target error) bool {
	if e.Write {
		return target == ErrStoreWrite
	}
	return target == ErrStoreRead
}

func readErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func writeErr(op string, err error) error {
	return &StoreError{Op: op, Write: true, Err: err}
}
