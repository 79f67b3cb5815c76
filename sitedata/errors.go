package sitedata

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Backend when a document key has never been written.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPayload indicates input that is not acceptable for the operation,
	// such as a non-object content document or a slide without an id.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrConflict indicates a create would break slide id uniqueness.
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable wraps database and file I/O failures.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorruptState indicates stored data could not be decoded.
	ErrCorruptState = errors.New("corrupt state")
)

// StorageError records the backend operation and key that failed.
type StorageError struct {
	Op   string
	Key  string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Key, e.Kind, e.Err)
}

// Unwrap exposes both the error kind and the underlying cause.
func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unavailable(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Kind: ErrStorageUnavailable, Err: err}
}

func corrupt(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Kind: ErrCorruptState, Err: err}
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidPayload}, args...)...)
}
