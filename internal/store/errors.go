package store

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyRequired is returned when a key, prefix or substring argument is empty.
	// It is raised before the database is touched.
	ErrKeyRequired = errors.New("key is required")

	// ErrValueRequired is returned when a write is given an empty value.
	ErrValueRequired = errors.New("value is required")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")

	// ErrAlreadyInitialized is returned by Init when the shared Manager is
	// open on a different connection.
	ErrAlreadyInitialized = errors.New("store already initialized with a different connection")
)

// StorageError wraps an error reported by the database driver.
//
// The driver error is kept as-is and stays reachable through errors.Is and
// errors.As. The store never retries or masks these.
type StorageError struct {
	// Op names the store operation that issued the statement ("insert", "clear", ...).
	Op string

	// Err is the driver error.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageFailure reports whether err came from the database rather than
// from argument validation or lifecycle checks.
// Uses errors.As to handle wrapped errors.
func IsStorageFailure(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Stable codes for reporting errors outside Go, such as CLI JSON output and
// scenario traces.
const (
	CodeKeyRequired        = "key_required"
	CodeValueRequired      = "value_required"
	CodeClosed             = "closed"
	CodeAlreadyInitialized = "already_initialized"
	CodeStorageFailure     = "storage_failure"
	CodeInternal           = "internal"
)

// ErrorCode maps err to one of the Code constants. Returns "" for nil.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrKeyRequired):
		return CodeKeyRequired
	case errors.Is(err, ErrValueRequired):
		return CodeValueRequired
	case errors.Is(err, ErrClosed):
		return CodeClosed
	case errors.Is(err, ErrAlreadyInitialized):
		return CodeAlreadyInitialized
	case IsStorageFailure(err):
		return CodeStorageFailure
	default:
		return CodeInternal
	}
}
