package storage

import (
	"errors"
	"fmt"

	"github.com/sankalp69/Visa-prediction/internal/config"
)

var (
	// ErrConfiguration is returned when a backend is constructed without a
	// required setting. It is raised before any network call.
	ErrConfiguration = config.ErrInvalid

	// ErrNotFound matches errors for objects absent from the bucket. The
	// backend's native error stays in the chain.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey is returned for keys that are empty, absolute or step
	// out of the bucket with a ".." segment.
	ErrInvalidKey = errors.New("invalid object key")
)

// TransferError reports a failed round trip to the object store.
type TransferError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// NotFound reports whether the failure was a missing object.
func (e *TransferError) NotFound() bool { return errors.Is(e.Err, ErrNotFound) }

// LocalIOError reports a failure touching the local filesystem.
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

type notFoundError struct {
	err error
}

func (e *notFoundError) Error() string        { return e.err.Error() }
func (e *notFoundError) Unwrap() error        { return e.err }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

// markNotFound tags err so errors.Is(err, ErrNotFound) holds.
func markNotFound(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &notFoundError{err: err}
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
