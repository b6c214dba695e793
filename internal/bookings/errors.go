package bookings

import (
	"errors"
	"fmt"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("booking not found")
	ErrNonContiguous = errors.New("dates to delete must be contiguous")
	ErrEmptyResult   = errors.New("no booking range would remain after the split")
	ErrConflict      = errors.New("booking was changed concurrently")

	// ErrDateOutOfRange is a validation failure: the date is not inside the booking.
	ErrDateOutOfRange = fmt.Errorf("%w: date outside booking range", ErrValidation)
)

// StorageError wraps a failure of the underlying persistence engine.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage returns nil for a nil err and leaves domain errors untouched.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
