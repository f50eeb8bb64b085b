package content

import (
	"errors"
	"fmt"
)

// Error classes returned by the content services.
var (
	// ErrValidation marks input rejected before any storage mutation.
	ErrValidation = errors.New("validation failed")
	// ErrStorage marks a failed database operation; no partial writes are kept.
	ErrStorage = errors.New("storage failure")
)

// ValidationError describes rejected input in a user-facing message.
type ValidationError struct {
	Field   string // Offending input field, if known.
	Message string // User-visible message.
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a database failure.
type StorageError struct {
	Op  string // Operation that failed.
	Err error  // Underlying cause.
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("content: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// wrapStorage passes validation errors through and wraps everything else.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	return &StorageError{Op: op, Err: err}
}
