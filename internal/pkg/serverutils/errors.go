package serverutils

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by services when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped when a write collides with an existing record.
var ErrConflict = errors.New("conflict")

func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func Conflict(what string) error {
	return fmt.Errorf("%s: %w", what, ErrConflict)
}

// ErrTooLarge is wrapped when an upload exceeds its size limit.
var ErrTooLarge = errors.New("too large")

func TooLarge(what string) error {
	return fmt.Errorf("%s %w", what, ErrTooLarge)
}
