package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a template, schedule or meta record is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflictUnresolved is returned when two copies of a slice diverged at the same version.
	ErrConflictUnresolved = errors.New("conflict unresolved")
)

// ValidationError reports a template, slice or meta object that failed validation.
type ValidationError struct {
	Object string
	Issues []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("invalid %s", e.Object)
	}
	return fmt.Sprintf("invalid %s: %s", e.Object, strings.Join(e.Issues, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
