// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
)

// ErrorCategory classifies command errors so main can choose an exit
// code without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates bad input: unknown flags, an
	// unusable config value, a malformed server URL. Exit code 2.
	CategoryValidation ErrorCategory = "validation"

	// CategoryInternal indicates an unexpected failure: unreadable
	// credentials, a terminal that cannot be driven, I/O errors.
	// Exit code 1.
	CategoryInternal ErrorCategory = "internal"
)

// Error is a categorized command error. It wraps an inner error,
// preserving the chain for errors.Is and errors.As, and may carry a
// hint telling the user what to do next.
type Error struct {
	Category ErrorCategory
	Err      error

	// Hint is printed on its own line after the error, if non-empty.
	Hint string
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code for the category.
func (e *Error) ExitCode() int {
	if e.Category == CategoryValidation {
		return 2
	}
	return 1
}

// WithHint sets the hint and returns e.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// Validation creates a validation error: the user provided bad input.
func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or I/O error.
func Internal(format string, args ...any) *Error {
	return &Error{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Report writes err to w and returns the exit code main should use.
// A nil err returns 0 and writes nothing. Uncategorized errors are
// treated as internal.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "error: %v\n", err)

	var categorized *Error
	if errors.As(err, &categorized) {
		if categorized.Hint != "" {
			fmt.Fprintf(w, "hint: %s\n", categorized.Hint)
		}
		return categorized.ExitCode()
	}
	return 1
}
