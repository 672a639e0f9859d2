// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response whose body could not be
// decoded. It is always wrapped in a *TransportError.
var ErrMalformedResponse = errors.New("malformed response body")

// RejectedError is returned when the server answers with a non-success
// status and a JSON body.
type RejectedError struct {
	// Method and Path identify the request (path without query).
	Method string
	Path   string

	// StatusCode is the HTTP status. A 2xx login response that carries
	// no token is also reported as a rejection with its actual status.
	StatusCode int

	// Detail is the server's "detail" field when it is a string;
	// empty otherwise (FastAPI validation errors carry a list here).
	Detail string
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("registry: %s %s rejected with status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("registry: %s %s rejected with status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// TransportError is returned when no usable response was received:
// the connection failed, the body could not be read, or it could not
// be decoded.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry: %s %s failed: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying cause so errors.Is can find
// ErrMalformedResponse or net errors through the wrapper.
func (e *TransportError) Unwrap() error { return e.Err }

// AsRejected returns the *RejectedError in err's chain, if any.
func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}
