// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry is the HTTP client for the activity registry and its
// teacher authentication endpoints.
//
// The registry is the system of record for activities and rosters. This
// package consumes five endpoints:
//
//   - GET /activities -- the full roster, decoded by [roster.Decode]
//   - POST /activities/{name}/signup?email= -- enroll (bearer token)
//   - DELETE /activities/{name}/unregister?email= -- remove (bearer token)
//   - POST /login -- exchange username/password for a token
//   - POST /logout -- invalidate a token (callers treat as best-effort)
//
// Every call resolves in exactly one of three ways: a success value, a
// [*RejectedError] (the server answered with a non-2xx status and a JSON
// body, whose "detail" string is surfaced verbatim), or a
// [*TransportError] (no response, unreadable body, or an undecodable
// body, the last also matching [ErrMalformedResponse]). Nothing is
// retried. Authorization decisions belong to the server; the client
// only attaches whatever token it is handed.
//
// The in-memory fake in [registrytest] implements the same contract for
// tests and local development.
package registry
