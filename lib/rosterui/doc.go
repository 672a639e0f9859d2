// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rosterui is the interactive terminal view of an activity
// registry: a bubbletea model that lists activities with their
// availability and participants, and lets a logged-in teacher enroll
// and remove students.
//
// The rendered roster is always the last applied response from the
// registry. Every successful mutation and every login or logout ends
// in a fresh read; nothing is patched locally. Overlapping reads are
// allowed, and a response older than the newest one already applied
// is discarded.
//
// Mutations are gated on the presence of a token in the
// [tokenstore.Store]. Without one the request is refused locally and
// nothing is sent. Outcomes are reported in a single notification
// slot that clears itself after a few seconds; a newer notification
// replaces the current one.
//
// Warn and error diagnostics reach the status line through
// [LogHandler], separately from notifications.
package rosterui
