// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster defines the activity roster data model shared by the
// registry client and the roster viewer.
//
// A [Roster] is the full set of activities as last fetched from the
// registry service, in the order the service returned them. The wire
// format is a JSON object keyed by activity name; [Decode] walks that
// object in document order so display order matches the server's
// response order. Derived values such as [Activity.SpotsLeft] are
// methods, never stored fields, so every render recomputes them from
// the fetched participant list.
//
// This package depends on no other Bureau packages.
package roster
