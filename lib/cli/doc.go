// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the small pieces shared by the roster commands'
// main functions: categorized errors with exit codes and hints, and
// the pre-TUI command logger.
package cli
