// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the roster
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// When GitCommit is not injected, [Info] falls back to the vcs.*
// settings the Go toolchain stamps into the binary, so a plain
// "go build" from a checkout still reports its commit.
//
//	go build -ldflags "-X github.com/bureau-foundation/roster/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version
