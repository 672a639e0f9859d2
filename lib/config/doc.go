// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the roster
// viewer.
//
// Configuration comes from at most one file, named by the --config flag
// (via [LoadFile]) or the BUREAU_ROSTER_CONFIG environment variable
// (via [Load]). There is no automatic file search. Without a file the
// viewer runs on [Default].
//
// Precedence, lowest to highest: defaults, the file, BUREAU_ROSTER_*
// environment variables ([Config.ApplyEnv]), command-line flags (applied
// by the command). ${HOME} and ${VAR:-default} patterns are expanded in
// path fields.
//
// Key exports:
//
//   - [Config] -- Server, Credentials, Log, UI
//   - [FormVisibility] -- when the enrollment form is shown
//   - [Default], [Load], [LoadFile] -- construction
//   - [Config.Validate] -- rejects unusable values before startup
//
// This package depends on no other roster packages.
package config
