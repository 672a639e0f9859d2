// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides terminal user interface building blocks for the
// roster viewer: the color theme, centered modal frames, dropdown
// overlays, scrollbars, fzf-backed fuzzy matching, ANSI-aware
// overlay splicing, and single-line markdown rendering. Built for bubbletea (Elm architecture) models;
// nothing here holds program state beyond what the caller passes in.
package tui
