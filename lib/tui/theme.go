// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Severity classifies a user-facing notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// String returns "info", "success", or "error".
func (severity Severity) String() string {
	switch severity {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Theme defines the color palette for the roster terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	AccentForeground lipgloss.Color // Activity names, focused scrollbar thumb.

	// Notification banner, one per severity.
	InfoForeground    lipgloss.Color
	SuccessForeground lipgloss.Color
	ErrorForeground   lipgloss.Color

	// Availability line: open seats, few seats left, none left.
	AvailableForeground lipgloss.Color
	ScarceForeground    lipgloss.Color
	FullForeground      lipgloss.Color

	// Removal marker shown beside participants to a logged-in teacher.
	RemoveForeground lipgloss.Color

	// Filter match highlighting.
	MatchHighlightBackground lipgloss.Color

	// Modal and dropdown surfaces.
	OverlayForeground lipgloss.Color
	OverlayBackground lipgloss.Color
}

// SeverityColor returns the banner color for a severity.
func (theme Theme) SeverityColor(severity Severity) lipgloss.Color {
	switch severity {
	case SeveritySuccess:
		return theme.SuccessForeground
	case SeverityError:
		return theme.ErrorForeground
	default:
		return theme.InfoForeground
	}
}

// scarceThreshold is the number of remaining seats at or below which
// availability is drawn in the scarce color.
const scarceThreshold = 3

// AvailabilityColor returns the color for an activity's remaining
// seats. Zero or negative counts use FullForeground.
func (theme Theme) AvailabilityColor(spotsLeft int) lipgloss.Color {
	switch {
	case spotsLeft <= 0:
		return theme.FullForeground
	case spotsLeft <= scarceThreshold:
		return theme.ScarceForeground
	default:
		return theme.AvailableForeground
	}
}

// DefaultTheme is the built-in dark-terminal color scheme, tuned for
// 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	AccentForeground: lipgloss.Color("75"), // blue

	InfoForeground:    lipgloss.Color("75"),  // blue
	SuccessForeground: lipgloss.Color("114"), // green
	ErrorForeground:   lipgloss.Color("196"), // red

	AvailableForeground: lipgloss.Color("114"), // green
	ScarceForeground:    lipgloss.Color("220"), // amber
	FullForeground:      lipgloss.Color("196"), // red

	RemoveForeground: lipgloss.Color("203"), // soft red

	MatchHighlightBackground: lipgloss.Color("58"), // dark amber

	OverlayForeground: lipgloss.Color("252"),
	OverlayBackground: lipgloss.Color("237"),
}
