// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// ScrollbarColumn returns one styled cell per row for a vertical
// scrollbar of the given height. A window of visible rows starting at
// offset within total rows is drawn as the thumb; when everything fits
// the column is blank so short rosters carry no chrome.
func ScrollbarColumn(theme Theme, height, total, visible, offset int) []string {
	if height <= 0 {
		return nil
	}
	cells := make([]string, height)
	if total <= visible || total <= 0 {
		for index := range cells {
			cells[index] = " "
		}
		return cells
	}

	thumbSize := max(height*visible/total, 1)
	trackRange := height - thumbSize
	thumbOffset := 0
	if scrollable := total - visible; scrollable > 0 && trackRange > 0 {
		thumbOffset = min(offset*trackRange/scrollable, trackRange)
	}

	trackStyle := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumbStyle := lipgloss.NewStyle().Foreground(theme.AccentForeground)
	for index := range cells {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			cells[index] = thumbStyle.Render("┃")
		} else {
			cells[index] = trackStyle.Render("│")
		}
	}
	return cells
}
