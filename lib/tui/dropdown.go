// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// DropdownOption is a single selectable item in a dropdown overlay.
type DropdownOption struct {
	Label string // Display text shown in the dropdown.
	Value string // Value reported on selection.
}

// DropdownOverlay renders a floating menu anchored at a screen
// position. The owning model routes up/down/enter/escape to it while
// it is open.
type DropdownOverlay struct {
	Options []DropdownOption
	Cursor  int
	AnchorX int // Screen X coordinate of the dropdown's top-left corner.
	AnchorY int // Screen Y coordinate of the dropdown's top-left corner.
}

// NewDropdown creates a dropdown over options with the cursor on the
// option whose Value equals current, or on the first option.
func NewDropdown(options []DropdownOption, current string, anchorX, anchorY int) *DropdownOverlay {
	dropdown := &DropdownOverlay{Options: options, AnchorX: anchorX, AnchorY: anchorY}
	for index, option := range options {
		if option.Value == current {
			dropdown.Cursor = index
			break
		}
	}
	return dropdown
}

// MoveUp moves the cursor up by one, wrapping to the bottom.
func (dropdown *DropdownOverlay) MoveUp() {
	if len(dropdown.Options) == 0 {
		return
	}
	dropdown.Cursor--
	if dropdown.Cursor < 0 {
		dropdown.Cursor = len(dropdown.Options) - 1
	}
}

// MoveDown moves the cursor down by one, wrapping to the top.
func (dropdown *DropdownOverlay) MoveDown() {
	if len(dropdown.Options) == 0 {
		return
	}
	dropdown.Cursor++
	if dropdown.Cursor >= len(dropdown.Options) {
		dropdown.Cursor = 0
	}
}

// Selected returns the currently highlighted option, or the zero
// option when there are none.
func (dropdown *DropdownOverlay) Selected() DropdownOption {
	if dropdown.Cursor < 0 || dropdown.Cursor >= len(dropdown.Options) {
		return DropdownOption{}
	}
	return dropdown.Options[dropdown.Cursor]
}

// Width returns the total visible width of the rendered dropdown in
// columns.
func (dropdown *DropdownOverlay) Width() int {
	maxLabelWidth := 0
	for _, option := range dropdown.Options {
		maxLabelWidth = max(maxLabelWidth, ansi.StringWidth(option.Label))
	}
	// Layout: " > LABEL " -- marker and space, label, one column of
	// padding on each side.
	return 2 + maxLabelWidth + 2
}

// Render produces the dropdown lines for overlay splicing. Every line
// has the same visible width; the highlighted option uses the
// selection colors.
func (dropdown *DropdownOverlay) Render(theme Theme) []string {
	totalWidth := dropdown.Width()

	backgroundStyle := lipgloss.NewStyle().
		Foreground(theme.OverlayForeground).
		Background(theme.OverlayBackground)
	selectedStyle := lipgloss.NewStyle().
		Background(theme.SelectedBackground).
		Foreground(theme.SelectedForeground)

	lines := make([]string, 0, len(dropdown.Options))
	for index, option := range dropdown.Options {
		style, marker := backgroundStyle, " "
		if index == dropdown.Cursor {
			style, marker = selectedStyle, ">"
		}
		content := " " + marker + " " + option.Label
		if padding := totalWidth - ansi.StringWidth(content); padding > 0 {
			content += strings.Repeat(" ", padding)
		}
		lines = append(lines, style.Render(content))
	}
	return lines
}
