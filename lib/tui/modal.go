// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Frame is the content of a centered modal box: a bold title, body
// lines, and a faint footer, drawn inside a rounded border on the
// overlay background.
type Frame struct {
	Title  string
	Lines  []string // Already styled; padded to the inner width.
	Footer string

	// MinInnerWidth is the narrowest the content area may be.
	MinInnerWidth int
}

const (
	// frameChromeWidth is the border (1 each side) plus one column of
	// padding each side.
	frameChromeWidth = 4
)

// Render produces the modal lines for splicing onto the view and the
// anchor (top-left corner in screen coordinates) that centers them.
func (frame Frame) Render(theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	innerWidth := frame.MinInnerWidth
	for _, candidate := range append([]string{frame.Title, frame.Footer}, frame.Lines...) {
		innerWidth = max(innerWidth, ansi.StringWidth(candidate))
	}
	// Clamp so the box never extends past the terminal edges.
	if screenWidth > 0 && innerWidth+frameChromeWidth > screenWidth {
		innerWidth = max(screenWidth-frameChromeWidth, 1)
	}

	backgroundStyle := lipgloss.NewStyle().
		Background(theme.OverlayBackground)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.HeaderForeground).
		Background(theme.OverlayBackground)
	footerStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.OverlayBackground)

	var inner []string
	inner = append(inner, PadLine(titleStyle.Render(frame.Title), innerWidth, backgroundStyle))
	inner = append(inner, PadLine("", innerWidth, backgroundStyle))
	for _, line := range frame.Lines {
		inner = append(inner, PadLine(line, innerWidth, backgroundStyle))
	}
	if frame.Footer != "" {
		inner = append(inner, PadLine("", innerWidth, backgroundStyle))
		inner = append(inner, PadLine(footerStyle.Render(frame.Footer), innerWidth, backgroundStyle))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.OverlayBackground).
		Background(theme.OverlayBackground).
		Padding(0, 1)

	resultLines := strings.Split(borderStyle.Render(strings.Join(inner, "\n")), "\n")
	renderedWidth := 0
	if len(resultLines) > 0 {
		renderedWidth = ansi.StringWidth(resultLines[0])
	}
	anchorX, anchorY := CenterAnchor(screenWidth, screenHeight, renderedWidth, len(resultLines))
	return resultLines, anchorX, anchorY
}
