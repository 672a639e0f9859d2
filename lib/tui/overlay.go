// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay content. The overlay lines are placed starting at (anchorX,
// anchorY) in screen coordinates. Uses ANSI-aware truncation so escape
// sequences in the original view are preserved on both sides of the
// overlay. Lines outside the view are dropped; a view shorter than
// anchorX is padded with spaces up to the anchor.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		viewLineIndex := anchorY + index
		if viewLineIndex < 0 || viewLineIndex >= len(viewLines) {
			continue
		}

		viewLine := viewLines[viewLineIndex]
		viewLineWidth := ansi.StringWidth(viewLine)

		var result strings.Builder
		if anchorX > 0 {
			result.WriteString(ansi.Truncate(viewLine, anchorX, ""))
			if viewLineWidth < anchorX {
				result.WriteString(strings.Repeat(" ", anchorX-viewLineWidth))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		suffixStart := anchorX + overlayWidth
		if suffixStart < viewLineWidth {
			result.WriteString(ansi.TruncateLeft(viewLine, suffixStart, ""))
		}

		viewLines[viewLineIndex] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// CenterAnchor returns the top-left position that centers a block of
// the given size on the screen, clamped to the screen origin.
func CenterAnchor(screenWidth, screenHeight, blockWidth, blockHeight int) (int, int) {
	anchorX := (screenWidth - blockWidth) / 2
	anchorY := (screenHeight - blockHeight) / 2
	return max(anchorX, 0), max(anchorY, 0)
}

// PadLine pads styled content with background-colored spaces to
// exactly width columns. Content wider than width is truncated.
func PadLine(styledContent string, width int, backgroundStyle lipgloss.Style) string {
	contentWidth := ansi.StringWidth(styledContent)
	if contentWidth > width {
		return ansi.Truncate(styledContent, width, "")
	}
	if contentWidth == width {
		return styledContent
	}
	return styledContent + backgroundStyle.Render(strings.Repeat(" ", width-contentWidth))
}
