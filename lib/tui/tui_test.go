// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"
	"github.com/muesli/termenv"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		pattern       string
		wantMatched   bool
		wantPositions []int
	}{
		{"empty pattern", "Chess Club", "", true, nil},
		{"prefix", "Chess Club", "chess", true, []int{0, 1, 2, 3, 4}},
		{"exact upper-case", "Chess Club", "Chess", true, []int{0, 1, 2, 3, 4}},
		{"second word", "Chess Club", "Club", true, []int{6, 7, 8, 9}},
		{"two letters", "Chess Club", "ch", true, []int{0, 1}},
		{"case folded", "Chess Club", "CC", true, []int{0, 6}},
		{"scattered", "Programming Class", "pgc", true, nil},
		{"no match", "Gym Class", "chess", false, nil},
		{"out of order", "Art Club", "bt", false, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := FuzzyMatch(test.text, []rune(test.pattern), nil)
			if result.Matched != test.wantMatched {
				t.Fatalf("Matched = %v, want %v", result.Matched, test.wantMatched)
			}
			if test.wantPositions != nil && !slices.Equal(result.Positions, test.wantPositions) {
				t.Errorf("Positions = %v, want %v", result.Positions, test.wantPositions)
			}
			if result.Matched && test.pattern != "" {
				if len(result.Positions) != len([]rune(test.pattern)) {
					t.Errorf("got %d positions for a %d-rune pattern", len(result.Positions), len(test.pattern))
				}
				if !slices.IsSorted(result.Positions) {
					t.Errorf("Positions %v not ascending", result.Positions)
				}
			}
			if !result.Matched && (result.Score != 0 || result.Positions != nil) {
				t.Errorf("unmatched result carries data: %+v", result)
			}
		})
	}
}

func TestFuzzyMatchRanksTighterMatchHigher(t *testing.T) {
	slab := util.MakeSlab(100*1024, 2048)
	tight := FuzzyMatch("Chess Club", []rune("chess"), slab)
	loose := FuzzyMatch("Choir Ensemble Singers", []rune("chess"), slab)
	if !tight.Matched || !loose.Matched {
		t.Fatalf("expected both to match: %+v %+v", tight, loose)
	}
	if tight.Score <= loose.Score {
		t.Errorf("tight score %d <= loose score %d", tight.Score, loose.Score)
	}
}

func TestHighlightPositionsWithStyles(t *testing.T) {
	base := lipgloss.NewStyle().Bold(true)
	highlight := base.Underline(true)
	result := FuzzyMatch("Chess Club", []rune("cc"), nil)
	rendered := HighlightPositions("Chess Club", result.Positions,
		func(text string) string { return base.Render(text) },
		func(text string) string { return highlight.Render(text) })
	if got := ansi.Strip(rendered); got != "Chess Club" {
		t.Errorf("rendered text = %q, want Chess Club", got)
	}
}

func TestHighlightPositions(t *testing.T) {
	bracket := func(s string) string { return "[" + s + "]" }
	plain := func(s string) string { return s }

	if got := HighlightPositions("Chess Club", []int{0, 1, 6}, plain, bracket); got != "[Ch]ess [C]lub" {
		t.Errorf("HighlightPositions = %q", got)
	}
	if got := HighlightPositions("Gym", nil, plain, bracket); got != "Gym" {
		t.Errorf("no positions = %q", got)
	}
}

func TestSpliceOverlay(t *testing.T) {
	view := "aaaaaaaa\nbbbbbbbb\ncccccccc"
	result := ansi.Strip(SpliceOverlay(view, []string{"XX", "YY"}, 3, 1))
	want := "aaaaaaaa\nbbbXXbbb\ncccYYccc"
	if result != want {
		t.Errorf("SpliceOverlay = %q, want %q", result, want)
	}

	// Overlay rows below the view are dropped; short lines are padded.
	result = ansi.Strip(SpliceOverlay("ab\ncd", []string{"ZZ", "QQ"}, 4, 1))
	if result != "ab\ncd  ZZ" {
		t.Errorf("clipped splice = %q", result)
	}

	if SpliceOverlay(view, nil, 0, 0) != view {
		t.Error("empty overlay modified the view")
	}
}

func TestCenterAnchor(t *testing.T) {
	x, y := CenterAnchor(80, 24, 20, 10)
	if x != 30 || y != 7 {
		t.Errorf("CenterAnchor = (%d, %d), want (30, 7)", x, y)
	}
	x, y = CenterAnchor(10, 5, 20, 10)
	if x != 0 || y != 0 {
		t.Errorf("oversized block anchor = (%d, %d), want (0, 0)", x, y)
	}
}

func TestPadLine(t *testing.T) {
	style := lipgloss.NewStyle()
	if got := ansi.Strip(PadLine("abc", 6, style)); got != "abc   " {
		t.Errorf("PadLine pad = %q", got)
	}
	if got := ansi.Strip(PadLine("abcdefgh", 4, style)); got != "abcd" {
		t.Errorf("PadLine truncate = %q", got)
	}
}

func TestDropdown(t *testing.T) {
	options := []DropdownOption{
		{Label: "-- Select an activity --", Value: ""},
		{Label: "Chess Club", Value: "Chess Club"},
		{Label: "Gym Class", Value: "Gym Class"},
	}

	dropdown := NewDropdown(options, "Gym Class", 0, 0)
	if dropdown.Selected().Value != "Gym Class" {
		t.Fatalf("initial selection = %q", dropdown.Selected().Value)
	}
	dropdown.MoveDown()
	if dropdown.Cursor != 0 {
		t.Errorf("MoveDown from last = %d, want wrap to 0", dropdown.Cursor)
	}
	dropdown.MoveUp()
	if dropdown.Cursor != 2 {
		t.Errorf("MoveUp from first = %d, want wrap to 2", dropdown.Cursor)
	}

	lines := dropdown.Render(DefaultTheme)
	if len(lines) != len(options) {
		t.Fatalf("rendered %d lines, want %d", len(lines), len(options))
	}
	for index, line := range lines {
		if width := ansi.StringWidth(line); width != dropdown.Width() {
			t.Errorf("line %d width = %d, want %d", index, width, dropdown.Width())
		}
	}
	if !strings.HasPrefix(ansi.Strip(lines[2]), " > Gym Class") {
		t.Errorf("selected line = %q", ansi.Strip(lines[2]))
	}

	empty := NewDropdown(nil, "", 0, 0)
	empty.MoveDown()
	if empty.Selected() != (DropdownOption{}) {
		t.Error("empty dropdown selected a non-zero option")
	}
}

func TestFrameRender(t *testing.T) {
	frame := Frame{
		Title:         "Teacher Login",
		Lines:         []string{"Username: teacher", "Password: ••••"},
		Footer:        "Enter submit  Esc cancel",
		MinInnerWidth: 30,
	}
	lines, anchorX, anchorY := frame.Render(DefaultTheme, 80, 24)

	width := ansi.StringWidth(lines[0])
	if width != 30+frameChromeWidth {
		t.Errorf("frame width = %d, want %d", width, 30+frameChromeWidth)
	}
	for index, line := range lines {
		if ansi.StringWidth(line) != width {
			t.Errorf("line %d width = %d, want %d", index, ansi.StringWidth(line), width)
		}
	}
	joined := ansi.Strip(strings.Join(lines, "\n"))
	for _, want := range []string{"Teacher Login", "Username: teacher", "Enter submit"} {
		if !strings.Contains(joined, want) {
			t.Errorf("frame missing %q:\n%s", want, joined)
		}
	}
	if anchorX != (80-width)/2 || anchorY != (24-len(lines))/2 {
		t.Errorf("anchor = (%d, %d), not centered", anchorX, anchorY)
	}
}

func TestScrollbarColumn(t *testing.T) {
	cells := ScrollbarColumn(DefaultTheme, 4, 3, 10, 0)
	for index, cell := range cells {
		if cell != " " {
			t.Errorf("cell %d = %q, want blank when content fits", index, cell)
		}
	}

	cells = ScrollbarColumn(DefaultTheme, 10, 100, 10, 90)
	if got := ansi.Strip(cells[9]); got != "┃" {
		t.Errorf("bottom cell at end of content = %q, want thumb", got)
	}
	if got := ansi.Strip(cells[0]); got != "│" {
		t.Errorf("top cell at end of content = %q, want track", got)
	}

	if ScrollbarColumn(DefaultTheme, 0, 10, 5, 0) != nil {
		t.Error("zero height returned cells")
	}
}

func TestThemeColors(t *testing.T) {
	theme := DefaultTheme
	if theme.AvailabilityColor(10) != theme.AvailableForeground {
		t.Error("10 seats not drawn as available")
	}
	if theme.AvailabilityColor(2) != theme.ScarceForeground {
		t.Error("2 seats not drawn as scarce")
	}
	if theme.AvailabilityColor(0) != theme.FullForeground || theme.AvailabilityColor(-1) != theme.FullForeground {
		t.Error("no seats not drawn as full")
	}
	if theme.SeverityColor(SeverityError) != theme.ErrorForeground {
		t.Error("error severity color mismatch")
	}
	if SeveritySuccess.String() != "success" {
		t.Errorf("SeveritySuccess.String() = %q", SeveritySuccess.String())
	}
}
