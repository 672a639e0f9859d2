// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fzf's character classes and bonus tables are zero until Init runs;
// without them no upper-case rune ever matches.
func init() {
	algo.Init("default")
}

// FuzzyResult is the outcome of matching one text against a pattern.
type FuzzyResult struct {
	// Matched is false when the pattern's characters do not all occur
	// in order in the text.
	Matched bool

	// Score ranks matches; higher is better. Zero when not matched.
	Score int

	// Positions are the rune indices in text of the matched
	// characters, ascending. Nil when not matched.
	Positions []int
}

// FuzzyMatch scores text against pattern using fzf's V2 algorithm,
// case-insensitively. An empty pattern matches everything with a zero
// score. slab may be nil; pass a reused slab when matching many texts
// in a loop to avoid per-call allocation.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{Matched: true}
	}

	// fzf expects a pre-lowercased pattern when matching without case
	// sensitivity; the text side is folded internally.
	lowered := []rune(strings.ToLower(string(pattern)))
	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Start < 0 {
		return FuzzyResult{}
	}

	var matched []int
	if positions != nil {
		matched = append(matched, *positions...)
		// fzf collects positions while backtracking from the end.
		slices.Sort(matched)
	}
	return FuzzyResult{Matched: true, Score: int(result.Score), Positions: matched}
}

// HighlightPositions renders text with the runes at positions drawn in
// highlight and everything else in base.
func HighlightPositions(text string, positions []int, base, highlight func(string) string) string {
	if len(positions) == 0 {
		return base(text)
	}
	wanted := make(map[int]bool, len(positions))
	for _, position := range positions {
		wanted[position] = true
	}

	var result strings.Builder
	var run []rune
	runHighlighted := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHighlighted {
			result.WriteString(highlight(string(run)))
		} else {
			result.WriteString(base(string(run)))
		}
		run = run[:0]
	}
	for index, character := range []rune(text) {
		if wanted[index] != runHighlighted {
			flush()
			runHighlighted = wanted[index]
		}
		run = append(run, character)
	}
	flush()
	return result.String()
}
