// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/roster/lib/tui"
)

// activityFilter narrows which activity cards are shown by fuzzy
// matching their names. It never changes the fetched roster or the
// enrollment form's options.
type activityFilter struct {
	input  textinput.Model
	active bool // The filter input has keyboard focus.
}

func newActivityFilter() activityFilter {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "filter activities"
	return activityFilter{input: input}
}

func (filter *activityFilter) activate() {
	filter.active = true
	_ = filter.input.Focus()
}

// confirm keeps the pattern and returns focus to the roster.
func (filter *activityFilter) confirm() {
	filter.active = false
	filter.input.Blur()
}

func (filter *activityFilter) clear() {
	filter.active = false
	filter.input.Reset()
	filter.input.Blur()
}

func (filter activityFilter) pattern() string {
	return strings.TrimSpace(filter.input.Value())
}

// match reports whether name passes the filter and which rune
// positions matched. An empty pattern passes everything.
func (filter activityFilter) match(name string, slab *util.Slab) (bool, []int) {
	pattern := filter.pattern()
	if pattern == "" {
		return true, nil
	}
	result := tui.FuzzyMatch(name, []rune(pattern), slab)
	return result.Matched, result.Positions
}

// handleFilterKeys routes input while the filter has focus. Every
// edit rebuilds the roster view.
func (model *Model) handleFilterKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.filter.clear()
		model.focus = focusRoster
	case key.Matches(message, model.keys.OpenSelect):
		model.filter.confirm()
		model.focus = focusRoster
		return
	default:
		model.filter.input, _ = model.filter.input.Update(message)
	}
	model.rebuildRosterView()
}
