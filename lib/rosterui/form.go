// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"net/mail"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roster/lib/tui"
)

// formField is the focused field of the enrollment form.
type formField int

const (
	fieldActivity formField = iota
	fieldEmail
)

// enrollForm is the activity selector and email field. Its option list
// is rebuilt from the roster on every refresh.
type enrollForm struct {
	options  []tui.DropdownOption // Placeholder first, then server order.
	selected string               // Activity name; "" is the placeholder.
	email    textinput.Model
	field    formField
	focused  bool

	// hint explains why the last submit was not sent.
	hint string
}

func newEnrollForm() enrollForm {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "your-email@mergington.edu"
	email.CharLimit = 254

	form := enrollForm{email: email}
	form.setActivities(nil)
	return form
}

// setActivities rebuilds the option list. The current selection is
// kept only if that activity still exists.
func (form *enrollForm) setActivities(names []string) {
	options := make([]tui.DropdownOption, 0, len(names)+1)
	options = append(options, tui.DropdownOption{Label: selectActivityText, Value: ""})
	kept := false
	for _, name := range names {
		options = append(options, tui.DropdownOption{Label: name, Value: name})
		if name == form.selected {
			kept = true
		}
	}
	form.options = options
	if !kept {
		form.selected = ""
	}
}

// selectedLabel returns the label of the selected option.
func (form enrollForm) selectedLabel() string {
	for _, option := range form.options {
		if option.Value == form.selected {
			return option.Label
		}
	}
	return selectActivityText
}

// cycle moves the selection through the options, wrapping.
func (form *enrollForm) cycle(delta int) {
	if len(form.options) == 0 {
		return
	}
	current := 0
	for index, option := range form.options {
		if option.Value == form.selected {
			current = index
			break
		}
	}
	next := (current + delta + len(form.options)) % len(form.options)
	form.selected = form.options[next].Value
}

func (form *enrollForm) focus(field formField) {
	form.focused = true
	form.field = field
	if field == fieldEmail {
		// The returned command only drives cursor blinking.
		_ = form.email.Focus()
	} else {
		form.email.Blur()
	}
}

func (form *enrollForm) blur() {
	form.focused = false
	form.email.Blur()
}

// reset returns both fields to their initial state.
func (form *enrollForm) reset() {
	form.selected = ""
	form.email.Reset()
	form.hint = ""
}

// submission returns the activity and email to enroll, or a hint when
// the fields are incomplete. The email must be a bare address.
func (form enrollForm) submission() (string, string, string) {
	email := strings.TrimSpace(form.email.Value())
	if form.selected == "" {
		return "", "", "Select an activity."
	}
	if email == "" {
		return "", "", "Enter an email address."
	}
	if address, err := mail.ParseAddress(email); err != nil || address.Address != email {
		return "", "", "Enter a valid email address."
	}
	return form.selected, email, ""
}

// handleFormKeys routes input while the enrollment form has focus.
func (model *Model) handleFormKeys(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.form.blur()
		model.focus = focusRoster

	case key.Matches(message, model.keys.NextField), key.Matches(message, model.keys.PrevField):
		if model.form.field == fieldActivity {
			model.form.focus(fieldEmail)
		} else {
			model.form.focus(fieldActivity)
		}

	case key.Matches(message, model.keys.OpenSelect):
		if model.form.field == fieldActivity {
			model.dropdown = tui.NewDropdown(model.form.options, model.form.selected, 0, 0)
			model.focus = focusDropdown
			return nil
		}
		activity, email, hint := model.form.submission()
		if hint != "" {
			model.form.hint = hint
			return nil
		}
		model.form.hint = ""
		return model.enroll(activity, email)

	case model.form.field == fieldActivity && message.Type == tea.KeyLeft:
		model.form.cycle(-1)

	case model.form.field == fieldActivity && message.Type == tea.KeyRight:
		model.form.cycle(1)

	case model.form.field == fieldEmail:
		model.form.email, _ = model.form.email.Update(message)
		model.form.hint = ""
	}
	return nil
}

// handleDropdownKeys routes input while the activity dropdown is open.
func (model *Model) handleDropdownKeys(message tea.KeyMsg) {
	if model.dropdown == nil {
		model.focus = focusForm
		return
	}
	switch {
	case key.Matches(message, model.keys.Cancel), key.Matches(message, model.keys.Quit):
		model.dropdown = nil
		model.focus = focusForm

	case key.Matches(message, model.keys.Up):
		model.dropdown.MoveUp()

	case key.Matches(message, model.keys.Down):
		model.dropdown.MoveDown()

	case key.Matches(message, model.keys.OpenSelect):
		model.form.selected = model.dropdown.Selected().Value
		model.dropdown = nil
		model.focus = focusForm
		model.form.focus(fieldEmail)
	}
}
