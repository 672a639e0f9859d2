// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/roster/lib/tui"
)

// loginModalInnerWidth is the minimum content width of the login box.
const loginModalInnerWidth = 40

// LoginModal is the teacher login prompt, drawn as a centered overlay.
// Opening and closing it does not change the auth state; only a
// successful login does.
type LoginModal struct {
	username   textinput.Model
	password   textinput.Model
	onPassword bool

	// submitting is true while a login request is in flight.
	submitting bool

	// hint replaces the footer when the last submit was incomplete.
	hint string
}

// NewLoginModal creates a prompt with the username field focused.
func NewLoginModal() *LoginModal {
	username := textinput.New()
	username.Prompt = ""
	username.Placeholder = "username"
	username.CharLimit = 128
	_ = username.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	return &LoginModal{username: username, password: password}
}

// credentials returns the entered username and password.
func (modal *LoginModal) credentials() (string, string) {
	return modal.username.Value(), modal.password.Value()
}

// switchField moves focus between the two inputs.
func (modal *LoginModal) switchField() {
	modal.onPassword = !modal.onPassword
	if modal.onPassword {
		modal.username.Blur()
		_ = modal.password.Focus()
	} else {
		modal.password.Blur()
		_ = modal.username.Focus()
	}
}

// update forwards a key to the focused input.
func (modal *LoginModal) update(message tea.KeyMsg) {
	modal.hint = ""
	if modal.onPassword {
		modal.password, _ = modal.password.Update(message)
	} else {
		modal.username, _ = modal.username.Update(message)
	}
}

// handleLoginKeys routes input while the login modal is open. Enter on
// the username field advances to the password; Enter on the password
// submits.
func (model *Model) handleLoginKeys(message tea.KeyMsg) tea.Cmd {
	if model.login == nil {
		model.focus = focusRoster
		return nil
	}
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.login = nil
		model.focus = focusRoster

	case key.Matches(message, model.keys.NextField), key.Matches(message, model.keys.PrevField):
		model.login.switchField()

	case key.Matches(message, model.keys.OpenSelect):
		if !model.login.onPassword {
			model.login.switchField()
			return nil
		}
		return model.submitLogin()

	default:
		if !model.login.submitting {
			model.login.update(message)
		}
	}
	return nil
}

// render draws the modal for splicing onto the view.
func (modal *LoginModal) render(theme tui.Theme, screenWidth, screenHeight int) ([]string, int, int) {
	labelStyle := lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Background(theme.OverlayBackground)
	activeLabelStyle := labelStyle.Foreground(theme.AccentForeground).Bold(true)

	usernameLabel, passwordLabel := activeLabelStyle, labelStyle
	if modal.onPassword {
		usernameLabel, passwordLabel = labelStyle, activeLabelStyle
	}

	footer := "Enter submit  Tab switch  Esc cancel"
	switch {
	case modal.submitting:
		footer = "Logging in..."
	case modal.hint != "":
		footer = modal.hint
	}

	frame := tui.Frame{
		Title: "Teacher Login",
		Lines: []string{
			usernameLabel.Render("Username  ") + modal.username.View(),
			passwordLabel.Render("Password  ") + modal.password.View(),
		},
		Footer:        footer,
		MinInnerWidth: loginModalInnerWidth,
	}
	return frame.Render(theme, screenWidth, screenHeight)
}
