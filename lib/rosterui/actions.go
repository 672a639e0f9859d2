// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roster/lib/registry"
	"github.com/bureau-foundation/roster/lib/secret"
	"github.com/bureau-foundation/roster/lib/tui"
)

// Requests are never cancelled once issued; the HTTP client's timeout
// is the only bound.

// refresh issues a roster read tagged with the next sequence number.
// Overlapping refreshes are allowed; applyRoster discards any response
// older than the newest one already applied.
func (model *Model) refresh() tea.Cmd {
	model.refreshIssued++
	return fetchRoster(model.registry, model.refreshIssued)
}

func fetchRoster(source Registry, sequence uint64) tea.Cmd {
	return func() tea.Msg {
		activities, err := source.Activities(context.Background())
		return rosterResultMsg{sequence: sequence, activities: activities, err: err}
	}
}

// applyRoster replaces the roster with a refresh result and rebuilds
// the view from scratch. A failure replaces the roster view with the
// failure placeholder; the previous roster is not kept.
func (model *Model) applyRoster(message rosterResultMsg) {
	if message.sequence <= model.refreshApplied {
		model.logger.Debug("discarding stale roster response",
			"sequence", message.sequence,
			"applied", model.refreshApplied,
		)
		return
	}
	model.refreshApplied = message.sequence
	model.loaded = true

	if message.err != nil {
		model.logger.Error("error fetching activities", "error", message.err)
		model.activities = nil
		model.loadFailed = true
	} else {
		model.activities = message.activities
		model.loadFailed = false
	}

	model.rebuildRosterView()
	model.syncAuthMode()
}

// enroll signs email up for activity. Without a stored token the
// request is refused locally and nothing is sent.
func (model *Model) enroll(activity, email string) tea.Cmd {
	return model.mutate(mutationEnroll, activity, email)
}

// unregister removes email from activity, gated like enroll.
func (model *Model) unregister(activity, email string) tea.Cmd {
	return model.mutate(mutationUnregister, activity, email)
}

func (model *Model) mutate(kind mutationKind, activity, email string) tea.Cmd {
	token, ok := model.store.Get()
	if !ok {
		return model.notify(mutationFailureText(kind, ErrLoginRequired), tui.SeverityError)
	}

	source := model.registry
	return func() tea.Msg {
		var message string
		var err error
		switch kind {
		case mutationEnroll:
			message, err = source.Signup(context.Background(), token, activity, email)
		default:
			message, err = source.Unregister(context.Background(), token, activity, email)
		}
		return mutationResultMsg{kind: kind, activity: activity, email: email, message: message, err: err}
	}
}

// handleMutationResult surfaces the outcome. Only success refreshes;
// enroll additionally resets the form on success.
func (model *Model) handleMutationResult(message mutationResultMsg) tea.Cmd {
	if message.err != nil {
		if _, rejected := registry.AsRejected(message.err); !rejected {
			model.logger.Error(mutationLogMessage(message.kind),
				"activity", message.activity,
				"email", message.email,
				"error", message.err,
			)
		}
		return model.notify(mutationFailureText(message.kind, message.err), tui.SeverityError)
	}

	text := message.message
	if text == "" {
		text = requestCompletedText
	}
	if message.kind == mutationEnroll {
		model.form.reset()
	}
	return tea.Batch(model.notify(text, tui.SeveritySuccess), model.refresh())
}

// mutationFailureText maps a mutation error to its banner text.
func mutationFailureText(kind mutationKind, err error) string {
	if errors.Is(err, ErrLoginRequired) {
		return loginRequiredText
	}
	if rejected, ok := registry.AsRejected(err); ok {
		if rejected.Detail != "" {
			return rejected.Detail
		}
		return rejectedFallbackText
	}
	if kind == mutationEnroll {
		return enrollFailedText
	}
	return unregisterFailedText
}

func mutationLogMessage(kind mutationKind) string {
	if kind == mutationEnroll {
		return "error signing up"
	}
	return "error unregistering"
}

// submitLogin sends the login modal's credentials. The password is
// copied into a secret.Buffer that lives only as long as the request.
func (model *Model) submitLogin() tea.Cmd {
	if model.login == nil || model.login.submitting {
		return nil
	}
	username, password := model.login.credentials()
	if username == "" || password == "" {
		model.login.hint = "Enter a username and password."
		return nil
	}

	buffer, err := secret.NewFromString(password)
	if err != nil {
		model.logger.Error("error preparing password", "error", err)
		return model.notify(loginFailedText, tui.SeverityError)
	}
	model.login.hint = ""
	model.login.submitting = true

	source := model.registry
	return func() tea.Msg {
		defer buffer.Close()
		token, err := source.Login(context.Background(), username, buffer)
		return loginResultMsg{token: token, err: err}
	}
}

// handleLoginResult applies a login outcome. On failure the prompt
// stays open with its fields intact.
func (model *Model) handleLoginResult(message loginResultMsg) tea.Cmd {
	if model.login != nil {
		model.login.submitting = false
	}

	if message.err != nil {
		if rejected, ok := registry.AsRejected(message.err); ok {
			text := rejected.Detail
			if text == "" {
				text = invalidLoginText
			}
			return model.notify(text, tui.SeverityError)
		}
		model.logger.Error("error logging in", "error", message.err)
		return model.notify(loginFailedText, tui.SeverityError)
	}

	if err := model.store.Set(message.token); err != nil {
		model.logger.Error("error saving teacher token", "error", err)
		model.syncAuthMode()
		return model.notify(loginNotSavedText, tui.SeverityError)
	}

	model.login = nil
	model.focus = focusRoster
	model.syncAuthMode()
	return tea.Batch(model.notify(loggedInText, tui.SeveritySuccess), model.refresh())
}

// logout notifies the auth service, best effort. A second logout while
// one is in flight, or a logout with no stored token, does nothing.
func (model *Model) logout() tea.Cmd {
	token, ok := model.store.Get()
	if !ok || model.loggingOut {
		return nil
	}
	model.loggingOut = true

	source := model.registry
	return func() tea.Msg {
		return logoutResultMsg{err: source.Logout(context.Background(), token)}
	}
}

// handleLogoutResult clears the token whatever the server said.
func (model *Model) handleLogoutResult(message logoutResultMsg) tea.Cmd {
	model.loggingOut = false
	if message.err != nil {
		model.logger.Debug("logout request failed", "error", message.err)
	}
	if err := model.store.Clear(); err != nil {
		model.logger.Error("error clearing teacher token", "error", err)
	}
	model.syncAuthMode()
	return tea.Batch(model.notify(loggedOutText, tui.SeverityInfo), model.refresh())
}
