// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/roster/lib/config"
	"github.com/bureau-foundation/roster/lib/registry"
	"github.com/bureau-foundation/roster/lib/roster"
	"github.com/bureau-foundation/roster/lib/secret"
	"github.com/bureau-foundation/roster/lib/tokenstore"
	"github.com/bureau-foundation/roster/lib/tui"
)

// Registry is the remote registry and authentication service.
// *registry.Client implements it.
type Registry interface {
	Activities(ctx context.Context) (roster.Roster, error)
	Signup(ctx context.Context, token, activity, email string) (string, error)
	Unregister(ctx context.Context, token, activity, email string) (string, error)
	Login(ctx context.Context, username string, password *secret.Buffer) (string, error)
	Logout(ctx context.Context, token string) error
}

var _ Registry = (*registry.Client)(nil)

// ErrLoginRequired is the local refusal of a mutation attempted with no
// stored token. No request is sent.
var ErrLoginRequired = errors.New("teacher login required")

// User-facing notification texts.
const (
	loginRequiredText     = "Teacher login required to perform this action."
	rejectedFallbackText  = "An error occurred"
	enrollFailedText      = "Failed to sign up. Please try again."
	unregisterFailedText  = "Failed to unregister. Please try again."
	requestCompletedText  = "Request completed"
	loggedInText          = "Logged in as teacher"
	invalidLoginText      = "Invalid credentials"
	loginFailedText       = "Failed to log in. Please try again."
	loginNotSavedText     = "Logged in, but the token could not be saved."
	loggedOutText         = "Logged out"
	rosterLoadFailedText  = "Failed to load activities. Please try again later."
	noParticipantsText    = "No participants yet"
	selectActivityText    = "-- Select an activity --"
	loadingActivitiesText = "Loading activities..."
)

// defaultNoticeDuration is how long a notification stays visible.
const defaultNoticeDuration = 5 * time.Second

// focusRegion identifies which component receives keyboard input.
type focusRegion int

const (
	focusRoster focusRegion = iota
	focusForm
	focusDropdown
	focusFilter
	focusLogin
)

// mutationKind distinguishes enroll from unregister results.
type mutationKind int

const (
	mutationEnroll mutationKind = iota
	mutationUnregister
)

// rosterResultMsg carries the outcome of one refresh.
type rosterResultMsg struct {
	sequence   uint64
	activities roster.Roster
	err        error
}

// mutationResultMsg carries the outcome of a signup or unregister call.
type mutationResultMsg struct {
	kind     mutationKind
	activity string
	email    string
	message  string
	err      error
}

// loginResultMsg carries the outcome of a login call.
type loginResultMsg struct {
	token string
	err   error
}

// logoutResultMsg is delivered once the best-effort logout call
// returns, whatever its outcome.
type logoutResultMsg struct {
	err error
}

// noticeExpiredMsg hides the notification issued with generation,
// unless a newer one has replaced it.
type noticeExpiredMsg struct {
	generation uint64
}

// Config configures a Model.
type Config struct {
	// Registry serves roster reads, mutations, and login. Required.
	Registry Registry

	// Store holds the teacher token. Required.
	Store tokenstore.Store

	// Logger receives diagnostics. Nil discards.
	Logger *slog.Logger

	// FormVisibility selects when the enrollment form is shown. Empty
	// means config.FormWhenLoggedOut.
	FormVisibility config.FormVisibility

	// Origin is shown in the header to identify the registry.
	Origin string

	// Theme overrides tui.DefaultTheme.
	Theme *tui.Theme

	// NoticeDuration overrides the five second notification lifetime.
	NoticeDuration time.Duration
}

// notification is the single banner slot.
type notification struct {
	text     string
	severity tui.Severity
}

// participantRow is one selectable participant line.
type participantRow struct {
	activity string
	email    string
}

// Model is the top-level bubbletea model for the roster viewer.
//
// The roster shown is always exactly the last applied server response:
// mutations never edit it locally, they end in a refresh.
type Model struct {
	registry       Registry
	store          tokenstore.Store
	logger         *slog.Logger
	theme          tui.Theme
	keys           KeyMap
	formVisibility config.FormVisibility
	origin         string
	noticeDuration time.Duration

	// Terminal dimensions (set by WindowSizeMsg). Zero height renders
	// the whole roster without scrolling.
	width  int
	height int

	// Roster state from the last applied refresh.
	activities roster.Roster
	loaded     bool // At least one refresh has been applied.
	loadFailed bool // The last applied refresh failed.

	// Refresh fencing: issued counts every refresh started; applied is
	// the sequence of the newest response applied to the view.
	refreshIssued  uint64
	refreshApplied uint64

	// Derived view state, rebuilt from scratch by rebuildRosterView.
	body      []bodyLine
	rows      []participantRow
	rowLines  []int // Index into body for each row.
	matches   map[string][]int
	cursor    int
	scroll    int
	selection participantRow // Stable focus across rebuilds.

	// UI mode, re-derived by syncAuthMode.
	authenticated bool

	focus    focusRegion
	form     enrollForm
	dropdown *tui.DropdownOverlay
	filter   activityFilter
	login    *LoginModal
	slab     *util.Slab

	loggingOut bool // A logout call is in flight.

	notice           notification
	noticeGeneration uint64

	status           logRecordMsg
	statusGeneration uint64

	// tick schedules banner expiry; tea.Tick outside tests.
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// NewModel creates a Model. The initial refresh is issued by Init.
func NewModel(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	theme := tui.DefaultTheme
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	visibility := cfg.FormVisibility
	if visibility == "" {
		visibility = config.FormWhenLoggedOut
	}
	noticeDuration := cfg.NoticeDuration
	if noticeDuration <= 0 {
		noticeDuration = defaultNoticeDuration
	}

	model := Model{
		registry:       cfg.Registry,
		store:          cfg.Store,
		logger:         logger,
		theme:          theme,
		keys:           DefaultKeyMap,
		formVisibility: visibility,
		origin:         cfg.Origin,
		noticeDuration: noticeDuration,
		form:           newEnrollForm(),
		filter:         newActivityFilter(),
		slab:           util.MakeSlab(100*1024, 2048),
		tick:           tea.Tick,
		// Sequence 1 is reserved for the refresh Init issues; Init
		// cannot record it on a value receiver.
		refreshIssued: 1,
	}
	model.rebuildRosterView()
	model.syncAuthMode()
	return model
}

// Init implements tea.Model. Issues the initial refresh.
func (model Model) Init() tea.Cmd {
	return fetchRoster(model.registry, 1)
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ensureCursorVisible()

	case rosterResultMsg:
		model.applyRoster(message)

	case mutationResultMsg:
		return model, model.handleMutationResult(message)

	case loginResultMsg:
		return model, model.handleLoginResult(message)

	case logoutResultMsg:
		return model, model.handleLogoutResult(message)

	case noticeExpiredMsg:
		if message.generation == model.noticeGeneration {
			model.notice = notification{}
		}

	case logRecordMsg:
		model.statusGeneration++
		message.generation = model.statusGeneration
		model.status = message
		generation := model.statusGeneration
		return model, model.tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{generation: generation}
		})

	case logRecordFadeMsg:
		if message.generation == model.statusGeneration {
			model.status = logRecordMsg{}
		}
	}
	return model, nil
}

// handleKey routes keyboard input by focus region.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.ForceQuit) {
		return model, tea.Quit
	}

	switch model.focus {
	case focusLogin:
		return model, model.handleLoginKeys(message)
	case focusDropdown:
		model.handleDropdownKeys(message)
		return model, nil
	case focusForm:
		return model, model.handleFormKeys(message)
	case focusFilter:
		model.handleFilterKeys(message)
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Refresh):
		return model, model.refresh()

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)

	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)

	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-max(model.bodyHeight()/2, 1))

	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(max(model.bodyHeight()/2, 1))

	case key.Matches(message, model.keys.Remove):
		row, ok := model.selectedRow()
		if !ok {
			return model, nil
		}
		return model, model.unregister(row.activity, row.email)

	case key.Matches(message, model.keys.FocusForm):
		if model.formVisible() {
			model.focus = focusForm
			model.form.focus(fieldActivity)
		}

	case key.Matches(message, model.keys.Login):
		if !model.authenticated {
			model.login = NewLoginModal()
			model.focus = focusLogin
		}

	case key.Matches(message, model.keys.Logout):
		return model, model.logout()

	case key.Matches(message, model.keys.FilterActivate):
		model.focus = focusFilter
		model.filter.activate()

	case key.Matches(message, model.keys.Cancel):
		if model.filter.pattern() != "" {
			model.filter.clear()
			model.rebuildRosterView()
		}
	}
	return model, nil
}

// notify replaces the banner and schedules its expiry.
func (model *Model) notify(text string, severity tui.Severity) tea.Cmd {
	model.noticeGeneration++
	model.notice = notification{text: text, severity: severity}
	generation := model.noticeGeneration
	return model.tick(model.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{generation: generation}
	})
}

// formVisible reports whether the enrollment form is shown in the
// current UI mode.
func (model Model) formVisible() bool {
	return model.formVisibility.Visible(model.authenticated)
}

// syncAuthMode re-derives the UI mode from the credential store and
// withdraws focus from any privileged control that is no longer shown.
// Runs at startup, after every refresh, and after every auth
// transition.
func (model *Model) syncAuthMode() {
	_, model.authenticated = model.store.Get()
	if !model.formVisible() && (model.focus == focusForm || model.focus == focusDropdown) {
		model.dropdown = nil
		model.form.blur()
		model.focus = focusRoster
	}
	if model.authenticated && model.focus == focusLogin {
		model.login = nil
		model.focus = focusRoster
	}
}

// selectedRow returns the participant row under the cursor.
func (model Model) selectedRow() (participantRow, bool) {
	if model.cursor < 0 || model.cursor >= len(model.rows) {
		return participantRow{}, false
	}
	return model.rows[model.cursor], true
}

// moveCursor moves the participant selection, or just scrolls while no
// selection is shown.
func (model *Model) moveCursor(delta int) {
	if !model.authenticated {
		model.scrollBy(delta)
		return
	}
	if len(model.rows) == 0 {
		return
	}
	model.cursor = min(max(model.cursor+delta, 0), len(model.rows)-1)
	model.selection = model.rows[model.cursor]
	model.ensureCursorVisible()
}
