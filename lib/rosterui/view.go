// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/roster/lib/roster"
	"github.com/bureau-foundation/roster/lib/tui"
)

// lineKind identifies what a roster body line shows.
type lineKind int

const (
	lineMessage lineKind = iota // Loading, failure, or empty placeholder.
	lineName
	lineDescription
	lineSchedule
	lineAvailability
	lineParticipantsHeader
	lineParticipant
	lineNoParticipants
	lineSeparator
)

// bodyLine is one line of the scrollable roster body.
type bodyLine struct {
	kind     lineKind
	activity int    // Index into Model.activities; -1 for messages.
	row      int    // Index into Model.rows for participant lines.
	text     string // Message text for lineMessage.
}

const (
	rosterTitle       = "Mergington High School Activities"
	noActivitiesText  = "No activities available"
	noMatchingText    = "No activities match the filter"
	formHeadingText   = "Sign up a student"
	formLabelWidth    = 10
	formBlockHeight   = 4
	participantIndent = "    "
	minimumBodyHeight = 1
)

// rebuildRosterView re-derives every roster line, the selectable
// participant rows, and the form's activity options from
// model.activities. Nothing from the previous render survives except
// the selection, which is restored if that participant still exists.
func (model *Model) rebuildRosterView() {
	model.form.setActivities(model.activities.Names())

	model.body = nil
	model.rows = nil
	model.rowLines = nil
	model.matches = make(map[string][]int)

	switch {
	case !model.loaded:
		model.body = append(model.body, bodyLine{kind: lineMessage, activity: -1, text: loadingActivitiesText})
	case model.loadFailed:
		model.body = append(model.body, bodyLine{kind: lineMessage, activity: -1, text: rosterLoadFailedText})
	case len(model.activities) == 0:
		model.body = append(model.body, bodyLine{kind: lineMessage, activity: -1, text: noActivitiesText})
	default:
		model.appendActivities()
	}

	model.cursor = 0
	for index, row := range model.rows {
		if row == model.selection {
			model.cursor = index
			break
		}
	}
	if len(model.rows) > 0 {
		model.selection = model.rows[model.cursor]
	} else {
		model.selection = participantRow{}
	}
	model.ensureCursorVisible()
}

func (model *Model) appendActivities() {
	shown := 0
	for index, activity := range model.activities {
		matched, positions := model.filter.match(activity.Name, model.slab)
		if !matched {
			continue
		}
		model.matches[activity.Name] = positions
		if shown > 0 {
			model.body = append(model.body, bodyLine{kind: lineSeparator, activity: index})
		}
		shown++

		model.body = append(model.body,
			bodyLine{kind: lineName, activity: index},
			bodyLine{kind: lineDescription, activity: index},
			bodyLine{kind: lineSchedule, activity: index},
			bodyLine{kind: lineAvailability, activity: index},
			bodyLine{kind: lineParticipantsHeader, activity: index},
		)
		if len(activity.Participants) == 0 {
			model.body = append(model.body, bodyLine{kind: lineNoParticipants, activity: index})
			continue
		}
		for _, email := range activity.Participants {
			model.rowLines = append(model.rowLines, len(model.body))
			model.body = append(model.body, bodyLine{kind: lineParticipant, activity: index, row: len(model.rows)})
			model.rows = append(model.rows, participantRow{activity: activity.Name, email: email})
		}
	}
	if shown == 0 {
		model.body = append(model.body, bodyLine{kind: lineMessage, activity: -1, text: noMatchingText})
	}
}

// bodyHeight is the number of roster lines that fit between the
// header and the bottom chrome. A zero terminal height (no
// WindowSizeMsg yet) shows the whole body.
func (model Model) bodyHeight() int {
	if model.height <= 0 {
		return max(len(model.body), minimumBodyHeight)
	}
	chrome := 3 // Header, notification, status.
	if model.filterShown() {
		chrome++
	}
	if model.formVisible() {
		chrome += formBlockHeight
	}
	return max(model.height-chrome, minimumBodyHeight)
}

func (model Model) filterShown() bool {
	return model.filter.active || model.filter.pattern() != ""
}

// ensureCursorVisible clamps the scroll offset and, while the removal
// affordance is shown, scrolls the selected row into view.
func (model *Model) ensureCursorVisible() {
	height := model.bodyHeight()
	if model.authenticated && model.cursor < len(model.rowLines) {
		line := model.rowLines[model.cursor]
		if line < model.scroll {
			model.scroll = line
		}
		if line >= model.scroll+height {
			model.scroll = line - height + 1
		}
	}
	model.scroll = min(max(model.scroll, 0), max(len(model.body)-height, 0))
}

// scrollBy moves the viewport without a visible selection.
func (model *Model) scrollBy(delta int) {
	model.scroll += delta
	model.ensureCursorVisible()
}

// View implements tea.Model.
func (model Model) View() string {
	lines := []string{model.renderHeader(), model.renderNotice()}
	if model.filterShown() {
		lines = append(lines, model.filter.input.View())
	}

	lines = append(lines, model.renderBody()...)

	formStart := len(lines)
	if model.formVisible() {
		lines = append(lines, model.renderForm()...)
	}
	lines = append(lines, model.renderStatus())

	view := strings.Join(lines, "\n")

	if model.dropdown != nil {
		overlay := model.dropdown.Render(model.theme)
		anchorY := formStart + 2
		if model.height > 0 && anchorY+len(overlay) > model.height {
			anchorY = max(formStart+1-len(overlay), 0)
		}
		view = tui.SpliceOverlay(view, overlay, formLabelWidth, anchorY)
	}
	if model.login != nil {
		overlay, anchorX, anchorY := model.login.render(model.theme, model.width, max(model.height, len(lines)))
		view = tui.SpliceOverlay(view, overlay, anchorX, anchorY)
	}
	return view
}

func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faintStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	left := titleStyle.Render(rosterTitle)
	if model.origin != "" {
		left += faintStyle.Render(" · " + model.origin)
	}

	var right string
	if model.authenticated {
		right = lipgloss.NewStyle().Foreground(model.theme.SuccessForeground).Render("teacher") +
			faintStyle.Render("  o logout")
	} else {
		right = faintStyle.Render("l login")
	}

	gap := 2
	if model.width > 0 {
		gap = max(model.width-ansi.StringWidth(left)-ansi.StringWidth(right), 2)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (model Model) renderNotice() string {
	if model.notice.text == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.SeverityColor(model.notice.severity)).
		Render(model.notice.text)
}

// renderBody returns exactly bodyHeight lines, with a scrollbar column
// when the terminal width is known.
func (model Model) renderBody() []string {
	height := model.bodyHeight()
	lines := make([]string, 0, height)
	for index := model.scroll; index < len(model.body) && len(lines) < height; index++ {
		lines = append(lines, model.renderBodyLine(model.body[index]))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	if model.width <= 1 {
		return lines
	}
	scrollbar := tui.ScrollbarColumn(model.theme, height, len(model.body), height, model.scroll)
	contentWidth := model.width - 1
	for index, line := range lines {
		if width := ansi.StringWidth(line); width > contentWidth {
			line = ansi.Truncate(line, contentWidth, "")
		} else {
			line += strings.Repeat(" ", contentWidth-width)
		}
		lines[index] = line + scrollbar[index]
	}
	return lines
}

func (model Model) renderBodyLine(line bodyLine) string {
	theme := model.theme
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(theme.NormalText)

	if line.kind == lineMessage {
		return faint.Render(line.text)
	}
	if line.kind == lineSeparator {
		return ""
	}
	activity := model.activities[line.activity]

	switch line.kind {
	case lineName:
		base := lipgloss.NewStyle().Bold(true).Foreground(theme.AccentForeground)
		highlight := base.Background(theme.MatchHighlightBackground)
		return tui.HighlightPositions(activity.Name, model.matches[activity.Name],
			func(text string) string { return base.Render(text) },
			func(text string) string { return highlight.Render(text) })
	case lineDescription:
		return tui.RenderInlineMarkdown(activity.Description, theme)
	case lineSchedule:
		return faint.Render("Schedule: ") + normal.Render(activity.Schedule)
	case lineAvailability:
		return faint.Render("Availability: ") + lipgloss.NewStyle().
			Foreground(theme.AvailabilityColor(activity.SpotsLeft())).
			Render(availabilityText(activity))
	case lineParticipantsHeader:
		return faint.Render("Participants:")
	case lineNoParticipants:
		return faint.Italic(true).Render(participantIndent + noParticipantsText)
	case lineParticipant:
		return model.renderParticipant(line.row)
	}
	return ""
}

func availabilityText(activity roster.Activity) string {
	return fmt.Sprintf("%d spots left", activity.SpotsLeft())
}

// renderParticipant draws one participant row. The removal marker and
// the selection highlight are only shown to a logged-in teacher.
func (model Model) renderParticipant(row int) string {
	email := model.rows[row].email
	if !model.authenticated {
		return lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(participantIndent + "• " + email)
	}

	selected := row == model.cursor && model.focus == focusRoster
	markerStyle := lipgloss.NewStyle().Foreground(model.theme.RemoveForeground)
	textStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	if selected {
		markerStyle = markerStyle.Background(model.theme.SelectedBackground)
		textStyle = textStyle.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
	}
	return textStyle.Render(participantIndent) + markerStyle.Render("✕") + textStyle.Render(" "+email)
}

// renderForm draws the enrollment form: heading, activity selector,
// email field, and a hint line.
func (model Model) renderForm() []string {
	theme := model.theme
	faint := lipgloss.NewStyle().Foreground(theme.FaintText)
	label := func(text string, field formField) string {
		style := faint
		if model.form.focused && model.form.field == field {
			style = lipgloss.NewStyle().Bold(true).Foreground(theme.AccentForeground)
		}
		return style.Width(formLabelWidth).Render(text)
	}

	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.HeaderForeground).Render(formHeadingText)
	if model.width > 0 {
		if rule := model.width - ansi.StringWidth(formHeadingText) - 1; rule > 0 {
			heading += " " + lipgloss.NewStyle().Foreground(theme.BorderColor).Render(strings.Repeat("─", rule))
		}
	}

	selector := "< " + model.form.selectedLabel() + " >"
	if model.form.selected == "" {
		selector = faint.Render(selector)
	}

	var hint string
	switch {
	case model.form.hint != "":
		hint = lipgloss.NewStyle().Foreground(theme.ErrorForeground).Render(model.form.hint)
	case model.form.focused && model.form.field == fieldActivity:
		hint = faint.Render("Enter choose  ←/→ cycle  Tab next  Esc back")
	case model.form.focused:
		hint = faint.Render("Enter sign up  Tab previous  Esc back")
	}

	return []string{
		heading,
		label("Activity", fieldActivity) + selector,
		label("Email", fieldEmail) + model.form.email.View(),
		hint,
	}
}

// renderStatus shows the newest diagnostic record, or key help for
// the focused region.
func (model Model) renderStatus() string {
	if model.status.Summary != "" {
		color := model.theme.ScarceForeground
		if model.status.Level >= slog.LevelError {
			color = model.theme.ErrorForeground
		}
		summary := model.status.Summary
		if model.width > 0 && ansi.StringWidth(summary) > model.width {
			summary = ansi.Truncate(summary, model.width, "…")
		}
		return lipgloss.NewStyle().Foreground(color).Render(summary)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(model.helpText())
}

func (model Model) helpText() string {
	switch model.focus {
	case focusFilter:
		return "Enter keep filter  Esc clear"
	case focusForm, focusDropdown:
		return "Enter select  Esc back"
	case focusLogin:
		return "Enter submit  Esc cancel"
	}

	bindings := []key.Binding{model.keys.Refresh}
	if model.authenticated {
		bindings = append(bindings, model.keys.Up, model.keys.Down, model.keys.Remove)
	}
	if model.formVisible() {
		bindings = append(bindings, model.keys.FocusForm)
	}
	if model.authenticated {
		bindings = append(bindings, model.keys.Logout)
	} else {
		bindings = append(bindings, model.keys.Login)
	}
	bindings = append(bindings, model.keys.FilterActivate, model.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
