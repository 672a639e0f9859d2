// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg shows one diagnostic record in the status line, in
// place of the key help.
type logRecordMsg struct {
	Summary string
	Level   slog.Level

	// generation is assigned by Update on arrival.
	generation uint64
}

// logRecordFadeMsg restores the key help once the record identified by
// generation has been visible for logRecordFadeDelay.
type logRecordFadeMsg struct {
	generation uint64
}

const logRecordFadeDelay = 5 * time.Second

// logSink delivers a message into the running program.
type logSink func(tea.Msg)

// LogHandler is a slog.Handler that shows records in the roster
// view's status line. It is separate from the notification banner,
// which only carries outcomes of user actions.
//
// Records are dropped until SetProgram is called. Handlers derived via
// WithAttrs and WithGroup share the root's program.
type LogHandler struct {
	level  slog.Leveler
	sink   *atomic.Pointer[logSink]
	attrs  []string // Pre-formatted "key=value" pairs.
	prefix string   // Group prefix for record attribute keys.
}

// NewLogHandler creates a handler for records at or above level.
func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{level: level, sink: &atomic.Pointer[logSink]{}}
}

// SetProgram starts delivery to program. Safe to call from any
// goroutine.
func (handler *LogHandler) SetProgram(program *tea.Program) {
	handler.setSink(program.Send)
}

func (handler *LogHandler) setSink(send logSink) {
	handler.sink.Store(&send)
}

// Enabled implements slog.Handler.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle implements slog.Handler. The summary is the message followed
// by its attributes: "message (key=value, ...)".
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	send := handler.sink.Load()
	if send == nil {
		return nil
	}

	parts := slices.Clone(handler.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		parts = appendAttr(parts, handler.prefix, attr)
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	(*send)(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	for _, attr := range attrs {
		derived.attrs = appendAttr(derived.attrs, handler.prefix, attr)
	}
	return &derived
}

// WithGroup implements slog.Handler.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.attrs = slices.Clone(handler.attrs)
	derived.prefix = handler.prefix + name + "."
	return &derived
}

// appendAttr formats attr, flattening groups into dotted keys.
func appendAttr(parts []string, prefix string, attr slog.Attr) []string {
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix += attr.Key + "."
		}
		for _, member := range value.Group() {
			parts = appendAttr(parts, groupPrefix, member)
		}
		return parts
	}
	if attr.Key == "" {
		return parts
	}
	return append(parts, prefix+attr.Key+"="+value.String())
}
