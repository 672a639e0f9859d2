// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/roster/lib/tokenstore"
)

func captureRecords(handler *LogHandler) *[]logRecordMsg {
	var records []logRecordMsg
	handler.setSink(func(message tea.Msg) {
		records = append(records, message.(logRecordMsg))
	})
	return &records
}

func TestLogHandlerDropsBeforeProgram(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	slog.New(handler).Error("nobody is listening")
}

func TestLogHandlerLevel(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	records := captureRecords(handler)
	logger := slog.New(handler)

	logger.Info("routine")
	logger.Warn("slow response")
	logger.Error("error fetching activities")

	if len(*records) != 2 {
		t.Fatalf("delivered %d records, want 2", len(*records))
	}
	if (*records)[0].Level != slog.LevelWarn || (*records)[1].Level != slog.LevelError {
		t.Errorf("levels = %v, %v", (*records)[0].Level, (*records)[1].Level)
	}
}

func TestLogHandlerSummary(t *testing.T) {
	tests := []struct {
		name string
		log  func(*slog.Logger)
		want string
	}{
		{
			name: "message only",
			log:  func(logger *slog.Logger) { logger.Warn("plain") },
			want: "plain",
		},
		{
			name: "record attrs",
			log:  func(logger *slog.Logger) { logger.Error("error signing up", "activity", "Chess Club", "status", 500) },
			want: "error signing up (activity=Chess Club, status=500)",
		},
		{
			name: "handler attrs first",
			log: func(logger *slog.Logger) {
				logger.With("component", "roster").Warn("stale", "sequence", 2)
			},
			want: "stale (component=roster, sequence=2)",
		},
		{
			name: "groups prefix later keys",
			log: func(logger *slog.Logger) {
				logger.With("component", "roster").WithGroup("http").Warn("retry", "status", 502)
			},
			want: "retry (component=roster, http.status=502)",
		},
		{
			name: "group attr flattened",
			log: func(logger *slog.Logger) {
				logger.Warn("request", slog.Group("response", "status", 403, "detail", "denied"))
			},
			want: "request (response.status=403, response.detail=denied)",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			handler := NewLogHandler(slog.LevelWarn)
			records := captureRecords(handler)
			test.log(slog.New(handler))
			if len(*records) != 1 {
				t.Fatalf("delivered %d records, want 1", len(*records))
			}
			if got := (*records)[0].Summary; got != test.want {
				t.Errorf("summary = %q, want %q", got, test.want)
			}
		})
	}
}

func TestLogHandlerDerivedShareProgram(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	derived := slog.New(handler).With("component", "registry")

	// The sink is attached after deriving.
	records := captureRecords(handler)
	derived.Warn("late attach")
	if len(*records) != 1 {
		t.Fatalf("delivered %d records, want 1", len(*records))
	}
}

func TestStatusLineShowsAndFadesRecords(t *testing.T) {
	h := newHarness(t, newFakeRegistry(testRoster()), tokenstore.NewMemory("")).start()
	h.assertViewContains("r refresh")

	h.send(logRecordMsg{Summary: "error fetching activities (error=boom)", Level: slog.LevelError})
	h.assertViewContains("error fetching activities (error=boom)")
	h.assertViewLacks("r refresh")
	if len(h.ticks) != 1 || h.ticks[0].delay != logRecordFadeDelay {
		t.Fatalf("ticks = %+v, want one fade tick", h.ticks)
	}
	firstFade := h.ticks[0].fire

	h.send(logRecordMsg{Summary: "second", Level: slog.LevelWarn})
	h.send(firstFade)
	h.assertViewContains("second")

	h.send(h.ticks[1].fire)
	h.assertViewLacks("second")
	h.assertViewContains("r refresh")
	if h.notice() != "" {
		t.Errorf("diagnostics leaked into the notification: %q", h.notice())
	}
}
