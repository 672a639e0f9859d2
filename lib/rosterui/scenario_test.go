// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rosterui

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/roster/lib/config"
	"github.com/bureau-foundation/roster/lib/registry"
	"github.com/bureau-foundation/roster/lib/registry/registrytest"
	"github.com/bureau-foundation/roster/lib/roster"
	"github.com/bureau-foundation/roster/lib/tokenstore"
)

// liveRegistry starts a registrytest server seeded with one Chess Club
// participant and returns a real client for it plus a file-backed
// credential store.
func liveRegistry(t *testing.T) (*registrytest.Server, *registry.Client, *tokenstore.File) {
	t.Helper()
	fake, err := registrytest.New(registrytest.Config{
		Roster: roster.Roster{{
			Name:            "Chess Club",
			Description:     "Strategy and tournaments",
			Schedule:        "Mon",
			MaxParticipants: 10,
			Participants:    []string{"a@x.com"},
		}},
	})
	if err != nil {
		t.Fatalf("registrytest.New: %v", err)
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := registry.NewClient(registry.ClientConfig{ServerURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store, err := tokenstore.OpenFile(filepath.Join(t.TempDir(), "credentials.json"), client.Origin())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	return fake, client, store
}

func (h *harness) login(username, password string) {
	h.t.Helper()
	h.press("l")
	h.typeText(username)
	h.press("enter")
	h.typeText(password)
	h.press("enter")
}

func TestChessClubAnonymousView(t *testing.T) {
	_, client, store := liveRegistry(t)
	h := newHarness(t, client, store).start()

	h.assertViewContains("Chess Club", "Schedule: Mon", "Availability: 9 spots left", "• a@x.com", formHeadingText)
	h.assertViewLacks("✕")
	if len(h.model.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(h.model.rows))
	}
}

func TestChessClubEnrollWithoutLogin(t *testing.T) {
	fake, client, store := liveRegistry(t)
	h := newHarness(t, client, store).start()
	fake.ResetRequests()

	h.enrollViaForm(1, "b@x.com")

	if requests := fake.Requests(); len(requests) != 0 {
		t.Errorf("sent %d requests, want none: %+v", len(requests), requests)
	}
	if !strings.HasPrefix(h.notice(), "Teacher login required") {
		t.Errorf("notice = %q", h.notice())
	}
}

func TestChessClubLoginThenUnregister(t *testing.T) {
	fake, client, store := liveRegistry(t)
	h := newHarness(t, client, store).start()
	fake.ResetRequests()

	h.login("teacher", "password123")

	token, ok := store.Get()
	if !ok || !fake.ValidToken(token) {
		t.Fatalf("stored token %q valid=%v", token, fake.ValidToken(token))
	}
	if got := fake.CountRequests(http.MethodGet, "/activities"); got != 1 {
		t.Errorf("refreshes after login = %d, want 1", got)
	}
	h.assertViewContains("✕ a@x.com", "o logout")

	// The token survives reopening the store.
	reopened, err := tokenstore.OpenFile(store.Path(), client.Origin())
	if err != nil {
		t.Fatal(err)
	}
	if persisted, _ := reopened.Get(); persisted != token {
		t.Errorf("persisted token = %q, want %q", persisted, token)
	}

	fake.ResetRequests()
	h.press("d")

	requests := fake.Requests()
	if len(requests) != 2 {
		t.Fatalf("requests = %+v, want unregister then one refresh", requests)
	}
	unregister := requests[0]
	if unregister.Method != http.MethodDelete || unregister.Path != "/activities/Chess Club/unregister" ||
		unregister.Email != "a@x.com" || unregister.Authorization != "Bearer "+token {
		t.Errorf("unregister request = %+v", unregister)
	}
	if requests[1].Method != http.MethodGet || requests[1].Path != "/activities" {
		t.Errorf("second request = %+v, want the refresh", requests[1])
	}
	if h.notice() != "Unregistered a@x.com from Chess Club" {
		t.Errorf("notice = %q", h.notice())
	}
	h.assertViewContains(noParticipantsText, "Availability: 10 spots left")
	// The success notice names the student, so look for the row itself.
	h.assertViewLacks("✕ a@x.com", "• a@x.com")
}

func TestChessClubEnrollAsTeacher(t *testing.T) {
	fake, client, store := liveRegistry(t)
	h := newHarness(t, client, store, withFormVisibility(config.FormWhenLoggedIn)).start()
	h.login("teacher", "password123")
	fake.ResetRequests()

	h.enrollViaForm(1, "b@x.com")
	if h.notice() != "Signed up b@x.com for Chess Club" {
		t.Errorf("notice = %q", h.notice())
	}
	h.assertViewContains("✕ b@x.com", "Availability: 8 spots left")
	if got := fake.CountRequests(http.MethodGet, "/activities"); got != 1 {
		t.Errorf("refreshes = %d, want 1", got)
	}

	// A duplicate is rejected by the registry and does not refresh.
	fake.ResetRequests()
	h.enrollViaForm(1, "b@x.com")
	if h.notice() != "Student is already signed up" {
		t.Errorf("notice = %q", h.notice())
	}
	if got := fake.CountRequests(http.MethodGet, "/activities"); got != 0 {
		t.Errorf("refreshes after rejection = %d, want 0", got)
	}
}

func TestChessClubLogout(t *testing.T) {
	fake, client, store := liveRegistry(t)
	h := newHarness(t, client, store).start()
	h.login("teacher", "password123")
	token, _ := store.Get()

	h.press("o")

	if _, ok := store.Get(); ok {
		t.Error("token still stored")
	}
	if fake.ValidToken(token) {
		t.Error("server session still valid after logout")
	}
	h.assertViewContains("l login", "• a@x.com")
	h.assertViewLacks("✕")
}

func TestChessClubWrongPassword(t *testing.T) {
	_, client, store := liveRegistry(t)
	h := newHarness(t, client, store).start()

	h.login("teacher", "nope")
	if h.notice() != "Invalid username or password" {
		t.Errorf("notice = %q", h.notice())
	}
	if _, ok := store.Get(); ok {
		t.Error("token stored after a rejected login")
	}
	if h.model.login == nil {
		t.Error("login modal closed after a rejected login")
	}
}
