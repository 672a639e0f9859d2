// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registrytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/bureau-foundation/roster/lib/roster"
)

func newServer(t *testing.T, config Config) *Server {
	t.Helper()
	server, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return server
}

// do sends one request directly to the handler.
func do(server *Server, method, target, token, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body != "" {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)
	return recorder
}

func loginToken(t *testing.T, server *Server) string {
	t.Helper()
	response := do(server, http.MethodPost, "/login", "", `{"username":"teacher","password":"password123"}`)
	if response.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", response.Code, response.Body)
	}
	token := gjson.Get(response.Body.String(), "token").String()
	if token == "" {
		t.Fatalf("login returned no token: %s", response.Body)
	}
	return token
}

func detail(response *httptest.ResponseRecorder) string {
	return gjson.Get(response.Body.String(), "detail").String()
}

func TestActivitiesKeepsInsertionOrder(t *testing.T) {
	seed := roster.Roster{
		{Name: "Zeta", MaxParticipants: 1, Participants: []string{}},
		{Name: "Alpha", MaxParticipants: 2, Participants: []string{"a@b"}},
		{Name: "Mu", MaxParticipants: 3},
	}
	server := newServer(t, Config{Roster: seed})

	response := do(server, http.MethodGet, "/activities", "", "")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d", response.Code)
	}
	decoded, err := roster.Decode(response.Body.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := decoded.Names(), []string{"Zeta", "Alpha", "Mu"}; !slices.Equal(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	mu := activityNamed(t, decoded, "Mu")
	if mu.Participants == nil || len(mu.Participants) != 0 {
		t.Errorf("Mu participants = %#v, want empty list", mu.Participants)
	}
}

func TestSignupRequiresToken(t *testing.T) {
	server := newServer(t, Config{})

	for _, token := range []string{"", "not-a-session"} {
		response := do(server, http.MethodPost, "/activities/Chess%20Club/signup?email=x@mergington.edu", token, "")
		if response.Code != http.StatusForbidden {
			t.Errorf("token %q: status = %d, want 403", token, response.Code)
		}
	}
	chess := activityNamed(t, server.Roster(), "Chess Club")
	if chess.HasParticipant("x@mergington.edu") {
		t.Error("unauthenticated signup modified the roster")
	}
}

func TestSignupAndUnregisterMessages(t *testing.T) {
	server := newServer(t, Config{})
	token := loginToken(t, server)

	response := do(server, http.MethodPost, "/activities/Chess%20Club/signup?email=new@mergington.edu", token, "")
	if response.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", response.Code, response.Body)
	}
	if got, want := gjson.Get(response.Body.String(), "message").String(), "Signed up new@mergington.edu for Chess Club"; got != want {
		t.Errorf("signup message = %q, want %q", got, want)
	}

	response = do(server, http.MethodDelete, "/activities/Chess%20Club/unregister?email=new@mergington.edu", token, "")
	if response.Code != http.StatusOK {
		t.Fatalf("unregister status = %d, body = %s", response.Code, response.Body)
	}
	if got, want := gjson.Get(response.Body.String(), "message").String(), "Unregistered new@mergington.edu from Chess Club"; got != want {
		t.Errorf("unregister message = %q, want %q", got, want)
	}
}

func TestMutationFailures(t *testing.T) {
	seed := roster.Roster{
		{Name: "Full", MaxParticipants: 1, Participants: []string{"only@school.edu"}},
		{Name: "Art/Design", MaxParticipants: 5, Participants: []string{}},
	}
	server := newServer(t, Config{Roster: seed})
	token := loginToken(t, server)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantDetail string
	}{
		{"unknown activity", http.MethodPost, "/activities/Nope/signup?email=a@b", http.StatusNotFound, "Activity not found"},
		{"already signed up", http.MethodPost, "/activities/Full/signup?email=only@school.edu", http.StatusBadRequest, "Student is already signed up"},
		{"full", http.MethodPost, "/activities/Full/signup?email=other@school.edu", http.StatusBadRequest, "Activity is full"},
		{"not signed up", http.MethodDelete, "/activities/Full/unregister?email=other@school.edu", http.StatusBadRequest, "Student is not signed up for this activity"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response := do(server, test.method, test.target, token, "")
			if response.Code != test.wantStatus {
				t.Errorf("status = %d, want %d", response.Code, test.wantStatus)
			}
			if got := detail(response); got != test.wantDetail {
				t.Errorf("detail = %q, want %q", got, test.wantDetail)
			}
		})
	}
}

func TestMissingEmailHasListDetail(t *testing.T) {
	server := newServer(t, Config{})
	token := loginToken(t, server)

	response := do(server, http.MethodPost, "/activities/Chess%20Club/signup", token, "")
	if response.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", response.Code)
	}
	if !gjson.Get(response.Body.String(), "detail").IsArray() {
		t.Errorf("detail is not a list: %s", response.Body)
	}
}

func TestEscapedSlashInActivityName(t *testing.T) {
	seed := roster.Roster{{Name: "Art/Design", MaxParticipants: 5, Participants: []string{}}}
	server := newServer(t, Config{Roster: seed})
	token := loginToken(t, server)

	response := do(server, http.MethodPost, "/activities/Art%2FDesign/signup?email=a@b", token, "")
	if response.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", response.Code, response.Body)
	}
	activity := activityNamed(t, server.Roster(), "Art/Design")
	if !activity.HasParticipant("a@b") {
		t.Error("participant not added to Art/Design")
	}
}

func TestLoginFailures(t *testing.T) {
	server := newServer(t, Config{Teachers: map[string]string{"ms.frizzle": "bus"}})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"wrong password", `{"username":"ms.frizzle","password":"car"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"teacher","password":"password123"}`, http.StatusUnauthorized},
		{"bad json", `{`, http.StatusUnprocessableEntity},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response := do(server, http.MethodPost, "/login", "", test.body)
			if response.Code != test.wantStatus {
				t.Errorf("status = %d, want %d", response.Code, test.wantStatus)
			}
		})
	}
	if server.SessionCount() != 0 {
		t.Errorf("SessionCount = %d after failed logins, want 0", server.SessionCount())
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server := newServer(t, Config{})
	token := loginToken(t, server)

	response := do(server, http.MethodPost, "/logout", token, "")
	if response.Code != http.StatusOK {
		t.Fatalf("logout status = %d", response.Code)
	}
	if server.ValidToken(token) {
		t.Error("token still valid after logout")
	}

	response = do(server, http.MethodPost, "/activities/Chess%20Club/signup?email=a@b", token, "")
	if response.Code != http.StatusForbidden {
		t.Errorf("signup after logout status = %d, want 403", response.Code)
	}
}

func TestRequestLog(t *testing.T) {
	server := newServer(t, Config{})

	do(server, http.MethodGet, "/activities", "", "")
	do(server, http.MethodGet, "/activities", "", "")
	do(server, http.MethodPost, "/activities/Chess%20Club/signup?email=a@b", "tok", "")

	if got := server.CountRequests(http.MethodGet, "/activities"); got != 2 {
		t.Errorf("GET /activities count = %d, want 2", got)
	}
	requests := server.Requests()
	if len(requests) != 3 {
		t.Fatalf("len(Requests) = %d, want 3", len(requests))
	}
	last := requests[2]
	if last.Path != "/activities/Chess Club/signup" || last.Email != "a@b" || last.Authorization != "Bearer tok" {
		t.Errorf("last request = %+v", last)
	}

	server.ResetRequests()
	if len(server.Requests()) != 0 {
		t.Error("ResetRequests did not clear the log")
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	server := newServer(t, Config{})
	response := do(server, http.MethodGet, "/nope", "", "")
	if response.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", response.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(response.Body.Bytes(), &body); err != nil {
		t.Errorf("404 body is not JSON: %v", err)
	}
}

// activityNamed returns the named activity, failing the test if it is
// absent.
func activityNamed(t *testing.T, activities roster.Roster, name string) roster.Activity {
	t.Helper()
	index := slices.IndexFunc(activities, func(activity roster.Activity) bool { return activity.Name == name })
	if index < 0 {
		t.Fatalf("%s missing from roster %v", name, activities.Names())
	}
	return activities[index]
}
