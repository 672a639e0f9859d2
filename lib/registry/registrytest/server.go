// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registrytest provides an in-memory activity registry and
// teacher authentication service implementing the HTTP contract that
// [registry.Client] consumes. It backs the registry client tests, the
// roster viewer tests, and the bureau-roster-registry development
// server.
//
// Behavior follows the production backend: mutations without a valid
// bearer token are refused with 403, signups past capacity or for an
// already-registered email are refused with 400, a missing email query
// parameter yields a 422 whose detail is a list (not a string), and
// logout invalidates the token server-side. Tokens are HS256 JWTs
// naming a server-side session, so a well-signed token for a logged-out
// session is still refused.
package registrytest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/roster/lib/roster"
)

// Request is one request observed by the server, recorded before any
// authorization or validation runs.
type Request struct {
	Method        string
	Path          string // Decoded path, without query.
	Email         string // The "email" query parameter, if any.
	Authorization string // Raw Authorization header.
}

// Server is the fake registry. Safe for concurrent use.
type Server struct {
	mu         sync.Mutex
	activities roster.Roster
	teachers   map[string][]byte // username -> bcrypt hash
	sessions   map[string]string // session ID -> username
	issuer     *tokenIssuer
	requests   []Request
	router     *mux.Router
	logger     *slog.Logger
}

// Config configures a Server.
type Config struct {
	// Roster is the initial roster. Copied; nil means DefaultRoster().
	Roster roster.Roster

	// Teachers maps username to plaintext password. Passwords are
	// bcrypt-hashed at construction. Nil means DefaultTeachers().
	Teachers map[string]string

	// Logger receives one debug record per request. Nil discards.
	Logger *slog.Logger

	// HashCost is the bcrypt cost. Zero means bcrypt.MinCost, which
	// keeps test setup fast.
	HashCost int
}

// DefaultTeachers returns the teacher account used by the backend's
// own tests.
func DefaultTeachers() map[string]string {
	return map[string]string{"teacher": "password123"}
}

// DefaultRoster returns a small seed roster.
func DefaultRoster() roster.Roster {
	return roster.Roster{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
	}
}

// New creates a Server from config.
func New(config Config) (*Server, error) {
	initial := config.Roster
	if initial == nil {
		initial = DefaultRoster()
	}
	teachers := config.Teachers
	if teachers == nil {
		teachers = DefaultTeachers()
	}
	cost := config.HashCost
	if cost == 0 {
		cost = bcrypt.MinCost
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	issuer, err := newTokenIssuer()
	if err != nil {
		return nil, err
	}

	server := &Server{
		activities: cloneRoster(initial),
		teachers:   make(map[string][]byte, len(teachers)),
		sessions:   make(map[string]string),
		issuer:     issuer,
		logger:     logger,
	}
	for username, password := range teachers {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, fmt.Errorf("registrytest: hashing password for %q: %w", username, err)
		}
		server.teachers[username] = hash
	}

	router := mux.NewRouter()
	// Match on the escaped path so activity names containing "/" stay
	// one segment; handlers unescape the variable themselves.
	router.UseEncodedPath()
	router.HandleFunc("/activities", server.handleActivities).Methods(http.MethodGet)
	router.HandleFunc("/activities/{name}/signup", server.handleSignup).Methods(http.MethodPost)
	router.HandleFunc("/activities/{name}/unregister", server.handleUnregister).Methods(http.MethodDelete)
	router.HandleFunc("/login", server.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/logout", server.handleLogout).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writeDetail(writer, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writeDetail(writer, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	server.router = router

	return server, nil
}

// ServeHTTP implements http.Handler.
func (server *Server) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	server.mu.Lock()
	server.requests = append(server.requests, Request{
		Method:        request.Method,
		Path:          request.URL.Path,
		Email:         request.URL.Query().Get("email"),
		Authorization: request.Header.Get("Authorization"),
	})
	server.mu.Unlock()

	server.logger.Debug("registry request", "method", request.Method, "path", request.URL.Path)
	server.router.ServeHTTP(writer, request)
}

// Requests returns a copy of every request seen so far.
func (server *Server) Requests() []Request {
	server.mu.Lock()
	defer server.mu.Unlock()
	return slices.Clone(server.requests)
}

// CountRequests returns how many recorded requests match method and
// path.
func (server *Server) CountRequests(method, path string) int {
	server.mu.Lock()
	defer server.mu.Unlock()
	count := 0
	for _, request := range server.requests {
		if request.Method == method && request.Path == path {
			count++
		}
	}
	return count
}

// ResetRequests clears the request log.
func (server *Server) ResetRequests() {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.requests = nil
}

// Roster returns a copy of the current roster.
func (server *Server) Roster() roster.Roster {
	server.mu.Lock()
	defer server.mu.Unlock()
	return cloneRoster(server.activities)
}

// SessionCount returns the number of live sessions.
func (server *Server) SessionCount() int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return len(server.sessions)
}

// ValidToken reports whether token is a well-signed token for a live
// session.
func (server *Server) ValidToken(token string) bool {
	_, ok := server.lookup(token)
	return ok
}

func (server *Server) handleActivities(writer http.ResponseWriter, _ *http.Request) {
	server.mu.Lock()
	payload, err := encodeRoster(server.activities)
	server.mu.Unlock()
	if err != nil {
		writeDetail(writer, http.StatusInternalServerError, err.Error())
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.Write(payload)
}

func (server *Server) handleSignup(writer http.ResponseWriter, request *http.Request) {
	name, email, ok := server.authorizeMutation(writer, request)
	if !ok {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	index := server.indexOf(name)
	if index < 0 {
		writeDetail(writer, http.StatusNotFound, "Activity not found")
		return
	}
	activity := &server.activities[index]
	if activity.HasParticipant(email) {
		writeDetail(writer, http.StatusBadRequest, "Student is already signed up")
		return
	}
	if activity.SpotsLeft() <= 0 {
		writeDetail(writer, http.StatusBadRequest, "Activity is full")
		return
	}
	activity.Participants = append(activity.Participants, email)
	writeMessage(writer, fmt.Sprintf("Signed up %s for %s", email, name))
}

func (server *Server) handleUnregister(writer http.ResponseWriter, request *http.Request) {
	name, email, ok := server.authorizeMutation(writer, request)
	if !ok {
		return
	}

	server.mu.Lock()
	defer server.mu.Unlock()

	index := server.indexOf(name)
	if index < 0 {
		writeDetail(writer, http.StatusNotFound, "Activity not found")
		return
	}
	activity := &server.activities[index]
	position := slices.Index(activity.Participants, email)
	if position < 0 {
		writeDetail(writer, http.StatusBadRequest, "Student is not signed up for this activity")
		return
	}
	activity.Participants = slices.Delete(activity.Participants, position, position+1)
	writeMessage(writer, fmt.Sprintf("Unregistered %s from %s", email, name))
}

// authorizeMutation checks the bearer token and extracts the activity
// name and email. On failure it has already written the response.
func (server *Server) authorizeMutation(writer http.ResponseWriter, request *http.Request) (string, string, bool) {
	if _, ok := server.sessionFor(request); !ok {
		writeDetail(writer, http.StatusForbidden, "Teacher login required")
		return "", "", false
	}

	name, err := url.PathUnescape(mux.Vars(request)["name"])
	if err != nil {
		writeDetail(writer, http.StatusBadRequest, "Invalid activity name")
		return "", "", false
	}

	email := request.URL.Query().Get("email")
	if email == "" {
		writeJSON(writer, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{
				"loc":  []string{"query", "email"},
				"msg":  "Field required",
				"type": "missing",
			}},
		})
		return "", "", false
	}
	return name, email, true
}

func (server *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
		writeDetail(writer, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	server.mu.Lock()
	hash, known := server.teachers[credentials.Username]
	server.mu.Unlock()

	if !known || bcrypt.CompareHashAndPassword(hash, []byte(credentials.Password)) != nil {
		writeDetail(writer, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, sessionID, err := server.issuer.issue(credentials.Username, time.Now())
	if err != nil {
		writeDetail(writer, http.StatusInternalServerError, err.Error())
		return
	}
	server.mu.Lock()
	server.sessions[sessionID] = credentials.Username
	server.mu.Unlock()
	server.logger.Info("teacher logged in", "username", credentials.Username)

	writeJSON(writer, http.StatusOK, map[string]string{"token": token})
}

func (server *Server) handleLogout(writer http.ResponseWriter, request *http.Request) {
	// Logout always succeeds; an unknown or malformed token has no
	// session to end.
	if sessionID, err := server.issuer.verify(bearerToken(request)); err == nil {
		server.mu.Lock()
		delete(server.sessions, sessionID)
		server.mu.Unlock()
	}
	writeMessage(writer, "Logged out")
}

func (server *Server) sessionFor(request *http.Request) (string, bool) {
	return server.lookup(bearerToken(request))
}

// lookup returns the username owning token's session.
func (server *Server) lookup(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	sessionID, err := server.issuer.verify(token)
	if err != nil {
		return "", false
	}
	server.mu.Lock()
	defer server.mu.Unlock()
	username, ok := server.sessions[sessionID]
	return username, ok
}

// indexOf returns the position of the named activity. Caller holds mu.
func (server *Server) indexOf(name string) int {
	for index, activity := range server.activities {
		if activity.Name == name {
			return index
		}
	}
	return -1
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// encodeRoster writes the roster as a JSON object whose keys appear in
// roster order. encoding/json sorts map keys, so the object is
// assembled by hand from individually marshaled members.
func encodeRoster(activities roster.Roster) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, activity := range activities {
		if index > 0 {
			buffer.WriteByte(',')
		}
		key, err := json.Marshal(activity.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(activity)
		if err != nil {
			return nil, err
		}
		buffer.Write(key)
		buffer.WriteByte(':')
		buffer.Write(value)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func cloneRoster(source roster.Roster) roster.Roster {
	cloned := make(roster.Roster, len(source))
	for index, activity := range source {
		activity.Participants = slices.Clone(activity.Participants)
		if activity.Participants == nil {
			activity.Participants = []string{}
		}
		cloned[index] = activity
	}
	return cloned
}

func writeMessage(writer http.ResponseWriter, message string) {
	writeJSON(writer, http.StatusOK, map[string]string{"message": message})
}

func writeDetail(writer http.ResponseWriter, status int, detail string) {
	writeJSON(writer, status, map[string]string{"detail": detail})
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}
