// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tokenstore holds the teacher's bearer token between runs.
//
// A Store is a single slot: at most one token, replaced by Set and
// removed by Clear. Any non-empty value counts as authenticated; the
// token is opaque to the client and validated only by the registry.
//
// [File] persists slots for several registries in one JSON document,
// one slot per registry origin (scheme://host[:port]), so pointing the
// viewer at a different server never presents another server's token.
// [Memory] keeps the slot in process memory for tests and ephemeral
// sessions.
//
// The file tolerates comments and trailing commas, so it can be edited
// by hand. Opened [WithIdentity], it is instead an ASCII-armored age
// file encrypted to that identity.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/roster/lib/secret"
)

// ErrEmptyToken is returned by Set when given an empty token. Use
// Clear to remove a token.
var ErrEmptyToken = errors.New("tokenstore: empty token")

// Store is a single-token credential slot.
type Store interface {
	// Get returns the stored token and true, or "" and false when the
	// slot is empty. Never performs I/O.
	Get() (string, bool)

	// Set stores token, replacing any previous value.
	Set(token string) error

	// Clear removes the token. Clearing an empty slot is not an error.
	Clear() error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	token string
}

// NewMemory returns a Memory store holding token ("" for empty).
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *Memory) Set(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// fileFormat is the on-disk document.
type fileFormat struct {
	// Tokens maps registry origin to bearer token.
	Tokens map[string]string `json:"tokens"`
}

// File is a Store backed by a JSON file shared across origins. The file
// is read once by OpenFile; every Set and Clear rewrites it. Slots for
// other origins are carried through unchanged.
type File struct {
	mu     sync.Mutex
	path   string
	origin string
	tokens map[string]string

	// identity, when set, encrypts the file at rest.
	identity *age.X25519Identity
}

// FileOption configures OpenFile.
type FileOption func(*File)

// WithIdentity stores the file encrypted to identity and decrypts it
// with the same identity on open.
func WithIdentity(identity *age.X25519Identity) FileOption {
	return func(f *File) { f.identity = identity }
}

// DefaultPath returns $XDG_STATE_HOME/bureau/roster-credentials.json,
// falling back to ~/.local/state when XDG_STATE_HOME is unset.
func DefaultPath() string {
	stateDirectory := os.Getenv("XDG_STATE_HOME")
	if stateDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "bureau-roster-credentials.json")
		}
		stateDirectory = filepath.Join(homeDirectory, ".local", "state")
	}
	return filepath.Join(stateDirectory, "bureau", "roster-credentials.json")
}

// OpenFile loads the credentials file at path and returns the slot for
// origin. A missing file is an empty store; it is created on the first
// Set. An unreadable, undecryptable, or unparsable file is an error.
func OpenFile(path, origin string, options ...FileOption) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("tokenstore: path is required")
	}
	if origin == "" {
		return nil, fmt.Errorf("tokenstore: origin is required")
	}

	store := &File{path: path, origin: origin, tokens: make(map[string]string)}
	for _, option := range options {
		option(store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("tokenstore: reading %s: %w", path, err)
	}

	if store.identity != nil {
		plaintext, err := unseal(data, store.identity)
		if err != nil {
			return nil, fmt.Errorf("tokenstore: decrypting %s: %w", path, err)
		}
		data = plaintext
	}

	standard := jsonc.ToJSON(data)
	var document fileFormat
	parseError := json.Unmarshal(standard, &document)
	secret.Zero(data)
	secret.Zero(standard)
	if parseError != nil {
		return nil, fmt.Errorf("tokenstore: parsing %s: %w", path, parseError)
	}
	for slotOrigin, token := range document.Tokens {
		if token != "" {
			store.tokens[slotOrigin] = token
		}
	}
	return store, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Origin returns the origin whose slot this store exposes.
func (f *File) Origin() string { return f.origin }

func (f *File) Get() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[f.origin]
	return token, ok
}

func (f *File) Set(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, had := f.tokens[f.origin]
	f.tokens[f.origin] = token
	if err := f.save(); err != nil {
		if had {
			f.tokens[f.origin] = previous
		} else {
			delete(f.tokens, f.origin)
		}
		return err
	}
	return nil
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, had := f.tokens[f.origin]
	if !had {
		return nil
	}
	delete(f.tokens, f.origin)
	if err := f.save(); err != nil {
		f.tokens[f.origin] = previous
		return err
	}
	return nil
}

// save writes the document with mode 0600, creating the parent
// directory with mode 0700. The write goes to a temporary file that is
// renamed into place, so a crash never leaves a truncated document.
// Caller holds mu.
func (f *File) save() error {
	data, err := json.MarshalIndent(fileFormat{Tokens: f.tokens}, "", "  ")
	if err != nil {
		return fmt.Errorf("tokenstore: encoding credentials: %w", err)
	}
	data = append(data, '\n')
	defer secret.Zero(data)

	if f.identity != nil {
		sealed, err := seal(data, f.identity.Recipient())
		if err != nil {
			return fmt.Errorf("tokenstore: encrypting credentials: %w", err)
		}
		data = sealed
	}

	directory := filepath.Dir(f.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("tokenstore: creating directory %s: %w", directory, err)
	}

	temporary, err := os.CreateTemp(directory, ".roster-credentials-*")
	if err != nil {
		return fmt.Errorf("tokenstore: creating temporary file in %s: %w", directory, err)
	}
	temporaryPath := temporary.Name()
	defer os.Remove(temporaryPath)

	if err := temporary.Chmod(0600); err != nil {
		temporary.Close()
		return fmt.Errorf("tokenstore: setting mode on %s: %w", temporaryPath, err)
	}
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("tokenstore: writing %s: %w", temporaryPath, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("tokenstore: closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, f.path); err != nil {
		return fmt.Errorf("tokenstore: replacing %s: %w", f.path, err)
	}
	return nil
}
