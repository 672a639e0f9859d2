// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
)

func TestMemory(t *testing.T) {
	store := NewMemory("")
	if _, ok := store.Get(); ok {
		t.Fatal("new empty Memory reports a token")
	}

	if err := store.Set("tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set("tok-2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if token, ok := store.Get(); !ok || token != "tok-2" {
		t.Errorf("Get() = %q, %v; want tok-2, true", token, ok)
	}

	if err := store.Set(""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Set(\"\") error = %v, want ErrEmptyToken", err)
	}

	for range 2 {
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear: %v", err)
		}
	}
	if _, ok := store.Get(); ok {
		t.Error("Get() reports a token after Clear")
	}
}

func TestFileMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store, err := OpenFile(path, "http://localhost:8000")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("store for a missing file reports a token")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Clear on empty store created the file (stat error %v)", err)
	}
}

func TestFilePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bureau", "credentials.json")
	const origin = "http://localhost:8000"

	first, err := OpenFile(path, origin)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := first.Set("tok-abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second, err := OpenFile(path, origin)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if token, ok := second.Get(); !ok || token != "tok-abc" {
		t.Errorf("reopened Get() = %q, %v; want tok-abc, true", token, ok)
	}

	if err := second.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	third, err := OpenFile(path, origin)
	if err != nil {
		t.Fatalf("reopen after clear: %v", err)
	}
	if _, ok := third.Get(); ok {
		t.Error("token survived Clear across reopen")
	}
}

func TestFilePermissions(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "state")
	path := filepath.Join(directory, "credentials.json")
	store, err := OpenFile(path, "http://localhost:8000")
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := store.Set("tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if mode := fileInfo.Mode().Perm(); mode != 0600 {
		t.Errorf("file mode = %o, want 600", mode)
	}
	directoryInfo, err := os.Stat(directory)
	if err != nil {
		t.Fatalf("stat directory: %v", err)
	}
	if mode := directoryInfo.Mode().Perm(); mode&0077 != 0 {
		t.Errorf("directory mode = %o, want no group or other access", mode)
	}
}

func TestFileOriginsAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	local, err := OpenFile(path, "http://localhost:8000")
	if err != nil {
		t.Fatalf("OpenFile local: %v", err)
	}
	if err := local.Set("local-token"); err != nil {
		t.Fatalf("Set local: %v", err)
	}

	remote, err := OpenFile(path, "https://registry.school.edu")
	if err != nil {
		t.Fatalf("OpenFile remote: %v", err)
	}
	if _, ok := remote.Get(); ok {
		t.Fatal("remote origin sees the local origin's token")
	}
	if err := remote.Set("remote-token"); err != nil {
		t.Fatalf("Set remote: %v", err)
	}
	if err := remote.Clear(); err != nil {
		t.Fatalf("Clear remote: %v", err)
	}

	reopened, err := OpenFile(path, "http://localhost:8000")
	if err != nil {
		t.Fatalf("reopen local: %v", err)
	}
	if token, ok := reopened.Get(); !ok || token != "local-token" {
		t.Errorf("local Get() = %q, %v; want local-token, true", token, ok)
	}
}

func TestFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := OpenFile(path, "http://localhost:8000")
	if err == nil {
		t.Fatal("OpenFile succeeded on a corrupt file")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestOpenFileRequiresArguments(t *testing.T) {
	if _, err := OpenFile("", "http://x"); err == nil {
		t.Error("OpenFile with empty path succeeded")
	}
	if _, err := OpenFile(filepath.Join(t.TempDir(), "c.json"), ""); err == nil {
		t.Error("OpenFile with empty origin succeeded")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/lib/teacher-state")
	if got, want := DefaultPath(), "/var/lib/teacher-state/bureau/roster-credentials.json"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", "/home/frizzle")
	if got, want := DefaultPath(), "/home/frizzle/.local/state/bureau/roster-credentials.json"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
