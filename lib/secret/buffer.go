// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// ErrEmpty is returned when constructing a Buffer from an empty value.
var ErrEmpty = errors.New("secret: value is empty")

// Buffer holds one secret value. It must not be copied after creation.
// After Close, String and Bytes panic.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	mapped bool
	locked bool
	closed bool
}

// NewFromString copies value into a new Buffer. The caller's string
// cannot be zeroed (Go strings are immutable); callers that have the
// value as bytes should prefer NewFromBytes.
func NewFromString(value string) (*Buffer, error) {
	if value == "" {
		return nil, ErrEmpty
	}
	buffer := allocate(len(value))
	copy(buffer.data, value)
	return buffer, nil
}

// NewFromBytes copies source into a new Buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, ErrEmpty
	}
	buffer := allocate(len(source))
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// allocate returns a buffer of the given size, preferring locked mmap
// memory and falling back to the heap.
func allocate(size int) *Buffer {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return &Buffer{data: make([]byte, size)}
	}
	buffer := &Buffer{data: data, mapped: true}
	if unix.Mlock(data) == nil {
		buffer.locked = true
		// Best effort: keep the page out of core dumps.
		_ = unix.Madvise(data, unix.MADV_DONTDUMP)
	}
	return buffer
}

// Locked reports whether the value lives in mlock'd memory.
func (buffer *Buffer) Locked() bool {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return buffer.locked
}

// Len returns the size of the value in bytes.
func (buffer *Buffer) Len() int {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	return len(buffer.data)
}

// Bytes returns the value. The slice aliases the buffer's memory and
// becomes invalid after Close.
func (buffer *Buffer) Bytes() []byte {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	if buffer.closed {
		panic("secret: read from closed buffer")
	}
	return buffer.data
}

// String returns a heap copy of the value, for API boundaries that
// need a string (JSON request bodies).
func (buffer *Buffer) String() string {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()
	if buffer.closed {
		panic("secret: read from closed buffer")
	}
	return string(buffer.data)
}

// Close zeroes the value and releases the memory. Idempotent.
func (buffer *Buffer) Close() error {
	buffer.mu.Lock()
	defer buffer.mu.Unlock()

	if buffer.closed {
		return nil
	}
	buffer.closed = true
	Zero(buffer.data)

	var closeErr error
	if buffer.locked {
		if err := unix.Munlock(buffer.data); err != nil {
			closeErr = fmt.Errorf("secret: munlock: %w", err)
		}
	}
	if buffer.mapped {
		if err := unix.Munmap(buffer.data); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("secret: munmap: %w", err)
		}
	}
	buffer.data = nil
	return closeErr
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
