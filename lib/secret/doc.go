// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds short-lived sensitive values, such as the
// teacher password typed into the login prompt, outside the Go heap.
//
// [Buffer] copies the value into an anonymous mmap region and locks it
// into RAM so it does not reach swap. Close zeroes and unmaps the
// region. When the kernel refuses the lock (containers commonly run
// with a zero RLIMIT_MEMLOCK), the buffer falls back to an ordinary
// heap slice that is still zeroed on Close; [Buffer.Locked] reports
// which case applies.
//
// Depends on golang.org/x/sys/unix. No Bureau-internal dependencies.
package secret
