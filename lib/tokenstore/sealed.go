// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tokenstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/bureau-foundation/roster/lib/secret"
)

// LoadIdentity reads an age X25519 identity file, as written by
// age-keygen. Comment lines are skipped; the first key is used.
func LoadIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: reading identity %s: %w", path, err)
	}
	buffer, err := secret.NewFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: protecting identity: %w", err)
	}
	defer buffer.Close()

	for line := range strings.Lines(buffer.String()) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identity, err := age.ParseX25519Identity(line)
		if err != nil {
			return nil, fmt.Errorf("tokenstore: parsing identity %s: %w", path, err)
		}
		return identity, nil
	}
	return nil, fmt.Errorf("tokenstore: no identity in %s", path)
}

// seal encrypts plaintext to recipient as an armored age file.
func seal(plaintext []byte, recipient age.Recipient) ([]byte, error) {
	var output bytes.Buffer
	armored := armor.NewWriter(&output)
	writer, err := age.Encrypt(armored, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	if err := armored.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// unseal decrypts an armored age file.
func unseal(data []byte, identity age.Identity) ([]byte, error) {
	reader, err := age.Decrypt(armor.NewReader(bytes.NewReader(data)), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
