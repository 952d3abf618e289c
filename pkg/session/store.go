// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialStore is the persistence boundary for the session
// credential: an opaque key-value get/set/remove used under one fixed
// key. Implementations must be no-op-safe — contexts without usable
// persistence report absent rather than failing.
type CredentialStore interface {
	// Get returns the stored value and whether one is present.
	Get(key string) (string, bool)

	// Set persists the value under key.
	Set(key, value string) error

	// Remove erases the value under key. Removing an absent key is not
	// an error.
	Remove(key string) error
}

// =============================================================================
// File store
// =============================================================================

// FileStore persists credentials as single-value files in a directory,
// one file per key, created with owner-only permissions.
//
// The default directory is ~/.vitrine.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. An empty dir selects
// ~/.vitrine.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".vitrine")
		} else {
			dir = ".vitrine"
		}
	}
	return &FileStore{dir: dir}
}

// Get reads the value stored under key.
func (s *FileStore) Get(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}

// Set writes the value under key, creating the directory on demand.
func (s *FileStore) Set(key, value string) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, key), []byte(value+"\n"), 0600)
}

// Remove deletes the file for key; an absent file is not an error.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// =============================================================================
// No-op store
// =============================================================================

// NoopStore is the credential store for contexts without persistence
// (scripted or sandboxed runs): Get reports absent, Set and Remove
// succeed without effect.
type NoopStore struct{}

// Get always reports absent.
func (NoopStore) Get(string) (string, bool) { return "", false }

// Set is a no-op.
func (NoopStore) Set(string, string) error { return nil }

// Remove is a no-op.
func (NoopStore) Remove(string) error { return nil }

// =============================================================================
// In-memory store
// =============================================================================

// MemStore is an in-memory credential store for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Get returns the stored value and whether one is present.
func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores the value under key.
func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes the value under key.
func (s *MemStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
