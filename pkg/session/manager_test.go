// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/storefront"
)

// fakeAuth is an Authenticator with scripted outcomes.
type fakeAuth struct {
	token string
	err   error
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (storefront.TokenResponse, error) {
	f.calls++
	if f.err != nil {
		return storefront.TokenResponse{}, f.err
	}
	return storefront.TokenResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func TestManager_StartsAnonymousWithEmptyStore(t *testing.T) {
	m := New(NewMemStore(), &fakeAuth{}, quietLogger())

	s := m.Current()
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.Credential)

	_, ok := m.CredentialForRequest()
	assert.False(t, ok)
}

func TestManager_ResumesPersistedSession(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set(CredentialKey, "tok-persisted"))

	m := New(store, &fakeAuth{}, quietLogger())

	s := m.Current()
	assert.True(t, s.Authenticated)
	assert.Equal(t, "tok-persisted", s.Credential)
}

func TestManager_Login_Success(t *testing.T) {
	store := NewMemStore()
	m := New(store, &fakeAuth{token: "tok-1"}, quietLogger())

	var transitions []bool
	cancel := m.Observe(func(v bool) { transitions = append(transitions, v) })
	defer cancel()

	require.NoError(t, m.Login(context.Background(), "ong@example.org", "s3cret"))

	assert.Equal(t, []bool{false, true}, transitions,
		"observers see the replayed false then the login transition")

	token, ok := m.CredentialForRequest()
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)

	persisted, ok := store.Get(CredentialKey)
	require.True(t, ok, "login must write the credential through to the store")
	assert.Equal(t, "tok-1", persisted)

	// A fresh manager over the same store resumes authenticated.
	fresh := New(store, &fakeAuth{}, quietLogger())
	assert.True(t, fresh.Current().Authenticated)
}

func TestManager_Login_RejectedLeavesStateIntact(t *testing.T) {
	store := NewMemStore()
	authErr := &storefront.AuthError{Identifier: "ong@example.org"}
	m := New(store, &fakeAuth{err: authErr}, quietLogger())

	var transitions []bool
	cancel := m.Observe(func(v bool) { transitions = append(transitions, v) })
	defer cancel()

	err := m.Login(context.Background(), "ong@example.org", "wrong")

	var got *storefront.AuthError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, []bool{false}, transitions, "no transition on failure")
	assert.False(t, m.Current().Authenticated)

	_, ok := store.Get(CredentialKey)
	assert.False(t, ok, "nothing persisted on failure")
}

func TestManager_Login_KeepsPriorCredentialOnFailure(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set(CredentialKey, "tok-old"))

	auth := &fakeAuth{err: errors.New("backend down")}
	m := New(store, auth, quietLogger())

	require.Error(t, m.Login(context.Background(), "u", "p"))

	s := m.Current()
	assert.True(t, s.Authenticated)
	assert.Equal(t, "tok-old", s.Credential)
}

func TestManager_Logout(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Set(CredentialKey, "tok-1"))
	m := New(store, &fakeAuth{}, quietLogger())

	var last bool
	cancel := m.Observe(func(v bool) { last = v })
	defer cancel()

	m.Logout()

	assert.False(t, last)
	assert.False(t, m.Current().Authenticated)
	_, ok := store.Get(CredentialKey)
	assert.False(t, ok)

	// Idempotent: logging out again is safe.
	m.Logout()
	assert.False(t, m.Current().Authenticated)
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, ok := store.Get(CredentialKey)
	assert.False(t, ok)

	require.NoError(t, store.Set(CredentialKey, "tok-file"))
	got, ok := store.Get(CredentialKey)
	require.True(t, ok)
	assert.Equal(t, "tok-file", got)

	require.NoError(t, store.Remove(CredentialKey))
	_, ok = store.Get(CredentialKey)
	assert.False(t, ok)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove(CredentialKey))
}

func TestNoopStore(t *testing.T) {
	var store NoopStore

	require.NoError(t, store.Set("k", "v"))
	_, ok := store.Get("k")
	assert.False(t, ok, "no-op store always reports absent")
	require.NoError(t, store.Remove("k"))
}
