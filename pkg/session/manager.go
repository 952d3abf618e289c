// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package session owns the authenticated/anonymous state of the client.
//
// The Manager holds the session credential, persists it through a
// CredentialStore, and publishes the authenticated flag as a replay-one
// stream consumed by the route guard and the UI. The credential itself
// lives in a memguard enclave between reads so it is never left lying
// around in plain process memory.
//
// Invariant: the session is authenticated exactly when a credential is
// present. Login and Logout are the only mutators; the asynchronous
// network exchange always precedes the in-memory mutation, so observers
// never see a stale authenticated flag during an in-flight login.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/storefront"
	"github.com/AleutianAI/vitrine/pkg/stream"
)

// CredentialKey is the fixed key the credential is persisted under.
const CredentialKey = "vitrine_token"

// Session is a synchronous read of the current state.
type Session struct {
	// Authenticated reports whether a credential is present.
	Authenticated bool

	// Credential is the opaque bearer token, empty when anonymous.
	Credential string
}

// Authenticator performs the external login exchange. Implemented by
// *storefront.Client.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (storefront.TokenResponse, error)
}

// Manager is the session state machine.
//
// Construct with New; one Manager serves the whole process and is owned
// by the application root, injected into consumers. Safe for concurrent
// use, though by construction the UI issues at most one mutating call at
// a time.
type Manager struct {
	store CredentialStore
	auth  Authenticator
	log   *logging.Logger

	// authenticated is the published replay-one flag. The enclave is
	// only ever swapped together with a Set on this value, under its
	// internal lock ordering: enclave first, then publish.
	authenticated *stream.Value[bool]

	// mu guards enclave; mutations come from the UI thread but reads
	// happen on request goroutines inside the transport.
	mu sync.Mutex

	// enclave holds the credential bytes encrypted in memory; nil when
	// anonymous.
	enclave *memguard.Enclave
}

// New constructs a Manager, reading any persisted credential so a
// process restart resumes the prior session.
func New(store CredentialStore, auth Authenticator, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Default()
	}
	m := &Manager{
		store: store,
		auth:  auth,
		log:   log,
	}
	token, ok := store.Get(CredentialKey)
	if ok {
		m.enclave = memguard.NewEnclave([]byte(token))
	}
	m.authenticated = stream.NewValue(ok)
	log.Info("session initialized", "authenticated", ok)
	return m
}

// Current returns a synchronous read of the session state.
func (m *Manager) Current() Session {
	token, ok := m.CredentialForRequest()
	return Session{Authenticated: ok, Credential: token}
}

// Observe subscribes to the authenticated flag: the current value is
// delivered immediately, then every transition. The returned cancel
// func removes the subscription.
func (m *Manager) Observe(fn func(bool)) (cancel func()) {
	return m.authenticated.Subscribe(fn)
}

// Login performs the authentication exchange.
//
// On success the credential is persisted, the in-memory state flips to
// authenticated, and true is emitted to all observers — in that order.
// On failure the state is left exactly as it was and the error is
// returned to the caller; a *storefront.AuthError means the credentials
// were rejected. Login never retries.
func (m *Manager) Login(ctx context.Context, identifier, secret string) error {
	token, err := m.auth.Login(ctx, identifier, secret)
	if err != nil {
		return err
	}
	if token.AccessToken == "" {
		return fmt.Errorf("login returned an empty credential")
	}

	if err := m.store.Set(CredentialKey, token.AccessToken); err != nil {
		// Keep the in-memory session; the user just won't survive a
		// restart. Surfacing this as a login failure would discard a
		// perfectly valid exchange.
		m.log.Warn("credential persistence failed", "error", err)
	}
	m.mu.Lock()
	m.enclave = memguard.NewEnclave([]byte(token.AccessToken))
	m.mu.Unlock()
	m.authenticated.Set(true)
	m.log.Info("session authenticated", "identifier", identifier)
	return nil
}

// Logout clears the persisted credential and returns the session to
// anonymous. Safe to call when already anonymous.
func (m *Manager) Logout() {
	if err := m.store.Remove(CredentialKey); err != nil {
		m.log.Warn("credential removal failed", "error", err)
	}
	m.mu.Lock()
	m.enclave = nil
	m.mu.Unlock()
	m.authenticated.Set(false)
	m.log.Info("session cleared")
}

// CredentialForRequest returns the current credential for the outbound
// request boundary; ("", false) when anonymous.
func (m *Manager) CredentialForRequest() (string, bool) {
	m.mu.Lock()
	enclave := m.enclave
	m.mu.Unlock()
	if enclave == nil {
		return "", false
	}
	buf, err := enclave.Open()
	if err != nil {
		// An unreadable enclave is indistinguishable from no
		// credential; requests go out anonymous.
		m.log.Error("credential enclave unreadable", "error", err)
		return "", false
	}
	defer buf.Destroy()
	return string(buf.Bytes()), true
}

// Ensure Manager satisfies the boundary consumed by the transport.
var _ storefront.CredentialSource = (*Manager)(nil)
