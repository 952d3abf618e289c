// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CredentialSource supplies the bearer credential attached to
// authenticated requests. Implemented by session.Manager.
type CredentialSource interface {
	// CredentialForRequest returns the current credential and whether
	// one is present. Anonymous sessions return ("", false).
	CredentialForRequest() (string, bool)
}

// authTransport is an http.RoundTripper that stamps outbound requests.
//
// # Description
//
// Every request gets an X-Request-Id. If the credential source holds a
// token and the target is not the login endpoint itself, the credential
// is attached as a bearer Authorization header. This keeps auth a
// cross-cutting concern: no per-call header logic anywhere else.
//
// # Assumptions
//
//   - creds.CredentialForRequest is cheap (an in-memory read).
//   - The login path is the only endpoint that must never carry a stale
//     credential.
type authTransport struct {
	// creds supplies the session credential; may be nil for clients
	// that only hit public endpoints.
	creds CredentialSource

	// base is the underlying transport; http.DefaultTransport when nil.
	base http.RoundTripper
}

// loginPath is the one endpoint the credential is never attached to.
const loginPath = "/auth/login"

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Request-Id", uuid.NewString())

	if t.creds != nil && !strings.HasSuffix(clone.URL.Path, loginPath) {
		if token, ok := t.creds.CredentialForRequest(); ok {
			clone.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return base.RoundTrip(clone)
}
