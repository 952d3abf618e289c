// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"fmt"
	"strings"
)

// AuthError reports a rejected login exchange.
//
// # Description
//
// Returned by Client.Login when the API rejects the credentials. It is
// surfaced to the login form as a user-visible message; the client never
// retries on its own.
//
// # Example
//
//	var authErr *AuthError
//	if errors.As(err, &authErr) {
//	    fmt.Println("incorrect email or password")
//	}
type AuthError struct {
	// Identifier is the login name that was rejected.
	Identifier string

	// Detail is the server-provided reason, if any.
	Detail string
}

// Error returns a formatted error message.
func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed for %s: %s", e.Identifier, e.Detail)
	}
	return fmt.Sprintf("authentication failed for %s", e.Identifier)
}

// APIError reports a non-success HTTP status from the storefront API.
//
// It carries the status code and a trimmed copy of the response body for
// diagnostics. Implements error and supports errors.As.
type APIError struct {
	// Operation is the logical call that failed (e.g. "create order").
	Operation string

	// StatusCode is the HTTP status returned by the API.
	StatusCode int

	// Body is the (trimmed) response body.
	Body string
}

// Error returns a formatted error message.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
}

// NetworkError reports a failed collaborator call: the request never
// produced an HTTP response (DNS, connect, timeout). State-affecting
// callers roll back to the pre-call value when they see one.
type NetworkError struct {
	// Operation is the logical call that failed.
	Operation string

	// Wrapped is the underlying transport error.
	Wrapped error
}

// Error returns a formatted error message.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Wrapped)
}

// Unwrap returns the underlying error so errors.Is works through the
// chain (e.g. context.DeadlineExceeded).
func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// newAPIError builds an APIError with a bounded, trimmed body.
func newAPIError(op string, status int, body []byte) *APIError {
	const maxBody = 512
	b := strings.TrimSpace(string(body))
	if len(b) > maxBody {
		b = b[:maxBody]
	}
	return &APIError{Operation: op, StatusCode: status, Body: b}
}
