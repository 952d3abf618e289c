// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/AleutianAI/vitrine/cmd/vitrine/config"
	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/session"
	"github.com/AleutianAI/vitrine/pkg/storefront"
	"github.com/AleutianAI/vitrine/pkg/ux"
)

// getAPIBaseURL returns the storefront API address.
func getAPIBaseURL() string {
	// 1. Priority: Environment Variable (Used by Tests & Docker overrides)
	if url := os.Getenv("VITRINE_API_URL"); url != "" {
		return url
	}
	// 2. Config file value
	if config.Global.API.BaseURL != "" {
		return config.Global.API.BaseURL
	}
	// 3. Default
	return "http://localhost:8000"
}

// credentialRelay breaks the construction cycle between the API client
// and the session manager: the client needs a credential source before
// the manager exists, and the manager needs the client to authenticate.
type credentialRelay struct {
	mu  sync.RWMutex
	mgr *session.Manager
}

func (r *credentialRelay) bind(mgr *session.Manager) {
	r.mu.Lock()
	r.mgr = mgr
	r.mu.Unlock()
}

func (r *credentialRelay) CredentialForRequest() (string, bool) {
	r.mu.RLock()
	mgr := r.mgr
	r.mu.RUnlock()
	if mgr == nil {
		return "", false
	}
	return mgr.CredentialForRequest()
}

// app bundles the wired client stack every command starts from.
type app struct {
	log     *logging.Logger
	client  *storefront.Client
	session *session.Manager
}

// newApp wires the storefront client and the session manager against
// the loaded configuration.
func newApp() *app {
	log := logging.Default()

	relay := &credentialRelay{}
	client := storefront.New(storefront.Config{
		BaseURL: getAPIBaseURL(),
		Timeout: config.Global.API.Timeout(),
	}, relay, log)

	store := session.NewFileStore(config.Global.Store.Dir)
	mgr := session.New(store, client, log)
	relay.bind(mgr)

	return &app{log: log, client: client, session: mgr}
}

// requireLogin enforces the signed-in guard for back-office commands.
func (a *app) requireLogin() error {
	if a.session.Current().Authenticated {
		return nil
	}
	ux.Error("You are not signed in.")
	ux.Info("Run 'vitrine login' first.")
	return errors.New("authentication required")
}

// commandErrorMessage reduces a client error to one user-facing line.
func commandErrorMessage(err error) string {
	var authErr *storefront.AuthError
	var apiErr *storefront.APIError
	var netErr *storefront.NetworkError

	switch {
	case errors.As(err, &authErr):
		return "Incorrect username or password."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("The server rejected the request (status %d).", apiErr.StatusCode)
	case errors.As(err, &netErr):
		return "Could not reach the marketplace. Is the server running?"
	default:
		return err.Error()
	}
}

// renderCommandError turns client errors into user-facing messages.
// Returns the error so cobra exits non-zero.
func renderCommandError(err error) error {
	ux.Error(commandErrorMessage(err))

	var netErr *storefront.NetworkError
	if errors.As(err, &netErr) {
		ux.Muted("  " + netErr.Error())
	}
	return err
}

// parseOrderItems converts repeated id=quantity flags to order lines.
func parseOrderItems(raw []string) ([]catalog.OrderItem, error) {
	if len(raw) == 0 {
		return nil, errors.New("no items given: use --item id=quantity at least once")
	}

	items := make([]catalog.OrderItem, 0, len(raw))
	for _, entry := range raw {
		id, qty, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("malformed item %q: expected id=quantity", entry)
		}
		itemID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil || itemID <= 0 {
			return nil, fmt.Errorf("malformed item %q: bad product id", entry)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || quantity <= 0 {
			return nil, fmt.Errorf("malformed item %q: quantity must be a positive number", entry)
		}
		items = append(items, catalog.OrderItem{ItemID: itemID, Quantity: quantity})
	}
	return items, nil
}

// buildManualFilter assembles a filter from the search command's flags.
func buildManualFilter() catalog.Filter {
	f := catalog.Filter{Category: filterCategory}
	if filterPriceMin > 0 {
		f.PriceMin = catalog.Float(filterPriceMin)
	}
	if filterPriceMax > 0 {
		f.PriceMax = catalog.Float(filterPriceMax)
	}
	return f
}
