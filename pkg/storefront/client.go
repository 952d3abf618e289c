// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storefront is the typed REST client for the marketplace API.
//
// It covers the three surfaces the CLI consumes:
//
//   - the login exchange (POST /auth/login, form-encoded)
//   - the public catalog (products, categories, AI search, orders)
//   - the authenticated catalog CRUD (/products)
//
// The client is the process's single outbound boundary. Authentication
// is applied uniformly by authTransport, never per call. Calls return
// the error taxonomy from errors.go; the client never retries — retry is
// always a fresh user action.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/logging"
)

// DefaultPageSize is the catalog page size the client requests when the
// caller does not specify one.
const DefaultPageSize = 50

// Config configures the Client.
type Config struct {
	// BaseURL is the API root, resolved once at startup
	// (e.g. "http://localhost:8000"). Required.
	BaseURL string

	// Timeout bounds every request. Zero means 30s.
	Timeout time.Duration
}

// TokenResponse is the successful login exchange payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AISearchResult is the interpretation returned by the AI search
// endpoint: a human-readable summary plus the structured filters the
// client should apply.
type AISearchResult struct {
	Interpretation string         `json:"interpretation"`
	AppliedFilters catalog.Filter `json:"applied_filters"`
	IsFallback     bool           `json:"is_fallback"`
}

// OrderConfirmation is the response to a submitted order.
type OrderConfirmation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is the storefront API client.
//
// Construct with New. Client is safe for concurrent use; it holds no
// per-call state.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logging.Logger
}

// New creates a Client.
//
// creds may be nil for purely public use; when set, every non-login
// request carries the current credential as a bearer header.
func New(cfg Config, creds CredentialSource, log *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &authTransport{creds: creds},
		},
		log: log,
	}
}

// =============================================================================
// Auth
// =============================================================================

// Login performs the credential exchange.
//
// The request is form-encoded ({username, password}) as the API expects.
// A 401 maps to *AuthError; transport failures map to *NetworkError.
// Login does not mutate any session state — that is session.Manager's
// job, which calls this and persists the token on success.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return TokenResponse{}, &NetworkError{Operation: "login", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		c.log.Info("login rejected", "username", username)
		return TokenResponse{}, &AuthError{Identifier: username, Detail: strings.TrimSpace(string(body))}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return TokenResponse{}, newAPIError("login", resp.StatusCode, body)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return TokenResponse{}, fmt.Errorf("decode login response: %w", err)
	}
	c.log.Info("login succeeded", "username", username, "token_present", token.AccessToken != "")
	return token, nil
}

// =============================================================================
// Public catalog
// =============================================================================

// PublicProducts fetches the public catalog page matching the filter.
// limit <= 0 uses DefaultPageSize; skip < 0 is treated as 0.
func (c *Client) PublicProducts(ctx context.Context, f catalog.Filter, skip, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if skip < 0 {
		skip = 0
	}
	params := f.QueryValues()
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))

	var products []catalog.Product
	if err := c.getJSON(ctx, "list public products", "/public/products?"+params.Encode(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Categories fetches the distinct category names used by the manual
// filter form.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.getJSON(ctx, "list categories", "/public/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SearchAI submits a natural-language query for interpretation.
//
// The caller decides what to do with a failure; by policy (degraded
// mode) the query composition engine falls back to using the raw text as
// a plain search term rather than surfacing the error.
func (c *Client) SearchAI(ctx context.Context, query string) (AISearchResult, error) {
	var result AISearchResult
	err := c.postJSON(ctx, "ai search", "/public/search-ai",
		map[string]string{"query": query}, &result)
	if err != nil {
		c.log.Warn("ai search failed", "error", err)
		return AISearchResult{}, err
	}
	c.log.Info("ai search interpreted",
		"is_fallback", result.IsFallback,
		"interpretation", result.Interpretation,
	)
	return result, nil
}

// CreateOrder submits the cart snapshot as an order.
func (c *Client) CreateOrder(ctx context.Context, items []catalog.OrderItem) (OrderConfirmation, error) {
	var confirmation OrderConfirmation
	payload := map[string][]catalog.OrderItem{"items": items}
	if err := c.postJSON(ctx, "create order", "/public/orders", payload, &confirmation); err != nil {
		return OrderConfirmation{}, err
	}
	c.log.Info("order created", "order_id", confirmation.ID, "lines", len(items))
	return confirmation, nil
}

// =============================================================================
// Authenticated catalog CRUD
// =============================================================================

// ListProducts fetches the authenticated organization's products.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.getJSON(ctx, "list products", "/products/", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	var product catalog.Product
	if err := c.getJSON(ctx, "get product", fmt.Sprintf("/products/%d", id), &product); err != nil {
		return catalog.Product{}, err
	}
	return product, nil
}

// CreateProduct creates a catalog item. The payload is validated
// locally before any network traffic.
func (c *Client) CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	if err := input.Validate(); err != nil {
		return catalog.Product{}, err
	}
	var product catalog.Product
	if err := c.postJSON(ctx, "create product", "/products/", input, &product); err != nil {
		return catalog.Product{}, err
	}
	return product, nil
}

// UpdateProduct replaces a catalog item. The payload is validated
// locally before any network traffic.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input catalog.ProductInput) (catalog.Product, error) {
	if err := input.Validate(); err != nil {
		return catalog.Product{}, err
	}
	var product catalog.Product
	err := c.doJSON(ctx, http.MethodPut, "update product",
		fmt.Sprintf("/products/%d", id), input, &product)
	if err != nil {
		return catalog.Product{}, err
	}
	return product, nil
}

// DeleteProduct removes a catalog item.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "delete product",
		fmt.Sprintf("/products/%d", id), nil, nil)
}

// =============================================================================
// Internal helpers
// =============================================================================

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, op, path, nil, out)
}

// postJSON performs a POST with a JSON body and decodes the response
// into out.
func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, op, path, body, out)
}

// doJSON is the single request/response path: JSON in, JSON out, error
// taxonomy applied uniformly.
func (c *Client) doJSON(ctx context.Context, method, op, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Operation: op, Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return newAPIError(op, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
