// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query composes the effective catalog filter from two input
// sources — the manually edited filter form and the asynchronous
// AI-interpreted free-text query — and drives the product search with
// the result.
//
// # Description
//
// Two producers write into one canonical filter. Manual edits merge
// field-by-field and are debounced so typing does not re-issue a search
// per keystroke. An accepted AI interpretation replaces the canonical
// filter wholesale and clears the pending manual state so stale edits
// do not resurface; a manual edit after that merges onto the AI-derived
// filter. This asymmetry (AI replaces, manual merges, and switching
// modes discards the other's pending state) is intentional and matches
// the product behavior.
//
// Every canonical change issues a product search. Searches and
// interpretations are stamped with a monotonic generation counter at
// issue time; a completion is applied only if its stamp still equals
// the current counter, so a slow stale response can never overwrite the
// outcome of a newer one.
//
// # Limitations
//
//   - Cancellation is soft: superseded calls run to completion and
//     their results are discarded. Acceptable because they are
//     idempotent reads.
//   - The engine never retries; a failed search keeps the last
//     published products and reports through the error handler.
package query

import (
	"context"
	"sync"
	"time"

	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/storefront"
	"github.com/AleutianAI/vitrine/pkg/stream"
)

// DefaultDebounce is the quiescence window that coalesces rapid manual
// edits into a single downstream update.
const DefaultDebounce = 300 * time.Millisecond

// Backend is the slice of the storefront API the engine consumes.
// Implemented by *storefront.Client.
type Backend interface {
	PublicProducts(ctx context.Context, f catalog.Filter, skip, limit int) ([]catalog.Product, error)
	SearchAI(ctx context.Context, query string) (storefront.AISearchResult, error)
}

// Status is the lifecycle of the free-text interpretation.
type Status int

const (
	// StatusIdle means no free-text query is active.
	StatusIdle Status = iota

	// StatusInterpreting means an interpretation call is in flight.
	StatusInterpreting

	// StatusInterpreted means the last query was interpreted and its
	// filters are canonical.
	StatusInterpreted

	// StatusFailed means interpretation failed and the raw text is
	// being used as a plain search term (degraded mode).
	StatusFailed
)

// String returns the human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInterpreting:
		return "interpreting"
	case StatusInterpreted:
		return "interpreted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Interpretation is the published state of the free-text path.
type Interpretation struct {
	// Status is the lifecycle phase.
	Status Status

	// Query is the free text this state refers to ("" when idle).
	Query string

	// Summary is the server's human-readable reading of the query,
	// present when Status is StatusInterpreted.
	Summary string

	// IsFallback reports that the server itself fell back to a plain
	// search even though the call succeeded.
	IsFallback bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebounce overrides the manual-edit quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithClock injects a virtual clock for tests.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithSearchLimit sets the page size passed to every engine-issued
// product search. Zero means the backend's default.
func WithSearchLimit(n int) Option {
	return func(e *Engine) { e.limit = n }
}

// WithInitialProducts seeds the product stream, so subscribers replay
// a catalog page fetched before the engine existed instead of nil.
func WithInitialProducts(p []catalog.Product) Option {
	return func(e *Engine) { e.products = stream.NewValue(p) }
}

// WithLogger sets the engine's logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithErrorHandler registers the one-shot notification path for search
// failures. The handler runs off the caller's goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

// Engine is the query composition state machine. Construct with New.
type Engine struct {
	backend  Backend
	log      *logging.Logger
	clock    Clock
	debounce time.Duration
	limit    int
	onError  func(error)

	mu sync.Mutex

	// manual accumulates field-level edits awaiting the debounce flush.
	manual catalog.Patch

	// accepted is the canonical filter currently driving the search.
	accepted catalog.Filter

	// gen stamps outbound calls; a completion is applied only while
	// its stamp equals the current value.
	gen uint64

	// pending is the running debounce timer, nil when quiescent.
	pending Timer

	products *stream.Value[[]catalog.Product]
	interp   *stream.Value[Interpretation]
}

// New creates an Engine over the backend. No search is issued until the
// first input arrives; callers wanting an initial unfiltered load call
// Refresh.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		log:      logging.Default(),
		clock:    realClock{},
		debounce: DefaultDebounce,
		products: stream.NewValue[[]catalog.Product](nil),
		interp:   stream.NewValue(Interpretation{Status: StatusIdle}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ObserveProducts subscribes to published search results (replay-one,
// multicast).
func (e *Engine) ObserveProducts(fn func([]catalog.Product)) (cancel func()) {
	return e.products.Subscribe(fn)
}

// ObserveInterpretation subscribes to the free-text interpretation
// state (replay-one, multicast).
func (e *Engine) ObserveInterpretation(fn func(Interpretation)) (cancel func()) {
	return e.interp.Subscribe(fn)
}

// CanonicalFilter returns the filter currently driving the search.
func (e *Engine) CanonicalFilter() catalog.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.accepted
}

// Refresh re-issues the search for the current canonical filter. Used
// for the initial catalog load and after checkout.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	filter := e.accepted
	e.mu.Unlock()

	go e.search(ctx, gen, filter)
}

// SubmitManualEdit merges the partial edit into the pending manual
// state and (re)arms the debounce window. Once the window elapses with
// no further edit, the accumulated edits are merged onto the canonical
// filter and a single search is issued.
func (e *Engine) SubmitManualEdit(ctx context.Context, patch catalog.Patch) {
	if patch.IsZero() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.manual = e.manual.Merge(patch)
	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = e.clock.AfterFunc(e.debounce, func() {
		e.flushManual(ctx)
	})
}

// flushManual applies the accumulated manual edits after the debounce
// window elapsed.
func (e *Engine) flushManual(ctx context.Context) {
	e.mu.Lock()
	e.pending = nil
	next := e.accepted.Merge(e.manual)
	if next.Equal(e.accepted) {
		e.mu.Unlock()
		return
	}
	e.accepted = next
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	e.log.Debug("manual filter accepted", "generation", gen)
	go e.search(ctx, gen, next)
}

// SubmitFreeTextQuery runs the free-text path.
//
// Empty text resets the canonical filter to empty, returns the
// interpretation to idle, and supersedes any in-flight interpretation.
// Non-empty text issues the interpretation call; its outcome replaces
// the canonical filter (success) or degrades to a plain search on the
// raw text (failure). Either outcome clears the pending manual state.
func (e *Engine) SubmitFreeTextQuery(ctx context.Context, text string) {
	if text == "" {
		e.reset(ctx)
		return
	}

	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	e.interp.Set(Interpretation{Status: StatusInterpreting, Query: text})

	go func() {
		result, err := e.backend.SearchAI(ctx, text)

		e.mu.Lock()
		if gen != e.gen {
			e.mu.Unlock()
			e.log.Debug("interpretation superseded", "generation", gen, "query", text)
			return
		}

		e.discardManualLocked()
		var state Interpretation
		if err != nil {
			// Degraded mode: the raw text becomes a plain search term.
			e.accepted = catalog.Filter{Search: text}
			state = Interpretation{Status: StatusFailed, Query: text}
			e.log.Warn("interpretation failed, using plain search", "query", text, "error", err)
		} else {
			e.accepted = result.AppliedFilters
			state = Interpretation{
				Status:     StatusInterpreted,
				Query:      text,
				Summary:    result.Interpretation,
				IsFallback: result.IsFallback,
			}
		}
		e.gen++
		searchGen := e.gen
		filter := e.accepted
		e.mu.Unlock()

		e.interp.Set(state)
		e.search(ctx, searchGen, filter)
	}()
}

// reset handles the empty free-text submission: canonical back to the
// empty filter, interpretation idle, pending state discarded.
func (e *Engine) reset(ctx context.Context) {
	e.mu.Lock()
	e.gen++ // supersedes any in-flight interpretation or search
	e.discardManualLocked()
	changed := !e.accepted.IsZero()
	e.accepted = catalog.Filter{}
	var gen uint64
	if changed {
		e.gen++
		gen = e.gen
	}
	e.mu.Unlock()

	e.interp.Set(Interpretation{Status: StatusIdle})
	if changed {
		go e.search(ctx, gen, catalog.Filter{})
	}
}

// discardManualLocked drops pending manual edits and their timer.
// Caller holds e.mu.
func (e *Engine) discardManualLocked() {
	e.manual = catalog.Patch{}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

// search performs the product query stamped with gen and publishes the
// result if the stamp is still current on completion.
func (e *Engine) search(ctx context.Context, gen uint64, filter catalog.Filter) {
	products, err := e.backend.PublicProducts(ctx, filter, 0, e.limit)

	e.mu.Lock()
	current := gen == e.gen
	e.mu.Unlock()

	if !current {
		e.log.Debug("search superseded", "generation", gen)
		return
	}
	if err != nil {
		// Keep the last published products; surface one notification.
		e.log.Error("product search failed", "generation", gen, "error", err)
		if e.onError != nil {
			e.onError(err)
		}
		return
	}
	e.products.Set(products)
}
