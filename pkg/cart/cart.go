// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cart aggregates the shopper's selection for the current
// process. The cart is deliberately not persisted: it belongs to the
// in-memory session and is lost when the process exits.
package cart

import (
	"sync"

	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/stream"
)

// Line is one cart entry: an item plus its accumulated quantity.
//
// Item is the display snapshot captured when the first Add happened;
// later Adds of the same id only increment Quantity and never refresh
// the snapshot.
type Line struct {
	Item     catalog.Product
	Quantity int
}

// Aggregator owns the ordered line collection, keyed by item identity.
//
// At most one line exists per distinct item id; lines keep first-add
// order. Mutations are UI-driven and serialized by the caller, but the
// aggregator still publishes atomically: observers always receive a
// fresh snapshot slice, never a view into mutable state.
type Aggregator struct {
	mu    sync.Mutex
	lines []Line

	value *stream.Value[[]Line]

	// notify acknowledges a successful add to the user, synchronously
	// and without any network involvement. May be nil.
	notify func(added catalog.Product)
}

// New creates an empty Aggregator. notify may be nil.
func New(notify func(added catalog.Product)) *Aggregator {
	return &Aggregator{
		value:  stream.NewValue[[]Line](nil),
		notify: notify,
	}
}

// Observe subscribes to the line sequence: the current snapshot is
// delivered immediately, then every mutation.
func (a *Aggregator) Observe(fn func([]Line)) (cancel func()) {
	return a.value.Subscribe(fn)
}

// Lines returns the current snapshot.
func (a *Aggregator) Lines() []Line {
	return a.value.Get()
}

// Add merges the item into the cart: an existing line with the same id
// gains one to its quantity, otherwise a new line with quantity 1 is
// appended. The acknowledgment callback fires on every call.
func (a *Aggregator) Add(item catalog.Product) {
	a.mu.Lock()
	next := make([]Line, len(a.lines))
	copy(next, a.lines)

	found := false
	for i := range next {
		if next[i].Item.ID == item.ID {
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		next = append(next, Line{Item: item, Quantity: 1})
	}
	a.lines = next
	a.mu.Unlock()

	a.value.Set(snapshot(next))

	if a.notify != nil {
		a.notify(item)
	}
}

// SnapshotForCheckout projects the current lines into the order wire
// shape. It is a pure read: calling it does not mutate the cart, and
// two calls without an intervening mutation return equal results.
func (a *Aggregator) SnapshotForCheckout() []catalog.OrderItem {
	a.mu.Lock()
	defer a.mu.Unlock()

	items := make([]catalog.OrderItem, 0, len(a.lines))
	for _, line := range a.lines {
		items = append(items, catalog.OrderItem{
			ItemID:   line.Item.ID,
			Quantity: line.Quantity,
		})
	}
	return items
}

// Clear resets the cart to empty. The checkout flow calls this exactly
// once, strictly after the order submission reported success; a failed
// checkout must leave the cart intact so the user can retry.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	a.lines = nil
	a.mu.Unlock()

	a.value.Set(nil)
}

// snapshot copies lines so observers never alias internal state.
func snapshot(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
