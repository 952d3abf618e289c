// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stream provides a replay-one, multicast value cell.
//
// A Value holds a current value plus a registry of subscriber callbacks.
// Every Set invokes all subscribers synchronously with the new value, and
// a new subscriber immediately receives the current value before any
// future transition. This is the state-distribution primitive the session,
// cart, and query components publish through.
//
// # Description
//
// Value is the explicit form of a "hot" observable with replay(1)
// semantics: there is no buffering, no completion, and no error channel.
// Subscribers are plain functions; unsubscription is the cancel func
// returned by Subscribe.
//
// # Examples
//
//	authed := stream.NewValue(false)
//	cancel := authed.Subscribe(func(v bool) { fmt.Println("auth:", v) })
//	defer cancel()
//	authed.Set(true) // all subscribers observe true
//
// # Limitations
//
//   - Subscriber callbacks run synchronously on the caller of Set;
//     long-running work belongs in the subscriber's own goroutine.
//   - Delivery order across subscribers follows subscription order.
//
// # Assumptions
//
//   - Callbacks do not call Set on the same Value re-entrantly.
package stream

import (
	"slices"
	"sync"
)

// Value is a replay-one multicast cell holding a current value of type T.
//
// The zero value is not usable; construct with NewValue. Value is safe
// for concurrent use.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[int]func(T)
	nextID  int
}

// NewValue creates a Value seeded with initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores next as the current value and synchronously invokes every
// subscriber with it, in subscription order.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.current = next
	// Snapshot under the lock so a callback may unsubscribe itself.
	ids := make([]int, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(T), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.subs[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}

// Subscribe registers fn and immediately invokes it with the current
// value (replay-one). The returned cancel func removes the subscription;
// it is idempotent.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	current := v.current
	v.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}
