// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// =============================================================================
// Notifier
// =============================================================================

// Notifier delivers one-shot acknowledgments to the user.
//
// # Description
//
//	Abstracts how transient events (item added to cart, order placed,
//	a recoverable failure) reach the user, so state components can
//	trigger acknowledgments without knowing about terminal output.
//	Implementations must be safe for concurrent use.
//
// # Limitations
//
//   - Notifications are fire-and-forget. There is no delivery
//     confirmation and no history beyond what the implementation keeps.
type Notifier interface {
	// ItemAdded acknowledges that quantity units of the named product
	// are now in the cart.
	ItemAdded(name string, quantity int)

	// OrderPlaced acknowledges a successfully created order.
	OrderPlaced(orderID int64)

	// Problem reports a recoverable failure in user terms.
	Problem(message string)
}

// TerminalNotifier writes acknowledgments to a terminal stream using
// the current output mode.
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

// NewTerminalNotifier creates a notifier writing to stdout and stderr.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{out: os.Stdout, err: os.Stderr}
}

// NewTerminalNotifierTo creates a notifier writing to the given streams.
func NewTerminalNotifierTo(out, errOut io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out, err: errOut}
}

func (n *TerminalNotifier) ItemAdded(name string, quantity int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if GetMode() == ModeMachine {
		fmt.Fprintf(n.out, "CART_ADD: %s x%d\n", name, quantity)
		return
	}
	fmt.Fprintf(n.out, "%s %s %s\n",
		IconSuccess.Render(),
		Styles.Bold.Render(name),
		Styles.Muted.Render(fmt.Sprintf("added to cart (x%d)", quantity)))
}

func (n *TerminalNotifier) OrderPlaced(orderID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if GetMode() == ModeMachine {
		fmt.Fprintf(n.out, "ORDER: id=%d\n", orderID)
		return
	}
	fmt.Fprintf(n.out, "%s %s\n",
		IconSuccess.Render(),
		Styles.Success.Render(fmt.Sprintf("Order #%d placed", orderID)))
}

func (n *TerminalNotifier) Problem(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if GetMode() == ModeMachine {
		fmt.Fprintf(n.err, "ERROR: %s\n", message)
		return
	}
	fmt.Fprintf(n.err, "%s %s\n", IconError.Render(), Styles.Error.Render(message))
}

// NopNotifier discards all notifications. Useful in tests and when the
// interactive view renders events itself.
type NopNotifier struct{}

func (NopNotifier) ItemAdded(string, int) {}
func (NopNotifier) OrderPlaced(int64)     {}
func (NopNotifier) Problem(string)        {}
