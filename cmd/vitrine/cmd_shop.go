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
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/vitrine/cmd/vitrine/config"
	"github.com/AleutianAI/vitrine/pkg/cart"
	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/query"
	"github.com/AleutianAI/vitrine/pkg/session"
	"github.com/AleutianAI/vitrine/pkg/ux"
)

// runShop starts the interactive storefront session.
func runShop(cmd *cobra.Command, args []string) error {
	if !ux.IsTerminal() {
		return errors.New("the interactive shop needs a terminal; try 'vitrine search' for scripted use")
	}

	a := newApp()
	ctx := cmd.Context()

	// Fetch the category list and the opening catalog page together.
	var (
		categories []string
		products   []catalog.Product
	)
	err := ux.WithSpinner("Opening the shop", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			categories, err = a.client.Categories(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			products, err = a.client.PublicProducts(gctx, catalog.Filter{}, 0, pageSize())
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return renderCommandError(err)
	}

	relay := &teaRelay{}
	engine := newShopEngine(a.client, a.log, func(s string) {
		relay.send(flashMsg(s))
	}, products)

	model := newShopModel(ctx, a, engine, relay, categories, products)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.bind(program)

	cancels := bridgeStreams(relay, engine, model.bag, a.session)
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("shop session failed: %w", err)
	}
	return nil
}

// newShopEngine builds the query engine the interactive session runs
// on. Search failures flash in the status line instead of dying on a
// hidden stderr, and the engine starts seeded with the opening catalog
// page so the subscription replay does not blank it.
func newShopEngine(backend query.Backend, log *logging.Logger, flash func(string), opening []catalog.Product) *query.Engine {
	debounce := query.DefaultDebounce
	if ms := config.Global.Shop.DebounceMillis; ms > 0 {
		debounce = time.Duration(ms) * time.Millisecond
	}
	return query.New(backend,
		query.WithLogger(log),
		query.WithDebounce(debounce),
		query.WithSearchLimit(pageSize()),
		query.WithInitialProducts(opening),
		query.WithErrorHandler(func(err error) {
			flash("Search failed: " + commandErrorMessage(err))
		}),
	)
}

// bridgeStreams subscribes the reactive state to the event loop.
// Every published value becomes a message; the model stays a pure
// reducer. Subscribe replays the current value synchronously on the
// caller's goroutine, and program.Send blocks until the event loop is
// running, so the bridge must go through the relay, which forwards
// from its own goroutine, and never call Send directly.
func bridgeStreams(relay *teaRelay, engine *query.Engine, bag *cart.Aggregator, sess *session.Manager) []func() {
	return []func(){
		engine.ObserveProducts(func(p []catalog.Product) {
			relay.send(productsMsg(p))
		}),
		engine.ObserveInterpretation(func(i query.Interpretation) {
			relay.send(interpMsg(i))
		}),
		bag.Observe(func(lines []cart.Line) {
			relay.send(cartMsg(lines))
		}),
		sess.Observe(func(authed bool) {
			relay.send(authMsg(authed))
		}),
	}
}

// runSearch performs a one-shot catalog query for scripted use.
func runSearch(cmd *cobra.Command, args []string) error {
	a := newApp()
	ctx := cmd.Context()

	filter := buildManualFilter()
	queryText := strings.TrimSpace(strings.Join(args, " "))

	if queryText != "" {
		result, err := a.client.SearchAI(ctx, queryText)
		if err != nil {
			// Degrade to a plain text match, same as the interactive flow.
			ux.Warning("Smart search is unavailable, matching on plain text.")
			filter = catalog.Filter{Search: queryText}
		} else {
			if result.Interpretation != "" {
				ux.Info(result.Interpretation)
			}
			if result.IsFallback {
				ux.Muted("The server fell back to a plain text match.")
			}
			filter = result.AppliedFilters
		}
	}

	products, err := a.client.PublicProducts(ctx, filter, 0, pageSize())
	if err != nil {
		return renderCommandError(err)
	}

	if len(products) == 0 {
		ux.Info("No products matched.")
		return nil
	}
	fmt.Println(renderProductTable(products))
	return nil
}

// runCategories prints the catalog categories one per line.
func runCategories(cmd *cobra.Command, args []string) error {
	a := newApp()
	categories, err := a.client.Categories(cmd.Context())
	if err != nil {
		return renderCommandError(err)
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func pageSize() int {
	if n := config.Global.Shop.PageSize; n > 0 {
		return n
	}
	return 50
}
