// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/vitrine/pkg/cart"
	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/query"
	"github.com/AleutianAI/vitrine/pkg/session"
	"github.com/AleutianAI/vitrine/pkg/storefront"
)

// stubBackend satisfies query.Backend without any network.
type stubBackend struct{}

func (stubBackend) PublicProducts(context.Context, catalog.Filter, int, int) ([]catalog.Product, error) {
	return nil, nil
}

func (stubBackend) SearchAI(context.Context, string) (storefront.AISearchResult, error) {
	return storefront.AISearchResult{}, nil
}

// failingBackend rejects every call, simulating an unreachable server.
type failingBackend struct{}

func (failingBackend) PublicProducts(context.Context, catalog.Filter, int, int) ([]catalog.Product, error) {
	return nil, errors.New("connection refused")
}

func (failingBackend) SearchAI(context.Context, string) (storefront.AISearchResult, error) {
	return storefront.AISearchResult{}, errors.New("connection refused")
}

func testShopModel(t *testing.T, authed bool) shopModel {
	t.Helper()

	log := logging.New(logging.Config{Quiet: true})
	store := session.NewMemStore()
	if authed {
		store.Set(session.CredentialKey, "tok")
	}
	a := &app{
		log:     log,
		client:  storefront.New(storefront.Config{BaseURL: "http://127.0.0.1:0"}, nil, log),
		session: session.New(store, nil, log),
	}
	engine := query.New(stubBackend{}, query.WithLogger(log))

	products := []catalog.Product{
		{ID: 1, Name: "Cesta de palha", Price: 35},
		{ID: 2, Name: "Vaso de barro", Price: 80},
	}
	return newShopModel(context.Background(), a, engine, &teaRelay{}, []string{"ceramics"}, products)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestShopModel_ProductsMsgClampsCursor(t *testing.T) {
	m := testShopModel(t, false)
	m.cursor = 1

	updated, _ := m.Update(productsMsg([]catalog.Product{{ID: 9, Name: "one"}}))
	got := updated.(shopModel)

	if got.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", got.cursor)
	}
	if len(got.products) != 1 {
		t.Errorf("products = %d, want 1", len(got.products))
	}
}

func TestShopModel_AddToCartFromList(t *testing.T) {
	m := testShopModel(t, false)
	m.focus = focusList

	updated, _ := m.Update(key("a"))
	got := updated.(shopModel)

	lines := got.bag.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(lines))
	}
	if lines[0].Item.ID != 1 || lines[0].Quantity != 1 {
		t.Errorf("line = %+v, want product 1 x1", lines[0])
	}
}

func TestShopModel_RepeatedAddMergesLine(t *testing.T) {
	m := testShopModel(t, false)
	m.focus = focusList

	updated, _ := m.Update(key("a"))
	updated, _ = updated.(shopModel).Update(key("a"))
	got := updated.(shopModel)

	lines := got.bag.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestShopModel_CheckoutEmptyCartFlashes(t *testing.T) {
	m := testShopModel(t, true)
	m.focus = focusList

	updated, cmd := m.Update(key("x"))
	got := updated.(shopModel)

	if cmd != nil {
		t.Error("empty cart must not start a checkout command")
	}
	if got.flash == "" {
		t.Error("expected a flash explaining the empty cart")
	}
}

func TestShopModel_CheckoutRequiresLogin(t *testing.T) {
	m := testShopModel(t, false)
	m.focus = focusList
	m.cartLines = []cart.Line{{Item: catalog.Product{ID: 1, Name: "x", Price: 1}, Quantity: 1}}

	updated, cmd := m.Update(key("x"))
	got := updated.(shopModel)

	if cmd != nil {
		t.Error("anonymous checkout must not start a command")
	}
	if !strings.Contains(got.flash, "login") {
		t.Errorf("flash = %q, want a login hint", got.flash)
	}
}

func TestShopModel_CheckoutSuccessClearsCart(t *testing.T) {
	m := testShopModel(t, true)
	m.focus = focusList

	// Put something in the bag first.
	updated, _ := m.Update(key("a"))
	m = updated.(shopModel)
	m.cartLines = m.bag.Lines()

	updated, _ = m.Update(checkoutResultMsg{conf: storefront.OrderConfirmation{ID: 77}})
	got := updated.(shopModel)

	if len(got.bag.Lines()) != 0 {
		t.Error("cart must be cleared after a confirmed order")
	}
	if !strings.Contains(got.flash, "#77") {
		t.Errorf("flash = %q, want the order id", got.flash)
	}
	if got.showCart {
		t.Error("cart view should close after checkout")
	}
}

func TestShopModel_CheckoutFailureKeepsCart(t *testing.T) {
	m := testShopModel(t, true)
	m.focus = focusList

	updated, _ := m.Update(key("a"))
	m = updated.(shopModel)

	updated, _ = m.Update(checkoutResultMsg{err: errors.New("stock ran out")})
	got := updated.(shopModel)

	if len(got.bag.Lines()) != 1 {
		t.Error("a failed checkout must leave the cart intact")
	}
	if !strings.Contains(got.flash, "Checkout failed") {
		t.Errorf("flash = %q, want a failure notice", got.flash)
	}
}

func TestShopModel_TabCyclesFocus(t *testing.T) {
	m := testShopModel(t, false)

	var model tea.Model = m
	for i := 0; i < focusCount; i++ {
		model, _ = model.(shopModel).Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	if got := model.(shopModel).focus; got != focusQuery {
		t.Errorf("focus = %d after a full cycle, want %d", got, focusQuery)
	}
}

// Subscribe replays the current value synchronously, and program.Send
// blocks until the event loop runs. Bridging right after NewProgram is
// exactly the startup sequence, so it must return without the loop.
func TestShop_BridgeReturnsBeforeEventLoopStarts(t *testing.T) {
	m := testShopModel(t, false)
	program := tea.NewProgram(m, tea.WithoutRenderer())
	m.relay.bind(program)

	done := make(chan struct{})
	go func() {
		cancels := bridgeStreams(m.relay, m.engine, m.bag, m.a.session)
		for _, cancel := range cancels {
			cancel()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bridging blocked before the event loop started")
	}
}

func TestShopEngine_SearchFailureFlashes(t *testing.T) {
	var mu sync.Mutex
	var flashes []string
	flash := func(s string) {
		mu.Lock()
		flashes = append(flashes, s)
		mu.Unlock()
	}

	e := newShopEngine(failingBackend{}, logging.New(logging.Config{Quiet: true}), flash, nil)
	e.Refresh(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(flashes)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(flashes) == 0 {
		t.Fatal("a failed search must flash in the status line")
	}
	if !strings.Contains(flashes[0], "Search failed") {
		t.Errorf("flash = %q, want a search failure notice", flashes[0])
	}
}

func TestShopEngine_SeedsOpeningCatalogPage(t *testing.T) {
	opening := []catalog.Product{{ID: 3, Name: "Tapete de retalhos", Price: 150}}
	e := newShopEngine(stubBackend{}, logging.New(logging.Config{Quiet: true}), func(string) {}, opening)

	var replayed []catalog.Product
	cancel := e.ObserveProducts(func(p []catalog.Product) { replayed = p })
	defer cancel()

	if len(replayed) != 1 || replayed[0].Name != "Tapete de retalhos" {
		t.Errorf("replayed = %+v, want the opening catalog page", replayed)
	}
}

func TestTruncate_KeepsMultiByteRunesIntact(t *testing.T) {
	name := strings.Repeat("ç", 60)
	got := truncate(name, 40)

	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Errorf("rune count = %d, want 40", n)
	}
	if truncate("Caneca de cerâmica", 40) != "Caneca de cerâmica" {
		t.Error("short names must pass through unchanged")
	}
}

func TestShopModel_ViewShowsProductsAndStatus(t *testing.T) {
	m := testShopModel(t, false)

	view := m.View()
	if !strings.Contains(view, "Cesta de palha") {
		t.Error("view should list the products")
	}
	if !strings.Contains(view, "anonymous") {
		t.Error("view should show the anonymous session state")
	}
	if !strings.Contains(view, "ceramics") {
		t.Error("view should show the category line")
	}
}
