// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// The shop model is a plain reducer over messages. All reactive state
// (catalog results, interpretation status, cart contents, session
// state) arrives as messages bridged from the state components, so the
// model never blocks and never polls.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/vitrine/pkg/cart"
	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/query"
	"github.com/AleutianAI/vitrine/pkg/storefront"
	"github.com/AleutianAI/vitrine/pkg/ux"
)

// =============================================================================
// Messages
// =============================================================================

type productsMsg []catalog.Product
type interpMsg query.Interpretation
type cartMsg []cart.Line
type authMsg bool
type flashMsg string

type checkoutResultMsg struct {
	conf storefront.OrderConfirmation
	err  error
}

// teaRelay forwards events into the bubbletea program once it exists.
// The cart aggregator fires its acknowledgment callback synchronously
// during Update, before the program pointer is known to the model.
type teaRelay struct {
	mu      sync.RWMutex
	program *tea.Program
}

func (r *teaRelay) bind(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

func (r *teaRelay) send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		go p.Send(msg)
	}
}

// =============================================================================
// Model
// =============================================================================

// focus targets, cycled with tab
const (
	focusQuery = iota
	focusCategory
	focusPriceMin
	focusPriceMax
	focusList
	focusCount
)

type shopModel struct {
	ctx    context.Context
	a      *app
	engine *query.Engine
	bag    *cart.Aggregator
	relay  *teaRelay

	categories []string

	queryInput    textinput.Model
	categoryInput textinput.Model
	priceMinInput textinput.Model
	priceMaxInput textinput.Model
	focus         int

	products []catalog.Product
	cursor   int

	cartLines []cart.Line
	showCart  bool

	interp      query.Interpretation
	authed      bool
	checkingOut bool
	flash       string

	width  int
	height int
}

func newShopModel(ctx context.Context, a *app, engine *query.Engine, relay *teaRelay, categories []string, initial []catalog.Product) shopModel {
	queryInput := textinput.New()
	queryInput.Placeholder = "describe what you are looking for"
	queryInput.Prompt = "? "
	queryInput.CharLimit = 256
	queryInput.Focus()

	categoryInput := textinput.New()
	categoryInput.Placeholder = "category"
	categoryInput.Prompt = ""
	categoryInput.CharLimit = 64

	priceMinInput := textinput.New()
	priceMinInput.Placeholder = "min"
	priceMinInput.Prompt = ""
	priceMinInput.CharLimit = 12

	priceMaxInput := textinput.New()
	priceMaxInput.Placeholder = "max"
	priceMaxInput.Prompt = ""
	priceMaxInput.CharLimit = 12

	bag := cart.New(func(added catalog.Product) {
		relay.send(flashMsg(fmt.Sprintf("%s added to the cart", added.Name)))
	})

	return shopModel{
		ctx:           ctx,
		a:             a,
		engine:        engine,
		bag:           bag,
		relay:         relay,
		categories:    categories,
		queryInput:    queryInput,
		categoryInput: categoryInput,
		priceMinInput: priceMinInput,
		priceMaxInput: priceMaxInput,
		products:      initial,
		authed:        a.session.Current().Authenticated,
	}
}

func (m shopModel) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// Update
// =============================================================================

func (m shopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case productsMsg:
		m.products = msg
		if m.cursor >= len(m.products) {
			m.cursor = max(0, len(m.products)-1)
		}
		return m, nil

	case interpMsg:
		m.interp = query.Interpretation(msg)
		return m, nil

	case cartMsg:
		m.cartLines = msg
		return m, nil

	case authMsg:
		m.authed = bool(msg)
		return m, nil

	case flashMsg:
		m.flash = string(msg)
		return m, nil

	case checkoutResultMsg:
		m.checkingOut = false
		if msg.err != nil {
			// The cart stays intact so the user can retry.
			m.flash = "Checkout failed: " + userMessage(msg.err)
			return m, nil
		}
		m.bag.Clear()
		m.showCart = false
		m.flash = fmt.Sprintf("Order #%d placed. Thank you!", msg.conf.ID)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m shopModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyTab:
		m.focus = (m.focus + 1) % focusCount
		m.syncFocus()
		return m, nil

	case tea.KeyShiftTab:
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.syncFocus()
		return m, nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}
	return m.handleInputKey(msg)
}

// handleListKey handles navigation and cart actions on the catalog.
func (m shopModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.products)-1 {
			m.cursor++
		}
	case "enter", "a":
		if m.cursor < len(m.products) {
			m.bag.Add(m.products[m.cursor])
		}
	case "c":
		m.showCart = !m.showCart
	case "x":
		return m.startCheckout()
	}
	return m, nil
}

// handleInputKey routes keys to the focused text field and converts
// edits into engine submissions.
func (m shopModel) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter && m.focus == focusQuery {
		m.engine.SubmitFreeTextQuery(m.ctx, strings.TrimSpace(m.queryInput.Value()))
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)

	case focusCategory:
		before := m.categoryInput.Value()
		m.categoryInput, cmd = m.categoryInput.Update(msg)
		if after := m.categoryInput.Value(); after != before {
			m.engine.SubmitManualEdit(m.ctx, catalog.Patch{Category: catalog.String(strings.TrimSpace(after))})
		}

	case focusPriceMin:
		before := m.priceMinInput.Value()
		m.priceMinInput, cmd = m.priceMinInput.Update(msg)
		if after := m.priceMinInput.Value(); after != before {
			if v, ok := parsePriceField(after); ok {
				m.engine.SubmitManualEdit(m.ctx, catalog.Patch{PriceMin: catalog.Float(v)})
			}
		}

	case focusPriceMax:
		before := m.priceMaxInput.Value()
		m.priceMaxInput, cmd = m.priceMaxInput.Update(msg)
		if after := m.priceMaxInput.Value(); after != before {
			if v, ok := parsePriceField(after); ok {
				m.engine.SubmitManualEdit(m.ctx, catalog.Patch{PriceMax: catalog.Float(v)})
			}
		}
	}
	return m, cmd
}

func (m shopModel) startCheckout() (tea.Model, tea.Cmd) {
	if len(m.cartLines) == 0 {
		m.flash = "The cart is empty."
		return m, nil
	}
	if !m.authed {
		m.flash = "Sign in first: run 'vitrine login' in another terminal."
		return m, nil
	}
	if m.checkingOut {
		return m, nil
	}
	m.checkingOut = true
	items := m.bag.SnapshotForCheckout()
	client := m.a.client
	ctx := m.ctx
	return m, func() tea.Msg {
		conf, err := client.CreateOrder(ctx, items)
		return checkoutResultMsg{conf: conf, err: err}
	}
}

// syncFocus moves textinput focus to match the focus index.
func (m *shopModel) syncFocus() {
	inputs := []*textinput.Model{&m.queryInput, &m.categoryInput, &m.priceMinInput, &m.priceMaxInput}
	for i, in := range inputs {
		if i == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// parsePriceField interprets a price input field. Empty means clear the
// bound; a partial or invalid number means wait for more typing.
func parsePriceField(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// userMessage strips client error types down to a short sentence.
func userMessage(err error) string {
	return strings.TrimSpace(strings.SplitN(err.Error(), ":", 2)[0])
}

// =============================================================================
// View
// =============================================================================

func (m shopModel) View() string {
	var b strings.Builder

	b.WriteString(ux.Styles.Title.Render("vitrine"))
	b.WriteString("  ")
	b.WriteString(ux.Styles.Muted.Render("tab: next field  a/enter: add  c: cart  x: checkout  q: quit"))
	b.WriteString("\n\n")

	b.WriteString(m.queryInput.View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  %s %s - %s\n",
		ux.Styles.Muted.Render("category:"), m.categoryInput.View(),
		ux.Styles.Muted.Render("price:"), m.priceMinInput.View(), m.priceMaxInput.View()))

	b.WriteString(m.interpLine())
	b.WriteString("\n")

	if m.showCart {
		b.WriteString(m.cartView())
	} else {
		b.WriteString(m.catalogView())
	}

	b.WriteString("\n")
	b.WriteString(ux.Styles.Muted.Render(m.categoriesLine()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m shopModel) interpLine() string {
	switch m.interp.Status {
	case query.StatusInterpreting:
		return ux.Styles.Subtitle.Render("interpreting \"" + m.interp.Query + "\"...")
	case query.StatusInterpreted:
		if m.interp.Summary != "" {
			return ux.Styles.Subtitle.Render(m.interp.Summary)
		}
		return ux.Styles.Subtitle.Render("showing results for \"" + m.interp.Query + "\"")
	case query.StatusFailed:
		return ux.Styles.Warning.Render("smart search unavailable, matching \"" + m.interp.Query + "\" as plain text")
	default:
		return ""
	}
}

func (m shopModel) catalogView() string {
	if len(m.products) == 0 {
		return ux.Styles.Muted.Render("  no products matched")
	}

	var b strings.Builder
	for i, p := range m.products {
		line := fmt.Sprintf("%-40s %10s  %s", truncate(p.Name, 40), ux.FormatPrice(p.Price), p.Category)
		if i == m.cursor && m.focus == focusList {
			b.WriteString(ux.Styles.Highlight.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m shopModel) cartView() string {
	if len(m.cartLines) == 0 {
		return ux.Styles.Muted.Render("  the cart is empty")
	}

	var b strings.Builder
	var total float64
	for _, line := range m.cartLines {
		subtotal := line.Item.Price * float64(line.Quantity)
		total += subtotal
		b.WriteString(fmt.Sprintf("  %-40s x%-3d %10s\n",
			truncate(line.Item.Name, 40), line.Quantity, ux.FormatPrice(subtotal)))
	}
	b.WriteString(fmt.Sprintf("  %-45s %10s\n", ux.Styles.Bold.Render("total"), ux.Styles.Price.Render(ux.FormatPrice(total))))
	return b.String()
}

func (m shopModel) categoriesLine() string {
	if len(m.categories) == 0 {
		return ""
	}
	return "categories: " + strings.Join(m.categories, ", ")
}

func (m shopModel) statusLine() string {
	parts := []string{fmt.Sprintf("cart: %d", cartCount(m.cartLines))}
	if m.authed {
		parts = append(parts, "signed in")
	} else {
		parts = append(parts, "anonymous")
	}
	if m.checkingOut {
		parts = append(parts, "placing order...")
	}
	status := ux.Styles.Muted.Render(strings.Join(parts, "  "))
	if m.flash != "" {
		status += "  " + ux.Styles.Highlight.Render(m.flash)
	}
	return status
}

func cartCount(lines []cart.Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// truncate shortens to n display runes. Slicing bytes would cut
// multi-byte characters in half, and the catalog is full of them.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
