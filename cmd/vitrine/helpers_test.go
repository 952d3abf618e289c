// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/AleutianAI/vitrine/pkg/logging"
	"github.com/AleutianAI/vitrine/pkg/session"
)

func TestParseOrderItems_Valid(t *testing.T) {
	items, err := parseOrderItems([]string{"12=2", "7=1"})
	if err != nil {
		t.Fatalf("parseOrderItems() failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ItemID != 12 || items[0].Quantity != 2 {
		t.Errorf("first item = %+v, want id=12 qty=2", items[0])
	}
	if items[1].ItemID != 7 || items[1].Quantity != 1 {
		t.Errorf("second item = %+v, want id=7 qty=1", items[1])
	}
}

func TestParseOrderItems_TrimsSpaces(t *testing.T) {
	items, err := parseOrderItems([]string{" 3 = 4 "})
	if err != nil {
		t.Fatalf("parseOrderItems() failed: %v", err)
	}
	if items[0].ItemID != 3 || items[0].Quantity != 4 {
		t.Errorf("item = %+v, want id=3 qty=4", items[0])
	}
}

func TestParseOrderItems_Rejects(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{"12"},         // no quantity
		{"abc=2"},      // bad id
		{"12=xyz"},     // bad quantity
		{"12=0"},       // zero quantity
		{"12=-1"},      // negative quantity
		{"0=1"},        // zero id
		{"12=2", "=="}, // one good, one malformed
	}
	for _, raw := range cases {
		if _, err := parseOrderItems(raw); err == nil {
			t.Errorf("parseOrderItems(%v) should have failed", raw)
		}
	}
}

func TestBuildManualFilter(t *testing.T) {
	filterCategory = "ceramics"
	filterPriceMin = 10
	filterPriceMax = 0
	defer func() {
		filterCategory = ""
		filterPriceMin = 0
		filterPriceMax = 0
	}()

	f := buildManualFilter()
	if f.Category != "ceramics" {
		t.Errorf("Category = %q, want ceramics", f.Category)
	}
	if f.PriceMin == nil || *f.PriceMin != 10 {
		t.Errorf("PriceMin = %v, want 10", f.PriceMin)
	}
	if f.PriceMax != nil {
		t.Errorf("PriceMax = %v, want nil for unset flag", f.PriceMax)
	}
}

func TestCredentialRelay_UnboundIsAnonymous(t *testing.T) {
	relay := &credentialRelay{}
	if _, ok := relay.CredentialForRequest(); ok {
		t.Error("unbound relay should report no credential")
	}
}

func TestCredentialRelay_DelegatesAfterBind(t *testing.T) {
	log := logging.New(logging.Config{Quiet: true})
	store := session.NewMemStore()
	store.Set(session.CredentialKey, "tok-123")

	mgr := session.New(store, nil, log)

	relay := &credentialRelay{}
	relay.bind(mgr)

	token, ok := relay.CredentialForRequest()
	if !ok {
		t.Fatal("expected a credential after binding a resumed session")
	}
	if token != "tok-123" {
		t.Errorf("token = %q, want tok-123", token)
	}
}
