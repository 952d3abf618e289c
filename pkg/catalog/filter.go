// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"net/url"
	"strconv"
)

// Filter is the filter specification driving a catalog query.
//
// Absent fields are not sent to the API: the empty string means "no
// search/category constraint" and nil price bounds mean "no bound".
// Filter values are treated as immutable once published; producers build
// a new Filter rather than mutating a shared one.
type Filter struct {
	Search   string   `json:"search,omitempty"`
	Category string   `json:"category,omitempty"`
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
}

// Patch is a partial, field-level edit of a Filter.
//
// A nil field leaves the corresponding Filter field alone. A non-nil
// pointer overwrites it; pointing at the zero value ("" or 0) clears the
// field, matching the manual filter form where an emptied input removes
// the constraint.
type Patch struct {
	Search   *string
	Category *string
	PriceMin *float64
	PriceMax *float64
}

// IsZero reports whether no field of the patch is set.
func (p Patch) IsZero() bool {
	return p.Search == nil && p.Category == nil && p.PriceMin == nil && p.PriceMax == nil
}

// Merge returns a patch combining p with other; fields set in other win.
// Used to accumulate rapid successive edits before they are applied.
func (p Patch) Merge(other Patch) Patch {
	out := p
	if other.Search != nil {
		out.Search = other.Search
	}
	if other.Category != nil {
		out.Category = other.Category
	}
	if other.PriceMin != nil {
		out.PriceMin = other.PriceMin
	}
	if other.PriceMax != nil {
		out.PriceMax = other.PriceMax
	}
	return out
}

// Merge returns a copy of f with every set field of patch applied.
// Later patches to the same field overwrite earlier ones.
func (f Filter) Merge(patch Patch) Filter {
	out := f
	if patch.Search != nil {
		out.Search = *patch.Search
	}
	if patch.Category != nil {
		out.Category = *patch.Category
	}
	if patch.PriceMin != nil {
		if *patch.PriceMin == 0 {
			out.PriceMin = nil
		} else {
			v := *patch.PriceMin
			out.PriceMin = &v
		}
	}
	if patch.PriceMax != nil {
		if *patch.PriceMax == 0 {
			out.PriceMax = nil
		} else {
			v := *patch.PriceMax
			out.PriceMax = &v
		}
	}
	return out
}

// IsZero reports whether the filter carries no constraint at all.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Category == "" && f.PriceMin == nil && f.PriceMax == nil
}

// Equal reports whether two filters describe the same constraints.
// Price bounds compare by value, not by pointer identity.
func (f Filter) Equal(other Filter) bool {
	if f.Search != other.Search || f.Category != other.Category {
		return false
	}
	if !floatPtrEqual(f.PriceMin, other.PriceMin) {
		return false
	}
	return floatPtrEqual(f.PriceMax, other.PriceMax)
}

// QueryValues renders the filter as catalog query parameters. Absent
// fields produce no parameter, mirroring what the API expects.
func (f Filter) QueryValues() url.Values {
	params := url.Values{}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.PriceMin != nil {
		params.Set("price_min", strconv.FormatFloat(*f.PriceMin, 'f', -1, 64))
	}
	if f.PriceMax != nil {
		params.Set("price_max", strconv.FormatFloat(*f.PriceMax, 'f', -1, 64))
	}
	return params
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Float is a convenience for building price-bound pointers in patches
// and tests.
func Float(v float64) *float64 { return &v }

// String is a convenience for building string-field pointers in patches.
func String(v string) *string { return &v }
