// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ProductInput {
	return ProductInput{
		Name:        "Cesta de palha",
		Description: "Hand-woven straw basket",
		Price:       35.5,
		Category:    "baskets",
		ImageURL:    "https://example.org/cesta.jpg",
		StockQty:    10,
		WeightGrams: 450,
	}
}

func TestProductInput_Validate_OK(t *testing.T) {
	require.NoError(t, validInput().Validate())
}

func TestProductInput_Validate_OptionalImageURL(t *testing.T) {
	in := validInput()
	in.ImageURL = ""
	assert.NoError(t, in.Validate())
}

func TestProductInput_Validate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ProductInput)
	}{
		{"missing name", func(p *ProductInput) { p.Name = "" }},
		{"zero price", func(p *ProductInput) { p.Price = 0 }},
		{"negative price", func(p *ProductInput) { p.Price = -1 }},
		{"missing category", func(p *ProductInput) { p.Category = "" }},
		{"malformed image url", func(p *ProductInput) { p.ImageURL = "not a url" }},
		{"negative stock", func(p *ProductInput) { p.StockQty = -1 }},
		{"zero weight", func(p *ProductInput) { p.WeightGrams = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}
