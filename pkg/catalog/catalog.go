// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog defines the storefront domain model: products, the
// filter specification driving catalog queries, and the order wire
// shapes. It carries no behavior beyond filter merging and payload
// validation; all I/O lives in pkg/storefront.
package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Product is a catalog item as returned by the storefront API.
//
// The full record doubles as the cart's display snapshot: the fields are
// captured at add-time and are never refreshed by the cart.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	ImageURL       string  `json:"image_url"`
	StockQty       int     `json:"stock_qty"`
	WeightGrams    int     `json:"weight_grams"`
	OrganizationID int64   `json:"organization_id"`
}

// ProductInput is the create/update payload for the authenticated
// catalog CRUD. The server assigns ID and OrganizationID.
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	StockQty    int     `json:"stock_qty" validate:"gte=0"`
	WeightGrams int     `json:"weight_grams" validate:"gte=1"`
}

// OrderItem is the wire shape of one cart line in an order submission.
type OrderItem struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// validate is the shared validator instance. go-playground/validator
// caches struct metadata, so a single instance is the intended usage.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the payload against its validation tags and returns a
// user-presentable error for the first violated rule.
func (p ProductInput) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Errorf("invalid product %s: failed %q rule", f.Field(), f.Tag())
	}
	return fmt.Errorf("invalid product: %w", err)
}
