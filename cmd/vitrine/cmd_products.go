// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/ux"
)

// runProductsList shows the signed-in organization's products.
func runProductsList(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	products, err := a.client.ListProducts(cmd.Context())
	if err != nil {
		return renderCommandError(err)
	}
	if len(products) == 0 {
		ux.Info("No products yet. Create one with 'vitrine products create'.")
		return nil
	}

	fmt.Println(renderProductTable(products))
	return nil
}

// runProductsGet shows one product in detail.
func runProductsGet(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	product, err := a.client.GetProduct(cmd.Context(), id)
	if err != nil {
		return renderCommandError(err)
	}

	ux.Title(product.Name)
	if product.Description != "" {
		ux.Info(product.Description)
	}
	ux.Info(fmt.Sprintf("price: %s", ux.FormatPrice(product.Price)))
	ux.Info(fmt.Sprintf("category: %s", product.Category))
	ux.Info(fmt.Sprintf("stock: %d  weight: %dg", product.StockQty, product.WeightGrams))
	if product.ImageURL != "" {
		ux.Muted(product.ImageURL)
	}
	return nil
}

// runProductsCreate validates the flags locally, then creates.
func runProductsCreate(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	created, err := a.client.CreateProduct(cmd.Context(), productInputFromFlags())
	if err != nil {
		return renderCommandError(err)
	}

	ux.Success(fmt.Sprintf("Created product #%d (%s).", created.ID, created.Name))
	return nil
}

// runProductsUpdate replaces a product's fields.
func runProductsUpdate(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	updated, err := a.client.UpdateProduct(cmd.Context(), id, productInputFromFlags())
	if err != nil {
		return renderCommandError(err)
	}

	ux.Success(fmt.Sprintf("Updated product #%d (%s).", updated.ID, updated.Name))
	return nil
}

// runProductsDelete removes a product.
func runProductsDelete(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := parseProductID(args[0])
	if err != nil {
		return err
	}

	if err := a.client.DeleteProduct(cmd.Context(), id); err != nil {
		return renderCommandError(err)
	}

	ux.Success(fmt.Sprintf("Deleted product #%d.", id))
	return nil
}

// --- helpers ---

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

func productInputFromFlags() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        productName,
		Description: productDesc,
		Price:       productPrice,
		Category:    productCategory,
		ImageURL:    productImageURL,
		StockQty:    productStock,
		WeightGrams: productWeight,
	}
}

// renderProductTable renders products as a bordered table.
func renderProductTable(products []catalog.Product) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Category", "Price", "Stock"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ID, p.Name, p.Category, ux.FormatPrice(p.Price), p.StockQty})
	}
	return t.Render()
}
