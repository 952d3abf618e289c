// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/AleutianAI/vitrine/cmd/vitrine/config"
	"github.com/AleutianAI/vitrine/pkg/ux"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	loginUsername string
	loginPassword string
	outputMode    string // Terminal output style (rich/plain/machine)

	filterCategory string
	filterPriceMin float64
	filterPriceMax float64

	productName     string
	productDesc     string
	productPrice    float64
	productCategory string
	productImageURL string
	productStock    int
	productWeight   int

	orderItems []string

	rootCmd = &cobra.Command{
		Use:   "vitrine",
		Short: "A cli for browsing and managing the vitrine artisan marketplace",
		Long: `Vitrine is a storefront client for the artisan marketplace: browse
				the catalog with plain-language or manual filters, build a cart,
				place orders, and manage products as a signed-in organization.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			// Flag beats config file beats auto-detection.
			switch {
			case outputMode != "":
				ux.SetMode(ux.ParseMode(outputMode))
			case config.Global.Output.Mode != "":
				ux.SetMode(ux.ParseMode(config.Global.Output.Mode))
			default:
				ux.InitMode()
			}
			return nil
		},
	}

	// --- Session ---
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session credential",
		RunE:  runLogin, // Defined in cmd_login.go
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Discard the session credential (safe to repeat)",
		RunE:  runLogout, // Defined in cmd_login.go
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show whether a session credential is present",
		RunE:  runWhoami, // Defined in cmd_login.go
	}

	// --- Shopping ---
	shopCmd = &cobra.Command{
		Use:   "shop",
		Short: "Browse the catalog interactively and build a cart",
		RunE:  runShop, // Defined in cmd_shop.go
	}
	searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "One-shot catalog search using plain language or filters",
		RunE:  runSearch, // Defined in cmd_shop.go
	}
	categoriesCmd = &cobra.Command{
		Use:   "categories",
		Short: "List the catalog categories",
		RunE:  runCategories, // Defined in cmd_shop.go
	}
	orderCmd = &cobra.Command{
		Use:   "order",
		Short: "Place a one-shot order without the interactive session",
		RunE:  runOrder, // Defined in cmd_order.go
	}

	// --- Product Administration ---
	productsCmd = &cobra.Command{
		Use:   "products",
		Short: "Manage your organization's products (requires login)",
	}
	productsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the products your organization manages",
		RunE:  runProductsList, // Defined in cmd_products.go
	}
	productsGetCmd = &cobra.Command{
		Use:   "get [product_id]",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsGet, // Defined in cmd_products.go
	}
	productsCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a new product",
		RunE:  runProductsCreate, // Defined in cmd_products.go
	}
	productsUpdateCmd = &cobra.Command{
		Use:   "update [product_id]",
		Short: "Update an existing product",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsUpdate, // Defined in cmd_products.go
	}
	productsDeleteCmd = &cobra.Command{
		Use:   "delete [product_id]",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsDelete, // Defined in cmd_products.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&outputMode, "output", "",
		"Output style: rich (default), plain, or machine (scripting)")

	// session commands
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username (prompted if omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted if omitted)")
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// shopping commands
	rootCmd.AddCommand(shopCmd)

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&filterCategory, "category", "", "Filter by category")
	searchCmd.Flags().Float64Var(&filterPriceMin, "price-min", 0, "Minimum price filter")
	searchCmd.Flags().Float64Var(&filterPriceMax, "price-max", 0, "Maximum price filter")

	rootCmd.AddCommand(categoriesCmd)

	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().StringArrayVar(&orderItems, "item", nil,
		"Order line as id=quantity (repeatable), e.g. --item 12=2 --item 7=1")

	// product administration
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsGetCmd)
	productsCmd.AddCommand(productsCreateCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsDeleteCmd)

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name")
		c.Flags().StringVar(&productDesc, "description", "", "Product description")
		c.Flags().Float64Var(&productPrice, "price", 0, "Product price")
		c.Flags().StringVar(&productCategory, "product-category", "", "Product category")
		c.Flags().StringVar(&productImageURL, "image-url", "", "Product image URL")
		c.Flags().IntVar(&productStock, "stock", 0, "Units in stock")
		c.Flags().IntVar(&productWeight, "weight", 1, "Weight in grams")
	}
}
