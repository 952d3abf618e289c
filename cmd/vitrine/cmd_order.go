// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/vitrine/pkg/cart"
	"github.com/AleutianAI/vitrine/pkg/catalog"
	"github.com/AleutianAI/vitrine/pkg/ux"
)

// productGetter is the catalog slice stageOrder resolves ids against.
// Implemented by *storefront.Client.
type productGetter interface {
	GetProduct(ctx context.Context, id int64) (catalog.Product, error)
}

// stageOrder resolves each requested id against the catalog and loads
// the cart, acknowledging every line with the quantity actually added.
func stageOrder(ctx context.Context, src productGetter, bag *cart.Aggregator, notifier ux.Notifier, wanted []catalog.OrderItem) error {
	for _, item := range wanted {
		product, err := src.GetProduct(ctx, item.ItemID)
		if err != nil {
			return fmt.Errorf("product %d: %w", item.ItemID, err)
		}
		for i := 0; i < item.Quantity; i++ {
			bag.Add(product)
		}
		notifier.ItemAdded(product.Name, item.Quantity)
	}
	return nil
}

// runOrder places a one-shot order from --item flags. The lines go
// through a cart aggregator so the order carries exactly the same
// shape as an interactive checkout.
func runOrder(cmd *cobra.Command, args []string) error {
	a := newApp()
	if err := a.requireLogin(); err != nil {
		return err
	}

	wanted, err := parseOrderItems(orderItems)
	if err != nil {
		ux.Error(err.Error())
		return err
	}

	ctx := cmd.Context()
	notifier := ux.NewTerminalNotifier()

	bag := cart.New(nil)
	if err := stageOrder(ctx, a.client, bag, notifier, wanted); err != nil {
		notifier.Problem(commandErrorMessage(err))
		return err
	}

	var confirmationID int64
	err = ux.WithSpinner("Placing the order", func() error {
		conf, err := a.client.CreateOrder(ctx, bag.SnapshotForCheckout())
		if err != nil {
			return err
		}
		confirmationID = conf.ID
		return nil
	})
	if err != nil {
		// The cart is in-process only here, but the contract holds: no
		// clear until the order is confirmed.
		notifier.Problem(commandErrorMessage(err))
		return err
	}

	bag.Clear()
	notifier.OrderPlaced(confirmationID)
	return nil
}
