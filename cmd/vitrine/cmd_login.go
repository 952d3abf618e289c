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

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/vitrine/pkg/ux"
)

// runLogin signs the user in and persists the credential for later runs.
func runLogin(cmd *cobra.Command, args []string) error {
	a := newApp()

	username := strings.TrimSpace(loginUsername)
	password := loginPassword

	if username == "" || password == "" {
		if !ux.IsInteractive() {
			return errors.New("username and password are required in non-interactive mode")
		}
		if err := promptCredentials(&username, &password); err != nil {
			return err
		}
	}

	err := ux.WithSpinner("Signing in", func() error {
		return a.session.Login(cmd.Context(), username, password)
	})
	if err != nil {
		return renderCommandError(err)
	}

	ux.Success(fmt.Sprintf("Signed in as %s.", username))
	return nil
}

// promptCredentials collects missing fields with an interactive form.
func promptCredentials(username, password *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("login cancelled: %w", err)
	}
	*username = strings.TrimSpace(*username)
	return nil
}

// runLogout discards the credential. Running it signed-out is fine.
func runLogout(cmd *cobra.Command, args []string) error {
	a := newApp()
	a.session.Logout()
	ux.Success("Signed out.")
	return nil
}

// runWhoami reports the session state without contacting the server.
func runWhoami(cmd *cobra.Command, args []string) error {
	a := newApp()
	if a.session.Current().Authenticated {
		ux.Success("A session credential is present.")
		return nil
	}
	ux.Info("Not signed in.")
	return nil
}
