// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"time"
)

type VitrineConfig struct {
	// API: where the storefront backend lives
	API APIConfig `yaml:"api"`

	// Store: local state such as the persisted session credential
	Store StoreConfig `yaml:"store"`

	// Output: terminal output style
	Output OutputConfig `yaml:"output"`

	// Shop: interactive browsing behavior
	Shop ShopConfig `yaml:"shop"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`        // e.g. http://localhost:8000
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-request timeout
}

type StoreConfig struct {
	// Dir holds the credential file. Empty means ~/.vitrine.
	Dir string `yaml:"dir"`
}

type OutputConfig struct {
	// Mode is rich, plain, or machine. Empty means auto-detect.
	Mode string `yaml:"mode"`
}

type ShopConfig struct {
	// PageSize is how many products each catalog request asks for.
	PageSize int `yaml:"page_size"`

	// DebounceMillis is the quiescence window for manual filter edits.
	DebounceMillis int `yaml:"debounce_millis"`
}

// Timeout returns the API timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func DefaultConfig() VitrineConfig {
	var storeDir string
	if home, err := os.UserHomeDir(); err == nil {
		storeDir = filepath.Join(home, ".vitrine")
	}
	return VitrineConfig{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 30,
		},
		Store: StoreConfig{
			Dir: storeDir,
		},
		Output: OutputConfig{
			Mode: "",
		},
		Shop: ShopConfig{
			PageSize:       50,
			DebounceMillis: 300,
		},
	}
}
