// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage is the per-user record store for saved themes.
//
// Records live in a single sqlite table keyed by collection, using the pure
// Go modernc.org/sqlite driver. Adds never check for duplicates.
//
// # Usage
//
//	store, err := storage.Open(cfg.Storage.DatabasePath)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_, err = store.Add(ctx, storage.CollectionSavedThemes, storage.Record{
//	    Name:   "rainy night",
//	    Prompt: "rainy night in Tokyo",
//	})
package storage
