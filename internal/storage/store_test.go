// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "lofi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddFillsIDAndTime(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	rec, err := s.Add(ctx, CollectionSavedThemes, Record{Name: "sunset vibes", Prompt: "sunset vibes chill"})
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.True(t, rec.CreatedAt.After(before))

	got, err := s.Get(ctx, CollectionSavedThemes, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.Prompt, got.Prompt)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		_, err := s.Add(ctx, CollectionSavedThemes, Record{Name: name, Prompt: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := s.Add(ctx, "other", Record{Name: "elsewhere"})
	require.NoError(t, err)

	recs, err := s.List(ctx, CollectionSavedThemes, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "third", recs[0].Name)
	assert.Equal(t, "first", recs[2].Name)

	limited, err := s.List(ctx, CollectionSavedThemes, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_DuplicatesAllowed(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Add(ctx, CollectionSavedThemes, Record{Name: "rain", Prompt: "rain"})
		require.NoError(t, err)
	}
	n, err := s.Count(ctx, CollectionSavedThemes)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_Delete(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	rec, err := s.Add(ctx, CollectionSavedThemes, Record{Name: "forest"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, CollectionSavedThemes, rec.ID))
	assert.ErrorIs(t, s.Delete(ctx, CollectionSavedThemes, rec.ID), ErrNotFound)

	_, err = s.Get(ctx, CollectionSavedThemes, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_BlankCollection(t *testing.T) {
	s := openTemp(t)
	_, err := s.Add(context.Background(), "  ", Record{Name: "x"})
	assert.ErrorIs(t, err, ErrNoCollection)
}

func TestStore_ClosedStore(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Add(context.Background(), CollectionSavedThemes, Record{Name: "x"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.List(context.Background(), CollectionSavedThemes, 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lofi.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Add(ctx, CollectionSavedThemes, Record{Name: "beach", Prompt: "beach sunset"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	recs, err := s.List(ctx, CollectionSavedThemes, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "beach sunset", recs[0].Prompt)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, CollectionSavedThemes, Record{Name: "late night", Prompt: "coding"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.Count(ctx, CollectionSavedThemes)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
