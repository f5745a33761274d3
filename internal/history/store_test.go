// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/types"
)

func TestStore_PopLastReturnsMostRecentFirst(t *testing.T) {
	store, err := NewStore(10, "")
	require.NoError(t, err)

	store.Record(Entry{PlanID: "p1", PlanType: types.PlanTypeRename})
	store.Record(Entry{PlanID: "p2", PlanType: types.PlanTypeMove})

	entry, ok := store.PopLast()
	require.True(t, ok)
	require.Equal(t, "p2", entry.PlanID)

	entry, ok = store.PopLast()
	require.True(t, ok)
	require.Equal(t, "p1", entry.PlanID)

	_, ok = store.PopLast()
	require.False(t, ok)
}

func TestStore_EvictsOldestBeyondCapacity(t *testing.T) {
	store, err := NewStore(2, "")
	require.NoError(t, err)

	store.Record(Entry{PlanID: "p1"})
	store.Record(Entry{PlanID: "p2"})
	store.Record(Entry{PlanID: "p3"})
	require.Equal(t, 2, store.Len())

	entry, ok := store.PopLast()
	require.True(t, ok)
	require.Equal(t, "p3", entry.PlanID)

	entry, ok = store.PopLast()
	require.True(t, ok)
	require.Equal(t, "p2", entry.PlanID)
}

func TestStore_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	store, err := NewStore(10, path)
	require.NoError(t, err)
	store.Record(Entry{
		PlanID:   "p1",
		PlanType: types.PlanTypeTransform,
		Snapshots: []Snapshot{
			{Path: "a.go", Existed: true, Content: []byte("package a\n")},
		},
	})
	require.NoError(t, store.Persist())

	reloaded, err := NewStore(10, path)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())

	entry, ok := reloaded.PopLast()
	require.True(t, ok)
	require.Equal(t, "p1", entry.PlanID)
	require.Equal(t, "package a\n", string(entry.Snapshots[0].Content))
}
