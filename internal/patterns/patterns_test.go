// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package patterns

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/astcache"
	"github.com/forgekit/refactorctl/internal/types"
)

func TestFindCycles_DetectsTwoFileCycle(t *testing.T) {
	g := types.NewGlobalGraph()
	g.Set("a.go", &types.ImportGraph{SourceFile: "a.go", Imports: []types.ImportInfo{{ModulePath: "b.go"}}})
	g.Set("b.go", &types.ImportGraph{SourceFile: "b.go", Imports: []types.ImportInfo{{ModulePath: "a.go"}}})
	g.Set("c.go", &types.ImportGraph{SourceFile: "c.go"})

	cycles, err := NewCycleFinder(g).FindCycles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, cycles[0].Files)
}

func TestFindCycles_NoCycleWhenAcyclic(t *testing.T) {
	g := types.NewGlobalGraph()
	g.Set("a.go", &types.ImportGraph{SourceFile: "a.go", Imports: []types.ImportInfo{{ModulePath: "b.go"}}})
	g.Set("b.go", &types.ImportGraph{SourceFile: "b.go"})

	cycles, err := NewCycleFinder(g).FindCycles(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, cycles)
}

func TestFindUnused_FlagsUnreferencedUnexported(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nfunc helper() {}\n"), 0644))

	cache := astcache.New(0)
	cache.Put(&astcache.Entry{
		Path: "a.go",
		Symbols: []types.Symbol{
			{Name: "helper", Kind: types.SymbolKindFunction, FilePath: "a.go", IsPublic: false},
		},
	})

	dead, err := NewDeadSymbolFinder(cache, root).FindUnused(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	require.Equal(t, "helper", dead[0].Name)
}

func TestFindUnused_SkipsExportedByDefault(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nfunc Helper() {}\n"), 0644))

	cache := astcache.New(0)
	cache.Put(&astcache.Entry{
		Path: "a.go",
		Symbols: []types.Symbol{
			{Name: "Helper", Kind: types.SymbolKindFunction, FilePath: "a.go", IsPublic: true},
		},
	})

	dead, err := NewDeadSymbolFinder(cache, root).FindUnused(context.Background(), "", nil)
	require.NoError(t, err)
	require.Empty(t, dead)
}
