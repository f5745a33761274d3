// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeWalker struct{ files []string }

func (w *fakeWalker) ListFiles(ctx context.Context) ([]string, error) { return w.files, nil }

func TestFindReplacePlanner_ReplacesAcrossMatchingFiles(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"a.go": "package a\n\nconst Name = \"old\"\n",
		"b.go": "package a\n\nfunc F() {}\n",
	}}
	planner := NewFindReplacePlanner(reader, &fakeWalker{files: []string{"a.go", "b.go"}})

	plan, err := planner.Plan(context.Background(), FindReplaceIntent{Find: "old", Replace: "new"})

	require.NoError(t, err)
	require.Equal(t, 1, plan.Summary.AffectedFiles)
	require.Len(t, plan.Ops, 1)
	require.Equal(t, "a.go", plan.Ops[0].Path)
	require.Contains(t, plan.Ops[0].NewText, "\"new\"")
}

func TestFindReplacePlanner_ScopeRestrictsSweep(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"a.go": "package a\n// old\n",
		"b.go": "package a\n// old\n",
	}}
	planner := NewFindReplacePlanner(reader, nil)

	plan, err := planner.Plan(context.Background(), FindReplaceIntent{Find: "old", Replace: "new", Scope: []string{"b.go"}})

	require.NoError(t, err)
	require.Equal(t, 1, plan.Summary.AffectedFiles)
	require.Equal(t, "b.go", plan.Ops[0].Path)
}

func TestFindReplacePlanner_EmptyFindIsRejected(t *testing.T) {
	planner := NewFindReplacePlanner(&fakeReader{}, nil)
	_, err := planner.Plan(context.Background(), FindReplaceIntent{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
