// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package editplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/types"
)

func samplePreview() *Preview {
	plan := types.NewEditPlan(types.PlanTypeRename)
	plan.ID = "plan-1"
	plan.Ops = append(plan.Ops, types.FileOp{
		Kind: types.FileOpTextEdit,
		Path: "a.go",
	})
	plan.Summary = types.PlanSummary{AffectedFiles: 1, AddedLines: 1, RemovedLines: 1}

	return &Preview{
		Plan: plan,
		Contents: map[string]FileContents{
			"a.go": {Old: "package a\n\nfunc Old() {}\n", New: "package a\n\nfunc New() {}\n"},
		},
	}
}

func TestJSONFormatter_IncludesPlanID(t *testing.T) {
	out, err := NewJSONFormatter().Format(samplePreview())
	require.NoError(t, err)
	require.Contains(t, out, "plan-1")
}

func TestDiffFormatter_ProducesHunk(t *testing.T) {
	out, err := NewDiffFormatter().Format(samplePreview())
	require.NoError(t, err)
	require.Contains(t, out, "-func Old()")
	require.Contains(t, out, "+func New()")
}

func TestMarkdownFormatter_ListsOps(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(samplePreview())
	require.NoError(t, err)
	require.Contains(t, out, "a.go")
	require.Contains(t, out, string(types.FileOpTextEdit))
}

func TestMermaidFormatter_TruncatesAtMaxNodes(t *testing.T) {
	p := samplePreview()
	p.Plan.Ops = append(p.Plan.Ops,
		types.FileOp{Kind: types.FileOpCreateFile, Path: "b.go"},
		types.FileOp{Kind: types.FileOpCreateFile, Path: "c.go"},
	)
	out, err := NewMermaidFormatter(1).Format(p)
	require.NoError(t, err)
	require.Contains(t, out, "more")
}

func TestFormatRegistry_UnknownFormat(t *testing.T) {
	_, err := DefaultRegistry.GetFormatter(FormatType("nope"))
	require.ErrorIs(t, err, ErrFormatNotSupported)
}

func TestAutoSelectFormat_SmallPlanIsJSON(t *testing.T) {
	require.Equal(t, FormatJSON, DefaultRegistry.AutoSelectFormat(samplePreview(), 0))
}
