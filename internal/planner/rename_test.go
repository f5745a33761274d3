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

	"github.com/forgekit/refactorctl/internal/types"
)

func TestRenamePlanner_PlansFileRename(t *testing.T) {
	reader := &fakeReader{files: map[string]string{"pkg/old.go": "package pkg\n"}}
	deps := baseDeps(reader)

	rp := NewRenamePlanner(deps)
	plan, err := rp.Plan(context.Background(), RenameIntent{
		Kind:       RenameKindFile,
		TargetPath: "pkg/old.go",
		NewName:    "new.go",
	})
	require.NoError(t, err)
	require.Len(t, plan.Ops, 1)
	require.Equal(t, types.FileOpMoveFile, plan.Ops[0].Kind)
	require.Equal(t, "pkg/new.go", plan.Ops[0].NewPath)
}

func TestRenamePlanner_RejectsMissingTarget(t *testing.T) {
	reader := &fakeReader{files: map[string]string{}}
	rp := NewRenamePlanner(baseDeps(reader))
	_, err := rp.Plan(context.Background(), RenameIntent{TargetPath: "missing.go", NewName: "x.go"})
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRenamePlanner_RejectsCollisionWithoutOverwrite(t *testing.T) {
	reader := &fakeReader{files: map[string]string{
		"pkg/old.go": "package pkg\n",
		"pkg/new.go": "package pkg\n",
	}}
	rp := NewRenamePlanner(baseDeps(reader))
	_, err := rp.Plan(context.Background(), RenameIntent{TargetPath: "pkg/old.go", NewName: "new.go"})
	require.Error(t, err)
}

func TestRenamePlanner_RejectsWouldCreateCycle(t *testing.T) {
	reader := &fakeReader{files: map[string]string{"pkg/old.go": "package pkg\n"}}
	deps := baseDeps(reader)
	deps.Graph = &fakeGraph{cycle: true}
	rp := NewRenamePlanner(deps)
	_, err := rp.Plan(context.Background(), RenameIntent{TargetPath: "pkg/old.go", NewName: "new.go"})
	require.Error(t, err)
}
