// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/fileservice"
	"github.com/forgekit/refactorctl/internal/lock"
	"github.com/forgekit/refactorctl/internal/trust"
	"github.com/forgekit/refactorctl/internal/types"
)

func newTestClassifier() *trust.Classifier {
	return trust.NewClassifier(nil)
}

// fakeFiles is an in-memory stand-in for fileservice.Service, enforcing
// the same precondition semantics so PlanExecutor's apply/rollback logic
// can be exercised without touching a real filesystem.
type fakeFiles struct {
	content         map[string][]byte
	movedSimilarity map[string]float64
}

func newFakeFiles(seed map[string]string) *fakeFiles {
	f := &fakeFiles{content: map[string][]byte{}}
	for k, v := range seed {
		f.content[k] = []byte(v)
	}
	return f
}

func (f *fakeFiles) Read(ctx context.Context, path string) (*fileservice.ReadResult, error) {
	c, ok := f.content[path]
	if !ok {
		return nil, errors.New(errors.KindNotFound, "not found: "+path)
	}
	return &fileservice.ReadResult{Path: path, Content: c, Digest: fileservice.Digest(c)}, nil
}

func (f *fakeFiles) Write(ctx context.Context, path string, newContent []byte, expectedDigest string) (*fileservice.WriteResult, error) {
	existing, exists := f.content[path]
	switch {
	case expectedDigest == "" && exists:
		return nil, errors.New(errors.KindPreconditionFailed, "already exists: "+path)
	case expectedDigest != "" && !exists:
		return nil, errors.New(errors.KindPreconditionFailed, "does not exist: "+path)
	case expectedDigest != "" && exists && fileservice.Digest(existing) != expectedDigest:
		return nil, errors.New(errors.KindPreconditionFailed, "digest mismatch: "+path)
	}
	f.content[path] = newContent
	return &fileservice.WriteResult{Path: path, Digest: fileservice.Digest(newContent), BytesWritten: int64(len(newContent)), Created: !exists}, nil
}

func (f *fakeFiles) Delete(ctx context.Context, path string, expectedDigest string) error {
	existing, exists := f.content[path]
	if !exists {
		return errors.New(errors.KindNotFound, "not found: "+path)
	}
	if expectedDigest != "" && fileservice.Digest(existing) != expectedDigest {
		return errors.New(errors.KindPreconditionFailed, "digest mismatch: "+path)
	}
	delete(f.content, path)
	return nil
}

func (f *fakeFiles) Rename(ctx context.Context, oldPath, newPath string) error {
	c, ok := f.content[oldPath]
	if !ok {
		return errors.New(errors.KindNotFound, "not found: "+oldPath)
	}
	if _, exists := f.content[newPath]; exists {
		return errors.New(errors.KindCollision, "already exists: "+newPath)
	}
	delete(f.content, oldPath)
	f.content[newPath] = c
	return nil
}

// MoveFile records the similarity PlanExecutor computed for each move, so
// tests can assert on the classification without a real git runner.
func (f *fakeFiles) MoveFile(ctx context.Context, oldPath, newPath string, similarity float64) error {
	if f.movedSimilarity == nil {
		f.movedSimilarity = map[string]float64{}
	}
	f.movedSimilarity[newPath] = similarity
	return f.Rename(ctx, oldPath, newPath)
}

type fakeLocks struct{}

func (fakeLocks) AcquireMany(ctx context.Context, paths []string, mode lock.Mode) (*lock.Guard, error) {
	mgr := lock.New("test-session")
	return mgr.AcquireMany(ctx, paths, mode)
}

type fakeCache struct{ invalidated []string }

func (c *fakeCache) InvalidatePaths(paths []string) { c.invalidated = append(c.invalidated, paths...) }

func newExecutor(files *fakeFiles, cache *fakeCache) *PlanExecutor {
	return NewPlanExecutor(Deps{
		Locks: fakeLocks{},
		Files: files,
		Cache: cache,
	})
}

func textEditPlan(path, oldText, newText string) *types.EditPlan {
	plan := types.NewEditPlan(types.PlanTypeTransform)
	plan.Ops = append(plan.Ops, types.FileOp{Kind: types.FileOpTextEdit, Path: path, OldText: oldText, NewText: newText})
	plan.FileChecksums = map[string]string{path: fileservice.Digest([]byte(oldText))}
	return plan
}

func TestApply_TextEditSucceeds(t *testing.T) {
	files := newFakeFiles(map[string]string{"a.go": "package a\n"})
	cache := &fakeCache{}
	exec := newExecutor(files, cache)

	plan := textEditPlan("a.go", "package a\n", "package a\n\nfunc F() {}\n")
	result, err := exec.Apply(context.Background(), plan, ApplyOptions{})

	require.NoError(t, err)
	require.Equal(t, []string{"a.go"}, result.AppliedFiles)
	require.Equal(t, "package a\n\nfunc F() {}\n", string(files.content["a.go"]))
	require.Contains(t, cache.invalidated, "a.go")
}

func TestApply_DryRunShortCircuitsAfterPreconditions(t *testing.T) {
	files := newFakeFiles(map[string]string{"a.go": "package a\n"})
	exec := newExecutor(files, &fakeCache{})

	plan := textEditPlan("a.go", "package a\n", "package a\n\nfunc F() {}\n")
	result, err := exec.Apply(context.Background(), plan, ApplyOptions{DryRun: true})

	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, "package a\n", string(files.content["a.go"]))
}

func TestApply_PreconditionMismatchAborts(t *testing.T) {
	files := newFakeFiles(map[string]string{"a.go": "package a\n// changed\n"})
	exec := newExecutor(files, &fakeCache{})

	plan := textEditPlan("a.go", "package a\n", "package a\n\nfunc F() {}\n")
	_, err := exec.Apply(context.Background(), plan, ApplyOptions{})

	require.Error(t, err)
	require.Equal(t, errors.KindPreconditionFailed, errors.KindOf(err))
	require.Equal(t, "package a\n// changed\n", string(files.content["a.go"]))
}

func TestApply_CreateThenEditOrdering(t *testing.T) {
	files := newFakeFiles(nil)
	exec := newExecutor(files, &fakeCache{})

	plan := types.NewEditPlan(types.PlanTypeExtract)
	plan.Ops = []types.FileOp{
		{Kind: types.FileOpTextEdit, Path: "new.go", OldText: "package a\n", NewText: "package a\n\nfunc Helper() {}\n"},
		{Kind: types.FileOpCreateFile, Path: "new.go", NewText: "package a\n"},
	}
	plan.FileChecksums = map[string]string{"new.go": ""}

	result, err := exec.Apply(context.Background(), plan, ApplyOptions{})
	require.NoError(t, err)
	require.Contains(t, result.AppliedFiles, "new.go")
	require.Equal(t, "package a\n\nfunc Helper() {}\n", string(files.content["new.go"]))
}

func TestApply_MoveFileCreatesAndDeletes(t *testing.T) {
	files := newFakeFiles(map[string]string{"old.go": "package a\n"})
	exec := newExecutor(files, &fakeCache{})

	plan := types.NewEditPlan(types.PlanTypeMove)
	plan.Ops = []types.FileOp{{Kind: types.FileOpMoveFile, Path: "old.go", NewPath: "new.go"}}

	result, err := exec.Apply(context.Background(), plan, ApplyOptions{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"old.go", "new.go"}, result.AppliedFiles)
	_, stillExists := files.content["old.go"]
	require.False(t, stillExists)
	require.Equal(t, "package a\n", string(files.content["new.go"]))
}

func TestApply_MoveFileAfterHeavyEditIsClassifiedBelowRenameThreshold(t *testing.T) {
	files := newFakeFiles(map[string]string{"old.go": "package a\n\nfunc Original() {}\n"})
	exec := newExecutor(files, &fakeCache{})

	plan := types.NewEditPlan(types.PlanTypeMove)
	plan.Ops = []types.FileOp{
		{Kind: types.FileOpTextEdit, Path: "old.go", OldText: "package a\n\nfunc Original() {}\n", NewText: "package z\n\nfunc TotallyDifferent(x, y int) int {\n\treturn x + y\n}\n"},
		{Kind: types.FileOpMoveFile, Path: "old.go", NewPath: "new.go"},
	}
	plan.FileChecksums = map[string]string{"old.go": fileservice.Digest([]byte("package a\n\nfunc Original() {}\n"))}

	result, err := exec.Apply(context.Background(), plan, ApplyOptions{})
	require.NoError(t, err)
	require.Contains(t, result.AppliedFiles, "new.go")
	require.Less(t, files.movedSimilarity["new.go"], fileservice.RenameSimilarityThreshold)
}

func TestApply_MoveFileWithoutEditIsClassifiedAsPureRename(t *testing.T) {
	files := newFakeFiles(map[string]string{"old.go": "package a\n"})
	exec := newExecutor(files, &fakeCache{})

	plan := types.NewEditPlan(types.PlanTypeMove)
	plan.Ops = []types.FileOp{{Kind: types.FileOpMoveFile, Path: "old.go", NewPath: "new.go"}}

	result, err := exec.Apply(context.Background(), plan, ApplyOptions{})
	require.NoError(t, err)
	require.Contains(t, result.AppliedFiles, "new.go")
	require.Equal(t, 1.0, files.movedSimilarity["new.go"])
}

func TestApply_FailureRollsBackEarlierOps(t *testing.T) {
	files := newFakeFiles(map[string]string{
		"a.go": "package a\n",
		"b.go": "package a\n// stale\n",
	})
	exec := newExecutor(files, &fakeCache{})

	plan := types.NewEditPlan(types.PlanTypeTransform)
	plan.Ops = []types.FileOp{
		{Kind: types.FileOpTextEdit, Path: "a.go", OldText: "package a\n", NewText: "package a\n\nfunc F() {}\n"},
		{Kind: types.FileOpTextEdit, Path: "b.go", OldText: "package a\n", NewText: "package a\n\nfunc G() {}\n"},
	}
	// b.go has no precondition checksum, so its stale content is caught
	// only when its TextEdit is written, after a.go's edit has applied.
	plan.FileChecksums = map[string]string{
		"a.go": fileservice.Digest([]byte("package a\n")),
	}

	_, err := exec.Apply(context.Background(), plan, ApplyOptions{})
	require.Error(t, err)
	require.Equal(t, "package a\n", string(files.content["a.go"]))
	require.Equal(t, "package a\n// stale\n", string(files.content["b.go"]))
}

func TestApply_PrivilegedPathRejectedWithoutOverwrite(t *testing.T) {
	files := newFakeFiles(map[string]string{"internal/secrets/vault.go": "package secrets\n"})
	exec := NewPlanExecutor(Deps{
		Locks: fakeLocks{},
		Files: files,
		Cache: &fakeCache{},
		Trust: newTestClassifier(),
	})

	plan := textEditPlan("internal/secrets/vault.go", "package secrets\n", "package secrets\n// updated\n")
	_, err := exec.Apply(context.Background(), plan, ApplyOptions{})

	require.Error(t, err)
	require.Equal(t, errors.KindSandboxViolation, errors.KindOf(err))
}
