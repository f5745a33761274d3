// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/astcache"
	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/executor"
	"github.com/forgekit/refactorctl/internal/fileservice"
	"github.com/forgekit/refactorctl/internal/history"
	"github.com/forgekit/refactorctl/internal/lock"
	"github.com/forgekit/refactorctl/internal/planner"
	"github.com/forgekit/refactorctl/internal/types"
)

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDispatch_UnknownToolReturnsUnknownTool(t *testing.T) {
	d := New(Deps{})
	_, err := d.Dispatch(context.Background(), "does_not_exist", raw(t, map[string]any{}))
	require.Error(t, err)
	require.Equal(t, errors.KindUnknownTool, errors.KindOf(err))
}

func TestDispatch_MissingArgumentsReturnsInvalidRequest(t *testing.T) {
	d := New(Deps{})
	_, err := d.Dispatch(context.Background(), "search_code", nil)
	require.Error(t, err)
	require.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}

func newCacheWithSymbols() *astcache.Cache {
	c := astcache.New(time.Hour)
	c.Put(&astcache.Entry{
		Path:   "svc/handler.go",
		Digest: "d1",
		Symbols: []types.Symbol{
			{ID: "s1", Name: "HandleRequest", Kind: types.SymbolKindFunction, FilePath: "svc/handler.go",
				Range: types.Range{Start: types.Position{Line: 10}, End: types.Position{Line: 20}}},
			{ID: "s2", Name: "handlerConfig", Kind: types.SymbolKindStruct, FilePath: "svc/handler.go",
				Range: types.Range{Start: types.Position{Line: 1}, End: types.Position{Line: 5}}},
		},
	})
	c.Put(&astcache.Entry{
		Path:   "svc/other.go",
		Digest: "d2",
		Symbols: []types.Symbol{
			{ID: "s3", Name: "HandleOther", Kind: types.SymbolKindFunction, FilePath: "svc/other.go"},
		},
	})
	return c
}

func TestSearchCode_FiltersByNameAndKind(t *testing.T) {
	d := New(Deps{Cache: newCacheWithSymbols()})

	result, err := d.Dispatch(context.Background(), "search_code", raw(t, SearchCodeRequest{Query: "handle"}))
	require.NoError(t, err)
	res := result.(*SearchCodeResult)
	require.Len(t, res.Symbols, 3)

	result, err = d.Dispatch(context.Background(), "search_code", raw(t, SearchCodeRequest{Query: "handle", Kind: "struct"}))
	require.NoError(t, err)
	res = result.(*SearchCodeResult)
	require.Len(t, res.Symbols, 1)
	require.Equal(t, "handlerConfig", res.Symbols[0].Name)
}

func TestSearchCode_EmptyQueryIsRejected(t *testing.T) {
	d := New(Deps{Cache: newCacheWithSymbols()})
	_, err := d.Dispatch(context.Background(), "search_code", raw(t, SearchCodeRequest{}))
	require.Error(t, err)
	require.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}

func TestInspectCode_FindsDefinitionAtPosition(t *testing.T) {
	graph := types.NewGlobalGraph()
	graph.Set("other.go", &types.ImportGraph{
		SourceFile: "other.go",
		Imports:    []types.ImportInfo{{ModulePath: "svc/handler.go"}},
	})
	d := New(Deps{Cache: newCacheWithSymbols(), Graph: graph})

	result, err := d.Dispatch(context.Background(), "inspect_code", raw(t, InspectCodeRequest{
		Path:     "svc/handler.go",
		Position: types.Position{Line: 12},
	}))
	require.NoError(t, err)
	res := result.(*InspectCodeResult)
	require.NotNil(t, res.Definition)
	require.Equal(t, "HandleRequest", res.Definition.Name)
	require.Contains(t, res.References, "other.go")
}

func TestRenameAll_SymbolTargetIsUnsupported(t *testing.T) {
	d := New(Deps{})
	_, err := d.Dispatch(context.Background(), "rename_all", raw(t, RenameAllRequest{
		Target:  &Target{Kind: TargetKindSymbol, Path: "svc/handler.go"},
		NewName: "HandleRequestV2",
	}))
	require.Error(t, err)
	require.Equal(t, errors.KindUnsupported, errors.KindOf(err))
}

func TestRenameAll_MissingNewNameIsInvalidRequest(t *testing.T) {
	d := New(Deps{})
	_, err := d.Dispatch(context.Background(), "rename_all", raw(t, RenameAllRequest{
		Target: &Target{Kind: TargetKindFile, Path: "a.go"},
	}))
	require.Error(t, err)
	require.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}

// fakeReader is a minimal planner.FileReader over an in-memory file set.
type fakeReader struct{ files map[string]string }

func (f *fakeReader) Read(ctx context.Context, path string) ([]byte, string, error) {
	c, ok := f.files[path]
	if !ok {
		return nil, "", errors.New(errors.KindNotFound, "not found: "+path)
	}
	return []byte(c), fileservice.Digest([]byte(c)), nil
}

func (f *fakeReader) Exists(ctx context.Context, path string) bool {
	_, ok := f.files[path]
	return ok
}

// fakeWalker is a minimal planner.ProjectWalker.
type fakeWalker struct{ paths []string }

func (w *fakeWalker) ListFiles(ctx context.Context) ([]string, error) { return w.paths, nil }

// fakeExecFiles adapts fakeReader's backing map into an executor.Files.
type fakeExecFiles struct{ content map[string][]byte }

func (f *fakeExecFiles) Read(ctx context.Context, path string) (*fileservice.ReadResult, error) {
	c, ok := f.content[path]
	if !ok {
		return nil, errors.New(errors.KindNotFound, "not found: "+path)
	}
	return &fileservice.ReadResult{Path: path, Content: c, Digest: fileservice.Digest(c)}, nil
}

func (f *fakeExecFiles) Write(ctx context.Context, path string, newContent []byte, expectedDigest string) (*fileservice.WriteResult, error) {
	existing, exists := f.content[path]
	if expectedDigest != "" && (!exists || fileservice.Digest(existing) != expectedDigest) {
		return nil, errors.New(errors.KindPreconditionFailed, "digest mismatch: "+path)
	}
	f.content[path] = newContent
	return &fileservice.WriteResult{Path: path, Digest: fileservice.Digest(newContent)}, nil
}

func (f *fakeExecFiles) Delete(ctx context.Context, path string, expectedDigest string) error {
	delete(f.content, path)
	return nil
}

func (f *fakeExecFiles) Rename(ctx context.Context, oldPath, newPath string) error {
	f.content[newPath] = f.content[oldPath]
	delete(f.content, oldPath)
	return nil
}

func (f *fakeExecFiles) MoveFile(ctx context.Context, oldPath, newPath string, similarity float64) error {
	return f.Rename(ctx, oldPath, newPath)
}

func TestWorkspace_FindReplaceAppliesAcrossFiles(t *testing.T) {
	files := map[string]string{
		"a.go": "package a\n\nconst Name = \"old\"\n",
	}
	reader := &fakeReader{files: files}
	frPlanner := planner.NewFindReplacePlanner(reader, &fakeWalker{paths: []string{"a.go"}})

	execFiles := &fakeExecFiles{content: map[string][]byte{"a.go": []byte(files["a.go"])}}
	locks := lock.New("dispatcher-test")
	exec := executor.NewPlanExecutor(executor.Deps{Locks: locks, Files: execFiles})

	d := New(Deps{FindReplace: frPlanner, Executor: exec})

	result, err := d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{
		Operation: WorkspaceFindReplace,
		Find:      "old",
		Replace:   "new",
	}))
	require.NoError(t, err)
	res := result.(*WorkspaceResult)
	require.Nil(t, res.Plan)
	require.Contains(t, string(execFiles.content["a.go"]), "\"new\"")
}

func TestWorkspace_FindReplaceDryRunReturnsPlanWithoutApplying(t *testing.T) {
	files := map[string]string{"a.go": "package a\n// old\n"}
	reader := &fakeReader{files: files}
	frPlanner := planner.NewFindReplacePlanner(reader, &fakeWalker{paths: []string{"a.go"}})

	d := New(Deps{FindReplace: frPlanner})

	result, err := d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{
		Operation: WorkspaceFindReplace,
		Find:      "old",
		Replace:   "new",
		Options:   Options{DryRun: true},
	}))
	require.NoError(t, err)
	res := result.(*WorkspaceResult)
	require.NotNil(t, res.Plan)
	require.Len(t, res.Plan.Ops, 1)
}

func TestWorkspace_UndoLastRestoresPreviousContent(t *testing.T) {
	files := map[string]string{"a.go": "package a\n\nconst Name = \"old\"\n"}
	reader := &fakeReader{files: files}
	frPlanner := planner.NewFindReplacePlanner(reader, &fakeWalker{paths: []string{"a.go"}})

	execFiles := &fakeExecFiles{content: map[string][]byte{"a.go": []byte(files["a.go"])}}
	locks := lock.New("dispatcher-test")
	store, err := history.NewStore(10, "")
	require.NoError(t, err)
	exec := executor.NewPlanExecutor(executor.Deps{Locks: locks, Files: execFiles, History: store})

	d := New(Deps{FindReplace: frPlanner, Executor: exec, History: store})

	_, err = d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{
		Operation: WorkspaceFindReplace,
		Find:      "old",
		Replace:   "new",
	}))
	require.NoError(t, err)
	require.Contains(t, string(execFiles.content["a.go"]), "\"new\"")

	result, err := d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{Operation: WorkspaceUndoLast}))
	require.NoError(t, err)
	res := result.(*WorkspaceResult)
	require.Contains(t, res.AppliedFiles, "a.go")
	require.Equal(t, files["a.go"], string(execFiles.content["a.go"]))
}

func TestWorkspace_UndoLastWithEmptyHistoryIsNotFound(t *testing.T) {
	store, err := history.NewStore(10, "")
	require.NoError(t, err)
	d := New(Deps{History: store, Executor: executor.NewPlanExecutor(executor.Deps{Locks: lock.New("t"), Files: &fakeExecFiles{content: map[string][]byte{}}})})

	_, err = d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{Operation: WorkspaceUndoLast}))
	require.Error(t, err)
	require.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestWorkspace_DependencyExtractionIsUnsupported(t *testing.T) {
	d := New(Deps{})
	_, err := d.Dispatch(context.Background(), "workspace", raw(t, WorkspaceRequest{
		Operation: WorkspaceOperation("extract_dependencies"),
	}))
	require.Error(t, err)
	require.Equal(t, errors.KindUnsupported, errors.KindOf(err))
}
