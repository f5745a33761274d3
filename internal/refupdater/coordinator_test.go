// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package refupdater

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/types"
)

type fakePlugin struct {
	moveCount int
}

func (f *fakePlugin) Metadata() plugin.Metadata { return plugin.Metadata{Name: "fake"} }

func (f *fakePlugin) Parse(ctx context.Context, content []byte, filePath string, opts types.ParseOptions) (*types.ParsedSource, error) {
	return &types.ParsedSource{}, nil
}

func (f *fakePlugin) MoveImport(ctx context.Context, content []byte, oldPath, newPath string) (*plugin.RewriteResult, error) {
	if f.moveCount == 0 {
		return &plugin.RewriteResult{NewContent: content, ChangeCount: 0}, nil
	}
	return &plugin.RewriteResult{NewContent: []byte("import \"" + newPath + "\"\n"), ChangeCount: f.moveCount}, nil
}

type fakeResolver struct{ p plugin.LanguagePlugin }

func (r *fakeResolver) PluginFor(path string) (plugin.LanguagePlugin, bool) { return r.p, true }

type fakeWalker struct{ files []string }

func (w *fakeWalker) ListFiles(ctx context.Context) ([]string, error) { return w.files, nil }

type fakeReader struct{ content map[string][]byte }

func (r *fakeReader) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return r.content[path], nil
}

type fakeImportParser struct{ contains bool }

func (p *fakeImportParser) ParseImports(ctx context.Context, content []byte) ([]string, error) {
	return nil, nil
}

func (p *fakeImportParser) ContainsImport(ctx context.Context, content []byte, module string) (bool, error) {
	return p.contains, nil
}

type fullFakePlugin struct {
	*fakePlugin
	*fakeImportParser
}

func TestUpdateReferences_RewritesMatchingFile(t *testing.T) {
	p := &fullFakePlugin{
		fakePlugin:       &fakePlugin{moveCount: 1},
		fakeImportParser: &fakeImportParser{contains: true},
	}
	resolver := &fakeResolver{p: p}
	walker := &fakeWalker{files: []string{"caller.go"}}
	reader := &fakeReader{content: map[string][]byte{"caller.go": []byte("import \"old/pkg\"\n")}}

	u := New(resolver, walker, reader)
	res, err := u.UpdateReferences(context.Background(), Request{OldPath: "old/pkg", NewPath: "new/pkg"})
	require.NoError(t, err)
	require.Len(t, res.Edits, 1)
	require.Equal(t, "caller.go", res.Edits[0].Path)
	require.Contains(t, res.Edits[0].NewContent, "new/pkg")
	require.Equal(t, StrategyPluginScan, res.Strategy)
}

func TestUpdateReferences_SkipsNonMatchingFile(t *testing.T) {
	p := &fullFakePlugin{
		fakePlugin:       &fakePlugin{moveCount: 1},
		fakeImportParser: &fakeImportParser{contains: false},
	}
	resolver := &fakeResolver{p: p}
	walker := &fakeWalker{files: []string{"unrelated.go"}}
	reader := &fakeReader{content: map[string][]byte{"unrelated.go": []byte("package x\n")}}

	u := New(resolver, walker, reader)
	res, err := u.UpdateReferences(context.Background(), Request{OldPath: "old/pkg", NewPath: "new/pkg"})
	require.NoError(t, err)
	require.Empty(t, res.Edits)
}

func TestUpdateReferences_RejectsEmptyRequest(t *testing.T) {
	u := New(&fakeResolver{}, &fakeWalker{}, &fakeReader{})
	_, err := u.UpdateReferences(context.Background(), Request{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
