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

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/refupdater"
	"github.com/forgekit/refactorctl/internal/types"
)

type fakeReader struct {
	files map[string]string
}

func (f *fakeReader) Read(ctx context.Context, path string) ([]byte, string, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, "", ErrTargetNotFound
	}
	return []byte(content), "digest:" + path, nil
}

func (f *fakeReader) Exists(ctx context.Context, path string) bool {
	_, ok := f.files[path]
	return ok
}

type fakePlanPlugin struct{}

func (p *fakePlanPlugin) Metadata() plugin.Metadata { return plugin.Metadata{Name: "fake"} }

func (p *fakePlanPlugin) Parse(ctx context.Context, content []byte, filePath string, opts types.ParseOptions) (*types.ParsedSource, error) {
	return &types.ParsedSource{}, nil
}

type fakeResolver struct{ p plugin.LanguagePlugin }

func (r *fakeResolver) PluginFor(path string) (plugin.LanguagePlugin, bool) { return r.p, true }

type fakeUpdater struct {
	result *refupdater.Result
	err    error
}

func (u *fakeUpdater) UpdateReferences(ctx context.Context, req refupdater.Request) (*refupdater.Result, error) {
	return u.result, u.err
}

type fakeGraph struct {
	importers map[string][]string
	cycle     bool
}

func (g *fakeGraph) HasCycle(from, to string) bool { return g.cycle }

func (g *fakeGraph) Importers(target string) []string { return g.importers[target] }

func baseDeps(reader *fakeReader) Deps {
	return Deps{
		Reader:  reader,
		Plugins: &fakeResolver{p: &fakePlanPlugin{}},
	}
}
