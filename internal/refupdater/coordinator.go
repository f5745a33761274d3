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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgekit/refactorctl/internal/plugin"
)

var tracer = otel.Tracer("aleutian.refupdater")

// ReferenceUpdater computes, for a rename or move, the rewritten
// content of every affected file. It owns no filesystem state; a
// planner folds its Result into the TextEdits of the EditPlan it is
// building.
type ReferenceUpdater struct {
	finder  importFinder
	plugins PluginResolver
	reader  FileReader
}

// New creates a ReferenceUpdater using the plugin-scan fallback
// strategy. Use NewWithLsp to prefer an LSP adapter when one is
// available.
func New(plugins PluginResolver, files ProjectWalker, reader FileReader) *ReferenceUpdater {
	return &ReferenceUpdater{
		finder:  &pluginScanFinder{plugins: plugins, files: files, reader: reader},
		plugins: plugins,
		reader:  reader,
	}
}

// NewWithLsp creates a ReferenceUpdater that asks client first; if
// client is nil this is identical to New.
func NewWithLsp(client LspClient, plugins PluginResolver, files ProjectWalker, reader FileReader) *ReferenceUpdater {
	if client == nil {
		return New(plugins, files, reader)
	}
	return &ReferenceUpdater{
		finder:  &lspImportFinder{client: client},
		plugins: plugins,
		reader:  reader,
	}
}

// UpdateReferences finds every file that imports or references
// req.OldPath (or req.OldModule, when set), asks each one's plugin to
// rewrite its imports, and returns one FileEdit per file whose content
// actually changed.
func (u *ReferenceUpdater) UpdateReferences(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil || req.OldPath == "" || req.NewPath == "" {
		return nil, ErrInvalidInput
	}

	ctx, span := tracer.Start(ctx, "ReferenceUpdater.UpdateReferences",
		trace.WithAttributes(
			attribute.String("refupdater.old_path", req.OldPath),
			attribute.String("refupdater.new_path", req.NewPath),
		))
	defer span.End()

	candidates, strategy, err := u.finder.findImporters(ctx, req)
	if err != nil {
		return nil, err
	}

	var edits []FileEdit
	for _, path := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		p, ok := u.plugins.PluginFor(path)
		if !ok {
			continue
		}

		content, err := u.reader.ReadFile(ctx, path)
		if err != nil {
			continue
		}

		rewritten, ok := u.rewrite(ctx, p, content, req)
		if !ok || rewritten == nil || rewritten.ChangeCount == 0 {
			continue
		}

		edits = append(edits, FileEdit{
			Path:        path,
			OldContent:  string(content),
			NewContent:  string(rewritten.NewContent),
			ChangeCount: rewritten.ChangeCount,
		})
	}

	span.SetAttributes(
		attribute.Int("refupdater.candidates", len(candidates)),
		attribute.Int("refupdater.edits", len(edits)),
		attribute.String("refupdater.strategy", string(strategy)),
	)

	return &Result{Edits: edits, FilesScanned: len(candidates), Strategy: strategy}, nil
}

// rewrite tries ImportRename first when both OldModule and NewModule are
// set, then falls back to ImportMove with the old and new paths. A
// plugin missing both facets is simply skipped - it has no way to honor
// the request.
func (u *ReferenceUpdater) rewrite(ctx context.Context, p plugin.LanguagePlugin, content []byte, req Request) (*plugin.RewriteResult, bool) {
	if req.OldModule != "" && req.NewModule != "" {
		if renamer, ok := p.(plugin.ImportRename); ok {
			result, err := renamer.RenameImport(ctx, content, req.OldModule, req.NewModule)
			if err == nil {
				return result, true
			}
		}
	}

	if mover, ok := p.(plugin.ImportMove); ok {
		result, err := mover.MoveImport(ctx, content, req.OldPath, req.NewPath)
		if err == nil {
			return result, true
		}
	}

	return nil, false
}
