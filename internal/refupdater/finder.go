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

	"github.com/forgekit/refactorctl/internal/plugin"
)

// FileReader is the narrow slice of FileService ReferenceUpdater needs:
// read-only access to file content. It never writes.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// PluginResolver resolves the plugin responsible for a file path, by
// extension. The bootstrap-wired PluginRegistry satisfies this.
type PluginResolver interface {
	PluginFor(path string) (plugin.LanguagePlugin, bool)
}

// ProjectWalker enumerates every file path in the workspace, used by
// the plugin-scan fallback to find candidate importers.
type ProjectWalker interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// LspClient is the narrow view of an injected LSP adapter that
// ReferenceUpdater needs: given a rename, the set of files the server
// reports as affected via workspace/willRenameFiles.
type LspClient interface {
	WillRenameFiles(ctx context.Context, oldPath, newPath string) ([]string, error)
}

// importFinder locates the candidate files that may reference a
// renamed/moved path, without yet rewriting any of them.
type importFinder interface {
	findImporters(ctx context.Context, req Request) ([]string, Strategy, error)
}

// lspImportFinder is the O(1)-per-file strategy: delegate entirely to
// an LSP server's own understanding of the project's references.
type lspImportFinder struct {
	client LspClient
}

func (f *lspImportFinder) findImporters(ctx context.Context, req Request) ([]string, Strategy, error) {
	files, err := f.client.WillRenameFiles(ctx, req.OldPath, req.NewPath)
	if err != nil {
		return nil, "", err
	}
	return files, StrategyLsp, nil
}

// pluginScanFinder is the O(N)-over-project fallback: walk every file
// whose extension matches a registered plugin and ask that plugin's
// ImportParser whether it references the target.
type pluginScanFinder struct {
	plugins PluginResolver
	files   ProjectWalker
	reader  FileReader
}

func (f *pluginScanFinder) findImporters(ctx context.Context, req Request) ([]string, Strategy, error) {
	target := req.OldModule
	if target == "" {
		target = req.OldPath
	}

	all, err := f.files.ListFiles(ctx)
	if err != nil {
		return nil, "", err
	}

	var matches []string
	for _, path := range all {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if path == req.OldPath {
			continue
		}
		p, ok := f.plugins.PluginFor(path)
		if !ok {
			continue
		}
		importParser, ok := p.(plugin.ImportParser)
		if !ok {
			continue
		}
		content, err := f.reader.ReadFile(ctx, path)
		if err != nil {
			continue
		}
		has, err := importParser.ContainsImport(ctx, content, target)
		if err != nil || !has {
			continue
		}
		matches = append(matches, path)
	}

	return matches, StrategyPluginScan, nil
}
