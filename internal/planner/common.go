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
	"strings"

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/refupdater"
	"github.com/forgekit/refactorctl/internal/types"
)

// snapshotChecksum reads path and records its digest on plan, failing
// the whole plan build if the read fails - a planner can't safely
// describe a precondition it can't verify.
func snapshotChecksum(ctx context.Context, reader FileReader, plan *types.EditPlan, path string) ([]byte, error) {
	content, digest, err := reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	plan.FileChecksums[path] = digest
	return content, nil
}

// applyRefUpdate runs the ReferenceUpdater for a rename/move and folds
// every resulting FileEdit into plan as a whole-file TextEdit, since
// plugin RewriteResult carries only full rewritten content rather than
// a precise hunk. A nil Updater is treated as "no secondary edits" -
// useful for planners exercised without the full bootstrap wired in.
func applyRefUpdate(ctx context.Context, deps Deps, plan *types.EditPlan, req refupdater.Request) error {
	if deps.Updater == nil {
		return nil
	}
	result, err := deps.Updater.UpdateReferences(ctx, req)
	if err != nil {
		return err
	}
	for _, edit := range result.Edits {
		_, digest, err := deps.Reader.Read(ctx, edit.Path)
		if err != nil {
			continue
		}
		plan.Ops = append(plan.Ops, types.FileOp{
			Kind:    types.FileOpTextEdit,
			Path:    edit.Path,
			OldText: edit.OldContent,
			NewText: edit.NewContent,
		})
		plan.FileChecksums[edit.Path] = digest
		plan.Summary.AffectedFiles++
	}
	return nil
}

// applyManifestUpdates asks manifestPath (if a WorkspaceSupport facet is
// available for it) to rename its own package declaration via
// RenamePackage. Dependents' manifests are not touched here;
// updateDependentManifests handles those.
func applyManifestUpdates(ctx context.Context, deps Deps, plan *types.EditPlan, manifestPath, oldName, newName, oldPath, newPath string) error {
	if manifestPath == "" {
		return nil
	}
	p, ok := deps.Plugins.PluginFor(manifestPath)
	if !ok {
		return nil
	}
	ws, ok := p.(plugin.WorkspaceSupport)
	if !ok {
		return nil
	}
	content, digest, err := deps.Reader.Read(ctx, manifestPath)
	if err != nil {
		return nil
	}
	rewritten, err := ws.RenamePackage(content, oldName, newName)
	if err != nil || rewritten == nil {
		return nil
	}
	plan.Ops = append(plan.Ops, types.FileOp{
		Kind:    types.FileOpTextEdit,
		Path:    manifestPath,
		OldText: string(content),
		NewText: string(rewritten),
	})
	plan.FileChecksums[manifestPath] = digest
	plan.Summary.AffectedFiles++
	return nil
}

// updateDependentManifests asks every dependent's manifest to update a
// dependency path/name reference, via the ManifestUpdater facet.
func updateDependentManifests(ctx context.Context, deps Deps, plan *types.EditPlan, manifestPaths []string, oldName, newName, oldPath, newPath string) {
	for _, path := range manifestPaths {
		p, ok := deps.Plugins.PluginFor(path)
		if !ok {
			continue
		}
		mu, ok := p.(plugin.ManifestUpdater)
		if !ok {
			continue
		}
		content, digest, err := deps.Reader.Read(ctx, path)
		if err != nil {
			continue
		}
		result, err := mu.UpdateDependencyPath(ctx, content, oldName, newName, oldPath, newPath)
		if err != nil || result == nil || result.ChangeCount == 0 {
			continue
		}
		plan.Ops = append(plan.Ops, types.FileOp{
			Kind:    types.FileOpTextEdit,
			Path:    path,
			OldText: string(content),
			NewText: string(result.NewContent),
		})
		plan.FileChecksums[path] = digest
		plan.Summary.AffectedFiles++
	}
}

// isWorkspaceContained rejects any target that would resolve outside
// the workspace root once joined and cleaned - mirrors the containment
// check FileService itself performs at apply time, so a plan never
// describes an operation the executor is guaranteed to reject.
func isWorkspaceContained(path string) bool {
	if path == "" {
		return false
	}
	clean := strings.ReplaceAll(path, "\\", "/")
	return !strings.HasPrefix(clean, "../") && clean != ".." && !strings.Contains(clean, "/../")
}
