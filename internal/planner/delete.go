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
	"fmt"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/types"
)

// DeleteIntent describes removing a file, or a directory given as the
// full set of file paths it contains - enumerating a directory tree is
// the caller's job (the workspace walker), not this planner's.
type DeleteIntent struct {
	Kind RenameTargetKind

	TargetPath     string
	DirectoryFiles []string

	ManifestPath       string
	DependentManifests []string

	// TargetModule is the package's import identity, used to strip the
	// dependency entry from a dependent's manifest.
	TargetModule string
}

// DeletePlanner produces EditPlans for prune intents of kind file or
// directory. Every importer of the deleted path(s) has its import
// statement stripped via the ImportMutation facet when available;
// importers whose plugin lacks that facet are surfaced as a warning
// rather than silently left with a dangling import.
type DeletePlanner struct {
	deps Deps
}

// NewDeletePlanner creates a DeletePlanner using deps.
func NewDeletePlanner(deps Deps) *DeletePlanner {
	return &DeletePlanner{deps: deps}
}

// Plan validates intent, computes the DeleteFile op(s), strips the
// deleted path from every importer it can, and updates manifests when
// the target is a package.
func (d *DeletePlanner) Plan(ctx context.Context, intent DeleteIntent) (*types.EditPlan, error) {
	if ctx == nil || intent.TargetPath == "" {
		return nil, ErrInvalidInput
	}
	if err := d.deps.validate(); err != nil {
		return nil, err
	}
	if !isWorkspaceContained(intent.TargetPath) {
		return nil, errors.New(errors.KindSandboxViolation, "delete target escapes workspace root")
	}
	if !d.deps.Reader.Exists(ctx, intent.TargetPath) {
		return nil, ErrTargetNotFound
	}

	plan := types.NewEditPlan(types.PlanTypeDelete)

	targets := []string{intent.TargetPath}
	if intent.Kind == RenameKindDirectory {
		targets = intent.DirectoryFiles
	}

	for _, path := range targets {
		if _, err := snapshotChecksum(ctx, d.deps.Reader, plan, path); err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("could not snapshot %s: %v", path, err))
			continue
		}
		plan.Ops = append(plan.Ops, types.FileOp{Kind: types.FileOpDeleteFile, Path: path})
		plan.Summary.AffectedFiles++
	}

	if d.deps.Graph != nil {
		for _, target := range targets {
			d.stripImporters(ctx, plan, target)
		}
	}

	if intent.Kind == RenameKindDirectory {
		updateDependentManifests(ctx, d.deps, plan, intent.DependentManifests, intent.TargetModule, "", intent.TargetPath, "")
	}

	plan.Metadata.EstimatedImpact = len(plan.Ops)
	return plan, nil
}

// stripImporters finds every direct importer of target and, if that
// importer's plugin exposes ImportMutation, removes the import.
func (d *DeletePlanner) stripImporters(ctx context.Context, plan *types.EditPlan, target string) {
	for _, importer := range d.deps.Graph.Importers(target) {
		p, ok := d.deps.Plugins.PluginFor(importer)
		if !ok {
			continue
		}
		mutator, ok := p.(plugin.ImportMutation)
		if !ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("no import-mutation facet for %s; %s still imports deleted path %s", importer, importer, target))
			continue
		}
		content, digest, err := d.deps.Reader.Read(ctx, importer)
		if err != nil {
			continue
		}
		result, err := mutator.RemoveImport(ctx, content, target)
		if err != nil || result == nil || result.ChangeCount == 0 {
			continue
		}
		plan.Ops = append(plan.Ops, types.FileOp{
			Kind:    types.FileOpTextEdit,
			Path:    importer,
			OldText: string(content),
			NewText: string(result.NewContent),
		})
		plan.FileChecksums[importer] = digest
		plan.Summary.AffectedFiles++
	}
}
