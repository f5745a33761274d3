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
	"path/filepath"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/refupdater"
	"github.com/forgekit/refactorctl/internal/types"
)

// RenameTargetKind distinguishes a plain file rename from a package
// directory rename, which additionally touches manifests.
type RenameTargetKind string

const (
	RenameKindFile      RenameTargetKind = "file"
	RenameKindDirectory RenameTargetKind = "directory"
)

// RenameIntent describes a rename that keeps a target in its current
// parent directory but changes its base name.
type RenameIntent struct {
	Kind RenameTargetKind

	// TargetPath is the file or directory being renamed.
	TargetPath string
	// NewName is the new base name (not a full path).
	NewName string

	// OldModule/NewModule are populated for a directory rename whose
	// package import identity changes along with its name (e.g. a Go
	// import path). Left empty for a plain file rename.
	OldModule string
	NewModule string

	// ManifestPath is the moved package's own manifest, rewritten via
	// WorkspaceSupport.RenamePackage when set.
	ManifestPath string
	// DependentManifests lists every other manifest that references
	// this package by name, rewritten via ManifestUpdater.
	DependentManifests []string

	Overwrite bool
	DryRun    bool
}

// RenamePlanner produces EditPlans for rename_all intents of kind file
// or directory. Symbol-kind renames require an LSP-backed rename
// provider that is not wired into this planner; callers routing a
// symbol rename must use an LSP client directly until one is added.
type RenamePlanner struct {
	deps Deps
}

// NewRenamePlanner creates a RenamePlanner using deps.
func NewRenamePlanner(deps Deps) *RenamePlanner {
	return &RenamePlanner{deps: deps}
}

// Plan validates intent, computes the primary MoveFile/RenameDirectory
// op, folds in secondary edits from every importing file, and updates
// manifests when the target is a package.
func (r *RenamePlanner) Plan(ctx context.Context, intent RenameIntent) (*types.EditPlan, error) {
	if ctx == nil || intent.TargetPath == "" || intent.NewName == "" {
		return nil, ErrInvalidInput
	}
	if err := r.deps.validate(); err != nil {
		return nil, err
	}
	if !isWorkspaceContained(intent.TargetPath) {
		return nil, errors.New(errors.KindSandboxViolation, "rename target escapes workspace root")
	}
	if !r.deps.Reader.Exists(ctx, intent.TargetPath) {
		return nil, ErrTargetNotFound
	}

	newPath := filepath.Join(filepath.Dir(intent.TargetPath), intent.NewName)
	if !intent.Overwrite && r.deps.Reader.Exists(ctx, newPath) {
		return nil, errors.New(errors.KindCollision, "rename destination already exists: "+newPath)
	}
	if r.deps.Graph != nil && r.deps.Graph.HasCycle(newPath, intent.TargetPath) {
		return nil, errors.New(errors.KindWouldCreateCycle, "rename would introduce an import cycle")
	}

	plan := types.NewEditPlan(types.PlanTypeRename)
	if intent.Kind == RenameKindDirectory {
		plan.PlanType = types.PlanTypeRename
	}

	if _, err := snapshotChecksum(ctx, r.deps.Reader, plan, intent.TargetPath); err != nil {
		return nil, err
	}

	opKind := types.FileOpMoveFile
	if intent.Kind == RenameKindDirectory {
		opKind = types.FileOpRenameDirectory
	}
	plan.Ops = append(plan.Ops, types.FileOp{
		Kind:    opKind,
		Path:    intent.TargetPath,
		NewPath: newPath,
	})
	plan.Summary.AffectedFiles++

	req := refupdater.Request{
		OldPath:   intent.TargetPath,
		NewPath:   newPath,
		OldModule: intent.OldModule,
		NewModule: intent.NewModule,
	}
	if err := applyRefUpdate(ctx, r.deps, plan, req); err != nil {
		plan.Warnings = append(plan.Warnings, "reference update failed: "+err.Error())
	}

	if intent.Kind == RenameKindDirectory {
		oldName := filepath.Base(intent.TargetPath)
		if err := applyManifestUpdates(ctx, r.deps, plan, intent.ManifestPath, oldName, intent.NewName, intent.TargetPath, newPath); err != nil {
			plan.Warnings = append(plan.Warnings, "manifest rename failed: "+err.Error())
		}
		updateDependentManifests(ctx, r.deps, plan, intent.DependentManifests, oldName, intent.NewName, intent.TargetPath, newPath)
	}

	plan.Metadata.EstimatedImpact = len(plan.Ops)
	return plan, nil
}
