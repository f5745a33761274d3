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

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/refupdater"
	"github.com/forgekit/refactorctl/internal/types"
)

// MoveIntent describes relocating a file or directory to a new parent,
// possibly also renaming it along the way.
type MoveIntent struct {
	Kind RenameTargetKind

	OldPath string
	NewPath string

	OldModule string
	NewModule string

	ManifestPath       string
	DependentManifests []string

	Overwrite bool
	DryRun    bool
}

// MoveService produces EditPlans for relocate intents of kind file or
// directory.
type MoveService struct {
	deps Deps
}

// NewMoveService creates a MoveService using deps.
func NewMoveService(deps Deps) *MoveService {
	return &MoveService{deps: deps}
}

// Plan validates intent, computes the primary MoveFile/RenameDirectory
// op, folds in secondary edits from every importing file, and updates
// manifests when the target is a package.
func (m *MoveService) Plan(ctx context.Context, intent MoveIntent) (*types.EditPlan, error) {
	if ctx == nil || intent.OldPath == "" || intent.NewPath == "" {
		return nil, ErrInvalidInput
	}
	if err := m.deps.validate(); err != nil {
		return nil, err
	}
	if !isWorkspaceContained(intent.OldPath) || !isWorkspaceContained(intent.NewPath) {
		return nil, errors.New(errors.KindSandboxViolation, "move path escapes workspace root")
	}
	if !m.deps.Reader.Exists(ctx, intent.OldPath) {
		return nil, ErrTargetNotFound
	}
	if !intent.Overwrite && m.deps.Reader.Exists(ctx, intent.NewPath) {
		return nil, errors.New(errors.KindCollision, "move destination already exists: "+intent.NewPath)
	}
	if m.deps.Graph != nil && m.deps.Graph.HasCycle(intent.NewPath, intent.OldPath) {
		return nil, errors.New(errors.KindWouldCreateCycle, "move would introduce an import cycle")
	}

	plan := types.NewEditPlan(types.PlanTypeMove)

	if _, err := snapshotChecksum(ctx, m.deps.Reader, plan, intent.OldPath); err != nil {
		return nil, err
	}

	opKind := types.FileOpMoveFile
	if intent.Kind == RenameKindDirectory {
		opKind = types.FileOpRenameDirectory
	}
	plan.Ops = append(plan.Ops, types.FileOp{
		Kind:    opKind,
		Path:    intent.OldPath,
		NewPath: intent.NewPath,
	})
	plan.Summary.AffectedFiles++

	req := refupdater.Request{
		OldPath:   intent.OldPath,
		NewPath:   intent.NewPath,
		OldModule: intent.OldModule,
		NewModule: intent.NewModule,
	}
	if err := applyRefUpdate(ctx, m.deps, plan, req); err != nil {
		plan.Warnings = append(plan.Warnings, "reference update failed: "+err.Error())
	}

	if intent.Kind == RenameKindDirectory && intent.ManifestPath != "" {
		if err := applyManifestUpdates(ctx, m.deps, plan, intent.ManifestPath, intent.OldModule, intent.NewModule, intent.OldPath, intent.NewPath); err != nil {
			plan.Warnings = append(plan.Warnings, "manifest update failed: "+err.Error())
		}
		updateDependentManifests(ctx, m.deps, plan, intent.DependentManifests, intent.OldModule, intent.NewModule, intent.OldPath, intent.NewPath)
	}

	plan.Metadata.EstimatedImpact = len(plan.Ops)
	return plan, nil
}
