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
	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/types"
)

// InlineIntent describes inlining the variable at a cursor position in
// one file back into its use sites.
type InlineIntent struct {
	FilePath string
	Position types.Position
}

// InlinePlanner produces EditPlans for refactor intents of kind
// inline_variable, delegating the AST-level work to the target file's
// RefactoringProvider facet.
type InlinePlanner struct {
	deps Deps
}

// NewInlinePlanner creates an InlinePlanner using deps.
func NewInlinePlanner(deps Deps) *InlinePlanner {
	return &InlinePlanner{deps: deps}
}

// Plan validates intent and delegates to the plugin's RefactoringProvider.
func (ip *InlinePlanner) Plan(ctx context.Context, intent InlineIntent) (*types.EditPlan, error) {
	if ctx == nil || intent.FilePath == "" {
		return nil, ErrInvalidInput
	}
	if err := ip.deps.validate(); err != nil {
		return nil, err
	}
	if !ip.deps.Reader.Exists(ctx, intent.FilePath) {
		return nil, ErrTargetNotFound
	}

	p, ok := ip.deps.Plugins.PluginFor(intent.FilePath)
	if !ok {
		return nil, ErrNoPluginForFile
	}
	provider, ok := p.(plugin.RefactoringProvider)
	if !ok {
		return nil, errors.New(errors.KindUnsupported, "planner: language has no refactoring provider")
	}

	content, digest, err := ip.deps.Reader.Read(ctx, intent.FilePath)
	if err != nil {
		return nil, err
	}

	plan, err := provider.InlineVariable(ctx, content, intent.FilePath, intent.Position)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = types.NewEditPlan(types.PlanTypeInline)
	}

	plan.PlanType = types.PlanTypeInline
	if plan.FileChecksums == nil {
		plan.FileChecksums = make(map[string]string)
	}
	plan.FileChecksums[intent.FilePath] = digest
	plan.Summary.AffectedFiles = 1
	plan.Metadata.EstimatedImpact = len(plan.Ops)
	return plan, nil
}
