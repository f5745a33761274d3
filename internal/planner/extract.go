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

// ExtractKind selects which single-file AST refactoring to plan.
type ExtractKind string

const (
	ExtractKindFunction ExtractKind = "function"
	ExtractKindVariable ExtractKind = "variable"
)

// ExtractIntent describes extracting a function or variable out of a
// selected range of one file.
type ExtractIntent struct {
	Kind     ExtractKind
	FilePath string
	Range    types.Range
	NewName  string
}

// ExtractPlanner produces EditPlans for refactor intents of kind
// extract_function or extract_variable. It delegates the AST-level
// work to the target file's RefactoringProvider facet, which returns a
// single-file EditPlan; cross-file effects don't apply to an
// extraction, since nothing outside the file is renamed or moved.
type ExtractPlanner struct {
	deps Deps
}

// NewExtractPlanner creates an ExtractPlanner using deps.
func NewExtractPlanner(deps Deps) *ExtractPlanner {
	return &ExtractPlanner{deps: deps}
}

// Plan validates intent and delegates to the plugin's RefactoringProvider.
func (e *ExtractPlanner) Plan(ctx context.Context, intent ExtractIntent) (*types.EditPlan, error) {
	if ctx == nil || intent.FilePath == "" || intent.NewName == "" {
		return nil, ErrInvalidInput
	}
	if err := e.deps.validate(); err != nil {
		return nil, err
	}
	if !e.deps.Reader.Exists(ctx, intent.FilePath) {
		return nil, ErrTargetNotFound
	}

	p, ok := e.deps.Plugins.PluginFor(intent.FilePath)
	if !ok {
		return nil, ErrNoPluginForFile
	}
	provider, ok := p.(plugin.RefactoringProvider)
	if !ok {
		return nil, errors.New(errors.KindUnsupported, "planner: language has no refactoring provider")
	}

	content, digest, err := e.deps.Reader.Read(ctx, intent.FilePath)
	if err != nil {
		return nil, err
	}

	var plan *types.EditPlan
	switch intent.Kind {
	case ExtractKindFunction:
		plan, err = provider.ExtractFunction(ctx, content, intent.FilePath, intent.Range, intent.NewName)
	case ExtractKindVariable:
		plan, err = provider.ExtractVariable(ctx, content, intent.FilePath, intent.Range, intent.NewName)
	default:
		return nil, ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = types.NewEditPlan(types.PlanTypeExtract)
	}

	plan.PlanType = types.PlanTypeExtract
	if plan.FileChecksums == nil {
		plan.FileChecksums = make(map[string]string)
	}
	plan.FileChecksums[intent.FilePath] = digest
	plan.Summary.AffectedFiles = 1
	plan.Metadata.EstimatedImpact = len(plan.Ops)
	return plan, nil
}
