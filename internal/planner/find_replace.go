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

	"github.com/forgekit/refactorctl/internal/types"
)

// ProjectWalker enumerates every file path in the workspace, the same
// capability refupdater's plugin-scan fallback needs to find candidate
// importers.
type ProjectWalker interface {
	ListFiles(ctx context.Context) ([]string, error)
}

// FindReplaceIntent describes a literal find/replace sweep. Scope, when
// non-empty, restricts the sweep to those paths instead of the whole
// workspace.
type FindReplaceIntent struct {
	Find    string
	Replace string
	Scope   []string
}

// FindReplacePlanner produces an EditPlan replacing every literal
// occurrence of Find with Replace across the intent's scope (or the
// whole workspace when Scope is empty). It performs no parsing: a
// match inside a string literal, a comment, and an identifier are all
// replaced alike, matching the teacher's workspace-wide text tools
// rather than a language-aware rename.
type FindReplacePlanner struct {
	reader FileReader
	walker ProjectWalker
}

// NewFindReplacePlanner creates a FindReplacePlanner using reader for
// content and walker to enumerate the workspace when intent.Scope is
// empty.
func NewFindReplacePlanner(reader FileReader, walker ProjectWalker) *FindReplacePlanner {
	return &FindReplacePlanner{reader: reader, walker: walker}
}

// Plan builds the EditPlan. A Find that matches in zero files returns
// an empty plan (no error): an empty sweep is a valid outcome, not a
// failure.
func (p *FindReplacePlanner) Plan(ctx context.Context, intent FindReplaceIntent) (*types.EditPlan, error) {
	if intent.Find == "" {
		return nil, ErrInvalidInput
	}

	paths := intent.Scope
	if len(paths) == 0 {
		if p.walker == nil {
			return nil, ErrInvalidInput
		}
		var err error
		paths, err = p.walker.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
	}

	plan := types.NewEditPlan(types.PlanTypeTransform)
	for _, path := range paths {
		content, digest, err := p.reader.Read(ctx, path)
		if err != nil {
			continue
		}
		if !strings.Contains(string(content), intent.Find) {
			continue
		}
		newContent := strings.ReplaceAll(string(content), intent.Find, intent.Replace)
		plan.Ops = append(plan.Ops, types.FileOp{
			Kind:    types.FileOpTextEdit,
			Path:    path,
			OldText: string(content),
			NewText: newContent,
		})
		plan.FileChecksums[path] = digest
		plan.Summary.AffectedFiles++
	}

	return plan, nil
}
