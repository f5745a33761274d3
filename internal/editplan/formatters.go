// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package editplan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/forgekit/refactorctl/internal/types"
)

// AnalyzePreview walks a preview's plan and materialized contents to
// produce the stats capability checks and auto-selection run against.
func AnalyzePreview(p *Preview) Stats {
	stats := Stats{}
	seen := make(map[string]bool)
	for _, op := range p.Plan.Ops {
		for _, path := range []string{op.Path, op.NewPath} {
			if path == "" || seen[path] {
				continue
			}
			seen[path] = true
			stats.FileCount++
		}
	}
	for path, fc := range p.Contents {
		if !seen[path] {
			continue
		}
		unified, err := unifiedDiffText(path, fc)
		if err != nil || unified == "" {
			continue
		}
		fd, err := godiff.ParseFileDiff([]byte(unified))
		if err != nil {
			continue
		}
		stats.HunkCount += len(fd.Hunks)
		for _, h := range fd.Hunks {
			stats.LineCount += int(h.NewLines)
		}
	}
	return stats
}

// unifiedDiffText renders the before/after of one file as a standard
// unified diff using difflib's SequenceMatcher-based UnifiedDiff.
func unifiedDiffText(path string, fc FileContents) (string, error) {
	if fc.Old == fc.New {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(fc.Old),
		B:        difflib.SplitLines(fc.New),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// sortedPaths returns the plan's distinct touched paths in stable order.
func sortedPaths(plan *types.EditPlan) []string {
	paths := plan.Paths()
	sort.Strings(paths)
	return paths
}

// =============================================================================
// JSON
// =============================================================================

// JSONFormatter renders the plan as indented JSON: the only lossless,
// machine-round-trippable format.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) Format(p *Preview) (string, error) {
	out, err := json.MarshalIndent(p.Plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("editplan: marshaling plan: %w", err)
	}
	return string(out), nil
}

func (f *JSONFormatter) IsReversible() bool { return true }

// =============================================================================
// Compact
// =============================================================================

// CompactFormatter renders the plan as single-line JSON, for callers
// under a tight token budget who still need the full op list.
type CompactFormatter struct{}

func NewCompactFormatter() *CompactFormatter { return &CompactFormatter{} }

func (f *CompactFormatter) Format(p *Preview) (string, error) {
	out, err := json.Marshal(p.Plan)
	if err != nil {
		return "", fmt.Errorf("editplan: marshaling plan: %w", err)
	}
	return string(out), nil
}

func (f *CompactFormatter) IsReversible() bool { return true }

// =============================================================================
// Unified diff
// =============================================================================

// DiffFormatter renders every touched file as a standard unified diff
// hunk, concatenated in path order.
type DiffFormatter struct{}

func NewDiffFormatter() *DiffFormatter { return &DiffFormatter{} }

func (f *DiffFormatter) Format(p *Preview) (string, error) {
	var sb strings.Builder
	for _, path := range sortedPaths(p.Plan) {
		fc, ok := p.Contents[path]
		if !ok {
			sb.WriteString(fmt.Sprintf("--- a/%s\n+++ b/%s\n(content not available for diff)\n\n", path, path))
			continue
		}
		text, err := unifiedDiffText(path, fc)
		if err != nil {
			return "", fmt.Errorf("editplan: diffing %s: %w", path, err)
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (f *DiffFormatter) IsReversible() bool { return false }

// =============================================================================
// Markdown
// =============================================================================

// MarkdownFormatter renders a human-readable summary: plan type, the
// overall line-change tally, one row per op (its path and kind), and
// any plan warnings.
type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter { return &MarkdownFormatter{} }

func (f *MarkdownFormatter) Format(p *Preview) (string, error) {
	plan := p.Plan
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s plan `%s`\n\n", plan.PlanType, plan.ID)
	fmt.Fprintf(&sb, "%d file(s), +%d/-%d lines\n\n", plan.Summary.AffectedFiles, plan.Summary.AddedLines, plan.Summary.RemovedLines)
	fmt.Fprintf(&sb, "| path | op |\n|---|---|\n")
	for _, op := range plan.Ops {
		target := op.Path
		if op.NewPath != "" {
			target = fmt.Sprintf("%s -> %s", op.Path, op.NewPath)
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", target, op.Kind)
	}
	if len(plan.Warnings) > 0 {
		sb.WriteString("\n**Warnings**\n")
		for _, w := range plan.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return sb.String(), nil
}

func (f *MarkdownFormatter) IsReversible() bool { return false }

// =============================================================================
// Mermaid
// =============================================================================

// MermaidFormatter renders the plan's ops as a flowchart: one node per
// op, each linked from the plan node by an edge labelled with the op's
// kind, useful for spotting an unexpectedly wide blast radius at a
// glance. maxNodes caps how many op nodes are drawn before the diagram
// is truncated with a count of the rest.
type MermaidFormatter struct {
	maxNodes int
}

func NewMermaidFormatter(maxNodes int) *MermaidFormatter {
	return &MermaidFormatter{maxNodes: maxNodes}
}

func (f *MermaidFormatter) Format(p *Preview) (string, error) {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")
	sb.WriteString(fmt.Sprintf("  plan[\"%s\"]\n", p.Plan.PlanType))

	drawn := 0
	for i, op := range p.Plan.Ops {
		if f.maxNodes > 0 && drawn >= f.maxNodes {
			remaining := len(p.Plan.Ops) - i
			fmt.Fprintf(&sb, "  plan --> more[\"... %d more\"]\n", remaining)
			break
		}
		node := fmt.Sprintf("n%d", i)
		label := op.Path
		if op.NewPath != "" {
			label = fmt.Sprintf("%s -> %s", op.Path, op.NewPath)
		}
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", node, label)
		fmt.Fprintf(&sb, "  plan -- %s --> %s\n", op.Kind, node)
		drawn++
	}
	return sb.String(), nil
}

func (f *MermaidFormatter) IsReversible() bool { return false }
