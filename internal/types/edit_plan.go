// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package types

import "github.com/google/uuid"

// FileOpKind is the closed set of operations an EditPlan may carry.
type FileOpKind string

const (
	FileOpTextEdit         FileOpKind = "text_edit"
	FileOpCreateFile       FileOpKind = "create_file"
	FileOpDeleteFile       FileOpKind = "delete_file"
	FileOpMoveFile         FileOpKind = "move_file"
	FileOpRenameDirectory  FileOpKind = "rename_directory"
)

// FileOp is a single file-system-affecting operation within an EditPlan.
//
// FileOp is a closed tagged sum: Kind determines which of the remaining
// fields are meaningful. A TextEdit uses Path/Range/OldText/NewText; a
// CreateFile uses Path/NewText; a DeleteFile uses only Path; a MoveFile
// or RenameDirectory uses Path (old) and NewPath.
type FileOp struct {
	Kind FileOpKind `json:"kind"`

	Path    string `json:"path"`
	NewPath string `json:"new_path,omitempty"`

	Range   Range  `json:"range,omitempty"`
	OldText string `json:"old_text,omitempty"`
	NewText string `json:"new_text,omitempty"`
}

// PlanType categorizes the high-level refactoring intent an EditPlan
// implements, independent of the low-level FileOps it carries.
type PlanType string

const (
	PlanTypeRename    PlanType = "rename"
	PlanTypeMove      PlanType = "move"
	PlanTypeExtract   PlanType = "extract"
	PlanTypeInline    PlanType = "inline"
	PlanTypeDelete    PlanType = "delete"
	PlanTypeTransform PlanType = "transform"
)

// PlanMetadata carries provenance facts about how a plan was produced.
type PlanMetadata struct {
	Language        string `json:"language,omitempty"`
	CreatedAtMilli  int64  `json:"created_at_milli"`
	EstimatedImpact int    `json:"estimated_impact"`
}

// PlanSummary tallies the shape of an EditPlan's changes for preview
// without requiring the caller to walk every FileOp.
type PlanSummary struct {
	AffectedFiles int `json:"affected_files"`
	AddedLines    int `json:"added_lines"`
	RemovedLines  int `json:"removed_lines"`
}

// EditPlan is pure data describing a set of file operations to be
// applied atomically. It retains no resources (no open handles, no
// locks) and is safe to serialize, hold, or discard.
//
// FileChecksums snapshots the content digest of every path the plan
// reads or writes, captured at plan-creation time. PlanExecutor
// recomputes each digest immediately before applying and aborts with a
// precondition failure on any mismatch.
type EditPlan struct {
	ID             string            `json:"id"`
	PlanType       PlanType          `json:"plan_type"`
	Ops            []FileOp          `json:"ops"`
	Metadata       PlanMetadata      `json:"metadata"`
	Summary        PlanSummary       `json:"summary"`
	Warnings       []string          `json:"warnings,omitempty"`
	FileChecksums  map[string]string `json:"file_checksums"`
}

// NewEditPlan creates an empty plan of the given type, stamped with a
// fresh random ID so executor.PlanExecutor can key a retained undo
// snapshot by it, ready for a Planner to append operations to.
func NewEditPlan(planType PlanType) *EditPlan {
	return &EditPlan{
		ID:            uuid.NewString(),
		PlanType:      planType,
		Ops:           make([]FileOp, 0),
		FileChecksums: make(map[string]string),
	}
}

// Paths returns the distinct set of paths (old and new) touched by the
// plan's operations, used by the executor to determine the lock set.
func (p *EditPlan) Paths() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, op := range p.Ops {
		add(op.Path)
		add(op.NewPath)
	}
	return out
}
