// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

import "github.com/forgekit/refactorctl/internal/types"

// Options is carried by every mutating tool's arguments.
type Options struct {
	DryRun    bool     `json:"dryRun,omitempty"`
	Overwrite bool     `json:"overwrite,omitempty"`
	Scope     []string `json:"scope,omitempty"`
	Validate  bool     `json:"validate,omitempty"`
}

// TargetKind is the set of entities a mutating tool can address.
type TargetKind string

const (
	TargetKindSymbol    TargetKind = "symbol"
	TargetKindFile      TargetKind = "file"
	TargetKindDirectory TargetKind = "directory"
)

// Selector narrows a Target to a position within its file, used for
// symbol-kind targets.
type Selector struct {
	Position types.Position `json:"position"`
}

// Target identifies one symbol, file, or directory a mutating tool
// acts on.
type Target struct {
	Kind     TargetKind `json:"kind"`
	Path     string     `json:"path"`
	Selector *Selector  `json:"selector,omitempty"`
}

// InspectCodeRequest is inspect_code's argument shape.
type InspectCodeRequest struct {
	Path     string         `json:"path"`
	Position types.Position `json:"position"`
}

// InspectCodeResult aggregates everything inspect_code could determine
// at the given position. Hover and Diagnostics are left nil when no
// language server is wired in for the file's language - this tool
// reports what it actually knows rather than fabricating content.
type InspectCodeResult struct {
	Definition  *types.Symbol   `json:"definition,omitempty"`
	References  []string        `json:"references,omitempty"`
	Hover       *string         `json:"hover,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

// SearchCodeRequest is search_code's argument shape.
type SearchCodeRequest struct {
	Query string `json:"query"`
	Kind  string `json:"kind,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// SearchCodeResult is search_code's response shape.
type SearchCodeResult struct {
	Symbols []types.Symbol `json:"symbols"`
}

// RenameAllRequest is rename_all's argument shape. Targets replaces
// Target for a batch rename sharing one NewName.
type RenameAllRequest struct {
	Target  *Target  `json:"target,omitempty"`
	Targets []Target `json:"targets,omitempty"`
	NewName string   `json:"newName"`
	Options Options  `json:"options,omitempty"`
}

// RelocateRequest is relocate's argument shape.
type RelocateRequest struct {
	Target  Target  `json:"target"`
	NewPath string  `json:"newPath"`
	Options Options `json:"options,omitempty"`
}

// PruneRequest is prune's argument shape.
type PruneRequest struct {
	Target  Target  `json:"target"`
	Options Options `json:"options,omitempty"`
}

// RefactorOperation is the set of transforms the refactor tool exposes.
type RefactorOperation string

const (
	RefactorExtractFunction RefactorOperation = "extract_function"
	RefactorExtractVariable RefactorOperation = "extract_variable"
	RefactorInlineVariable  RefactorOperation = "inline_variable"
)

// RefactorRequest is refactor's argument shape.
type RefactorRequest struct {
	Operation RefactorOperation `json:"operation"`
	Path      string            `json:"path"`
	Range     types.Range       `json:"range,omitempty"`
	Position  types.Position    `json:"position,omitempty"`
	NewName   string            `json:"newName,omitempty"`
	Options   Options           `json:"options,omitempty"`
}

// WorkspaceOperation is the set of sub-operations the workspace tool
// exposes.
type WorkspaceOperation string

const (
	WorkspaceListMembers   WorkspaceOperation = "list_members"
	WorkspaceAddMember     WorkspaceOperation = "add_member"
	WorkspaceRemoveMember  WorkspaceOperation = "remove_member"
	WorkspaceRenamePackage WorkspaceOperation = "rename_package"
	WorkspaceFindReplace   WorkspaceOperation = "find_replace"
	WorkspaceUndoLast      WorkspaceOperation = "undo_last"
)

// WorkspaceRequest is workspace's argument shape; only the fields the
// chosen Operation needs are read.
type WorkspaceRequest struct {
	Operation    WorkspaceOperation `json:"operation"`
	ManifestPath string              `json:"manifestPath,omitempty"`
	MemberPath   string              `json:"memberPath,omitempty"`
	OldName      string              `json:"oldName,omitempty"`
	NewName      string              `json:"newName,omitempty"`
	Find         string              `json:"find,omitempty"`
	Replace      string              `json:"replace,omitempty"`
	Options      Options             `json:"options,omitempty"`
}

// WorkspaceResult is workspace's response shape; only the fields
// relevant to the requested Operation are populated.
type WorkspaceResult struct {
	Members      []string        `json:"members,omitempty"`
	Plan         *types.EditPlan `json:"plan,omitempty"`
	AppliedFiles []string        `json:"appliedFiles,omitempty"`
}

// ApplyResult mirrors executor.Result, re-exported at the dispatcher
// boundary so callers don't need to import internal/executor directly.
type ApplyResult struct {
	AppliedFiles []string `json:"appliedFiles,omitempty"`
	FailedFiles  []string `json:"failedFiles,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	DryRun       bool     `json:"dryRun,omitempty"`
	Plan         *types.EditPlan `json:"plan,omitempty"`
}
