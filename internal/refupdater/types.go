// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package refupdater implements ReferenceUpdater: given a rename or
// move of a path, it finds every file that imports or references the
// affected path and asks that file's plugin to rewrite its import
// statements, producing one FileEdit (old and new full content) per
// changed file. It never writes to disk itself - all content reads go
// through a FileReader, and the result is a Result whose Edits a planner
// folds into its EditPlan.
package refupdater

import "github.com/forgekit/refactorctl/internal/errors"

// ErrInvalidInput is returned when UpdateReferences is called with a
// nil context or an empty target path.
var ErrInvalidInput = errors.New(errors.KindValidationFailed, "refupdater: invalid input")

// ErrNoPluginForFile names the case where no registered plugin claims a
// candidate file's extension. UpdateReferences does not return it: such
// a file is skipped rather than guessed at.
var ErrNoPluginForFile = errors.New(errors.KindUnsupported, "refupdater: no plugin registered for file")

// Request describes one rename or move whose references need updating.
//
// A pure rename (same directory, new base name) and a move (new
// directory) are represented identically: OldPath is what every
// surviving reference currently points at, NewPath is what it must
// point at afterward. OldModule/NewModule distinguish the import-facing
// identity from the file path when a plugin's ImportRename operates on
// a module/package name rather than a relative path (e.g. a Go import
// path after a module rename); a caller that's only moving a file
// without renaming its module leaves OldModule/NewModule empty.
type Request struct {
	OldPath   string
	NewPath   string
	OldModule string
	NewModule string
}

// Strategy names which of ReferenceUpdater's two lookup paths produced
// a Result, reported for observability rather than acted on by callers.
type Strategy string

const (
	StrategyLsp        Strategy = "lsp"
	StrategyPluginScan Strategy = "plugin_scan"
)

// Result is the outcome of one UpdateReferences call.
type Result struct {
	Edits        []FileEdit
	FilesScanned int
	Strategy     Strategy
}

// FileEdit is one file's rewritten import content, paired with the
// plugin-reported change count so a caller can decide whether an
// apparent no-op edit is worth keeping.
type FileEdit struct {
	Path        string
	OldContent  string
	NewContent  string
	ChangeCount int
}
