// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package patterns implements two analysis sweeps: import-cycle
// detection over the project's GlobalGraph, and conservative dead-symbol
// detection over the cached parse results. Both are read-only sweeps;
// neither produces an EditPlan. No tool in the dispatcher calls them.
package patterns

import "github.com/forgekit/refactorctl/internal/errors"

// ErrInvalidInput is returned when a sweep is called with a nil context
// or an otherwise unusable argument.
var ErrInvalidInput = errors.New(errors.KindValidationFailed, "patterns: invalid input")

// Severity ranks how confident or how disruptive a finding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ImportCycle is one strongly connected component in the project's
// import graph: a set of files that import each other, directly or
// transitively, with no acyclic path out.
type ImportCycle struct {
	Files      []string `json:"files"`
	Severity   Severity `json:"severity"`
	Suggestion string   `json:"suggestion"`
}

// DeadSymbol is a declaration with no detected reference anywhere else
// in the scanned project.
type DeadSymbol struct {
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	FilePath   string  `json:"file_path"`
	Line       int     `json:"line"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
