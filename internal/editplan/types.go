// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package editplan renders an EditPlan for human or tool-caller review
// before it is applied: a unified diff, a one-line-per-file summary, a
// compact JSON form, or a dependency-flow diagram, chosen automatically
// or by explicit request.
package editplan

import "github.com/forgekit/refactorctl/internal/types"

// FormatType is the closed set of renderings a Preview can produce.
type FormatType string

const (
	FormatJSON        FormatType = "json"
	FormatUnifiedDiff FormatType = "diff"
	FormatMarkdown    FormatType = "markdown"
	FormatMermaid     FormatType = "mermaid"
	FormatCompact     FormatType = "compact"
)

// FormatVersion is included in FormatMetadata so tool callers can detect
// a rendering change across upgrades.
const FormatVersion = "1"

// FormatCapability bounds what a format can represent before the
// rendering becomes misleading or too large for its consumer.
type FormatCapability struct {
	MaxFiles          int
	MaxHunks          int
	MaxTokens         int
	SupportsStreaming bool
}

// FormatMetadata describes a format's identity and fidelity.
type FormatMetadata struct {
	Type       FormatType
	Version    string
	Reversible bool
	Note       string
}

// FileContents is the before/after full text of one file touched by a
// plan, supplied by the caller (typically read via fileservice before
// the plan is built, and reconstructed by applying Ops in a dry run).
type FileContents struct {
	Old string
	New string
}

// Preview is the rendering input: a plan plus the full file contents
// needed to produce a textual diff for each touched path. Contents may
// omit a path the caller couldn't materialize; such paths are rendered
// from their FileOps alone (no diff body).
type Preview struct {
	Plan     *types.EditPlan
	Contents map[string]FileContents
}

// Stats summarizes a preview's size, used for capability checks and
// auto-format selection.
type Stats struct {
	FileCount int
	HunkCount int
	LineCount int
}

// Formatter renders a Preview into one textual representation.
type Formatter interface {
	Format(p *Preview) (string, error)
	IsReversible() bool
}
