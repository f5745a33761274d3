// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package impact computes a blast-radius summary for a proposed rename
// or move: how many files directly and transitively import the
// affected path, and a coarse risk level derived from that count. It
// is a pure read-side computation: no tool response includes it, and
// it never changes plan semantics or blocks an operation.
package impact

import "github.com/forgekit/refactorctl/internal/errors"

// ErrInvalidInput is returned when Analyze is called with a nil
// context or an empty target path.
var ErrInvalidInput = errors.New(errors.KindValidationFailed, "impact: invalid input")

// RiskLevel is a coarse categorization of how disruptive a change's
// blast radius looks.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskThresholds sets the direct-importer counts at which BlastRadius
// escalates to the next RiskLevel. A project with unusually central
// shared packages can widen these via AnalyzeOptions.
type RiskThresholds struct {
	Medium   int
	High     int
	Critical int
}

// DefaultRiskThresholds: a handful of importers is routine, double
// digits warrants a second look, and anything past fifty is
// effectively a public API of the project.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Medium: 5, High: 15, Critical: 50}
}

// BlastRadius summarizes how far a change to one path reaches through
// the import graph.
type BlastRadius struct {
	Target           string    `json:"target"`
	DirectImporters  []string  `json:"direct_importers"`
	TransitiveCount  int       `json:"transitive_count"`
	TransitiveSample []string  `json:"transitive_sample,omitempty"`
	Risk             RiskLevel `json:"risk"`
	Truncated        bool      `json:"truncated"`
}

// AnalyzeOptions configures one Analyze call.
type AnalyzeOptions struct {
	// MaxTransitiveDepth bounds how many import hops the transitive
	// walk follows. Zero means direct importers only.
	MaxTransitiveDepth int

	// MaxSample caps how many transitive importer paths are returned
	// in TransitiveSample; the full TransitiveCount is never truncated.
	MaxSample int

	Thresholds RiskThresholds
}

// DefaultAnalyzeOptions walks the full transitive closure with a
// reasonably sized sample for display.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{MaxTransitiveDepth: 32, MaxSample: 20, Thresholds: DefaultRiskThresholds()}
}

// QuickAnalyzeOptions limits the walk to direct importers, for callers
// on a tight latency budget (e.g. an interactive inspect_code call).
func QuickAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{MaxTransitiveDepth: 0, MaxSample: 20, Thresholds: DefaultRiskThresholds()}
}
