// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package impact

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgekit/refactorctl/internal/types"
)

var tracer = otel.Tracer("aleutian.impact")

// Analyzer computes BlastRadius summaries over a GlobalGraph.
type Analyzer struct {
	graph *types.GlobalGraph
}

// NewAnalyzer creates an Analyzer over g.
func NewAnalyzer(g *types.GlobalGraph) *Analyzer {
	return &Analyzer{graph: g}
}

// Analyze computes the blast radius of a change to target: every file
// that imports it directly, plus the size of the transitive closure of
// importers-of-importers up to opts.MaxTransitiveDepth hops.
func (a *Analyzer) Analyze(ctx context.Context, target string, opts *AnalyzeOptions) (*BlastRadius, error) {
	if ctx == nil || target == "" {
		return nil, ErrInvalidInput
	}
	options := DefaultAnalyzeOptions()
	if opts != nil {
		options = *opts
	}

	_, span := tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(attribute.String("impact.target", target)))
	defer span.End()

	direct := a.graph.Importers(target)
	sort.Strings(direct)

	transitive := make(map[string]bool)
	frontier := append([]string{}, direct...)
	for _, d := range direct {
		transitive[d] = true
	}

	for depth := 0; depth < options.MaxTransitiveDepth && len(frontier) > 0; depth++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var next []string
		for _, node := range frontier {
			for _, parent := range a.graph.Importers(node) {
				if parent == target || transitive[parent] {
					continue
				}
				transitive[parent] = true
				next = append(next, parent)
			}
		}
		frontier = next
	}

	sample := make([]string, 0, len(transitive))
	for path := range transitive {
		if path == "" {
			continue
		}
		isDirect := false
		for _, d := range direct {
			if d == path {
				isDirect = true
				break
			}
		}
		if !isDirect {
			sample = append(sample, path)
		}
	}
	sort.Strings(sample)

	truncated := false
	if options.MaxSample > 0 && len(sample) > options.MaxSample {
		sample = sample[:options.MaxSample]
		truncated = true
	}

	result := &BlastRadius{
		Target:           target,
		DirectImporters:  direct,
		TransitiveCount:  len(transitive),
		TransitiveSample: sample,
		Risk:             riskFor(len(direct), options.Thresholds),
		Truncated:        truncated,
	}

	span.SetAttributes(
		attribute.Int("impact.direct_count", len(direct)),
		attribute.Int("impact.transitive_count", result.TransitiveCount),
		attribute.String("impact.risk", string(result.Risk)),
	)

	return result, nil
}

func riskFor(directCount int, t RiskThresholds) RiskLevel {
	switch {
	case directCount >= t.Critical:
		return RiskCritical
	case directCount >= t.High:
		return RiskHigh
	case directCount >= t.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}
