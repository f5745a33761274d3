// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package patterns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/forgekit/refactorctl/internal/types"
)

var cycleTracer = otel.Tracer("aleutian.patterns")

// CycleFinder detects import cycles in a project's GlobalGraph.
//
// Thread safety: CycleFinder holds no mutable state of its own; the
// GlobalGraph it's pointed at is the caller's responsibility to guard.
type CycleFinder struct {
	graph *types.GlobalGraph
}

// NewCycleFinder creates a finder over g.
func NewCycleFinder(g *types.GlobalGraph) *CycleFinder {
	return &CycleFinder{graph: g}
}

// FindCycles returns one ImportCycle per strongly connected component
// of size greater than one in the import graph, optionally restricted
// to files under scope (a path prefix; empty means the whole project).
func (f *CycleFinder) FindCycles(ctx context.Context, scope string) ([]ImportCycle, error) {
	if ctx == nil {
		return nil, ErrInvalidInput
	}

	_, span := cycleTracer.Start(ctx, "CycleFinder.FindCycles",
		trace.WithAttributes(attribute.String("patterns.scope", scope)))
	defer span.End()

	edges := make(map[string][]string)
	for path, entry := range f.graph.Entries() {
		if scope != "" && !strings.HasPrefix(path, scope) {
			continue
		}
		targets := make([]string, 0, len(entry.Imports))
		for _, imp := range entry.Imports {
			targets = append(targets, imp.ModulePath)
		}
		edges[path] = targets
	}

	components := stronglyConnectedComponents(edges)

	cycles := make([]ImportCycle, 0, len(components))
	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		sort.Strings(comp)
		cycles = append(cycles, ImportCycle{
			Files:      comp,
			Severity:   cycleSeverity(comp),
			Suggestion: fmt.Sprintf("break the cycle by extracting a shared package out of one of: %s", strings.Join(comp, ", ")),
		})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i].Files, ",") < strings.Join(cycles[j].Files, ",")
	})

	span.SetAttributes(attribute.Int("patterns.cycles_found", len(cycles)))
	return cycles, nil
}

// WouldCreateCycle reports whether recording an import edge from->to
// would close a cycle, delegating to the GlobalGraph's own DFS so the
// two callers (this sweep and plan validation) never drift.
func (f *CycleFinder) WouldCreateCycle(from, to string) bool {
	return f.graph.HasCycle(from, to)
}

func cycleSeverity(files []string) Severity {
	switch {
	case len(files) > 4:
		return SeverityError
	case len(files) > 2:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// stronglyConnectedComponents runs Tarjan's algorithm over edges (node
// -> its direct successors) and returns every component, including
// singletons, in an unspecified order. Callers that only care about
// actual cycles filter out components of size one.
func stronglyConnectedComponents(edges map[string][]string) [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if _, ok := indices[w]; !ok {
				if _, known := edges[w]; !known {
					// w is a leaf not present as its own node; still
					// visit it so singleton components are reported,
					// but it contributes no further edges.
					edges[w] = nil
				}
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			components = append(components, comp)
		}
	}

	for v := range edges {
		if _, ok := indices[v]; !ok {
			strongconnect(v)
		}
	}

	return components
}
