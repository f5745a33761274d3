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

// ImportType categorizes the syntactic form of a single import.
type ImportType string

const (
	ImportEs6       ImportType = "es6"
	ImportCommonJs  ImportType = "commonjs"
	ImportDynamic   ImportType = "dynamic"
	ImportPython    ImportType = "python"
	ImportCInclude  ImportType = "c_include"
	ImportGo        ImportType = "go"
	ImportRustUse   ImportType = "rust_use"
	ImportRustExtern ImportType = "rust_extern_crate"
)

// ImportInfo describes a single import statement within a file.
type ImportInfo struct {
	ModulePath      string     `json:"module_path"`
	ImportType      ImportType `json:"import_type"`
	NamedImports    []string   `json:"named_imports,omitempty"`
	DefaultImport   string     `json:"default_import,omitempty"`
	NamespaceImport string     `json:"namespace_import,omitempty"`
	TypeOnly        bool       `json:"type_only,omitempty"`
	Location        Range      `json:"location"`
}

// ImportGraph is the per-file view of an import relationship: what a
// file imports, and (once the global graph is assembled) which files
// import it back.
//
// The importer relation is derived on demand from the union of
// per-file ImportGraph entries rather than stored as a standing
// bidirectional graph, so invalidating one file's entry never requires
// walking or patching every other file's entry.
type ImportGraph struct {
	SourceFile string           `json:"source_file"`
	Imports    []ImportInfo     `json:"imports"`
	Importers  []string         `json:"importers,omitempty"`
	Metadata   ImportGraphMeta  `json:"metadata"`
}

// ImportGraphMeta carries provenance and derived facts about one file's
// import graph entry.
type ImportGraphMeta struct {
	Language             string   `json:"language"`
	ParsedAtMilli         int64    `json:"parsed_at_milli"`
	ParserVersion         string   `json:"parser_version"`
	CircularDependencies  []string `json:"circular_dependencies,omitempty"`
	ExternalDependencies  []string `json:"external_dependencies,omitempty"`
}

// GlobalGraph is the union of every file's ImportGraph, indexed by
// source file path. It is assembled on demand, never mutated in place
// by more than one writer — PluginRegistry-driven parses populate one
// entry per file, and AstCache invalidation simply removes entries.
type GlobalGraph struct {
	entries map[string]*ImportGraph
}

// NewGlobalGraph creates an empty graph.
func NewGlobalGraph() *GlobalGraph {
	return &GlobalGraph{entries: make(map[string]*ImportGraph)}
}

// Set records (or replaces) the import graph entry for path.
func (g *GlobalGraph) Set(path string, entry *ImportGraph) {
	g.entries[path] = entry
}

// Delete removes the entry for path, if any.
func (g *GlobalGraph) Delete(path string) {
	delete(g.entries, path)
}

// Get returns the entry for path, if present.
func (g *GlobalGraph) Get(path string) (*ImportGraph, bool) {
	e, ok := g.entries[path]
	return e, ok
}

// Importers computes, by scanning every entry's Imports, the set of
// files that import target. This is the "who imports p?" query
// described in spec.md §9: derived on demand, never stored as a
// back-reference to avoid lifetime/invalidation coupling.
func (g *GlobalGraph) Importers(target string) []string {
	var out []string
	for path, entry := range g.entries {
		if path == target {
			continue
		}
		for _, imp := range entry.Imports {
			if imp.ModulePath == target {
				out = append(out, path)
				break
			}
		}
	}
	return out
}

// Entries returns a snapshot of every tracked file's import graph,
// keyed by path. Used by whole-project sweeps like cycle detection
// that must enumerate every node rather than query a single one.
func (g *GlobalGraph) Entries() map[string]*ImportGraph {
	out := make(map[string]*ImportGraph, len(g.entries))
	for k, v := range g.entries {
		out[k] = v
	}
	return out
}

// HasCycle reports whether adding an edge from->to would create a
// cycle in the current import graph, via depth-first search from to
// back to from.
func (g *GlobalGraph) HasCycle(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	var visit func(node string) bool
	visit = func(node string) bool {
		if node == from {
			return true
		}
		if visited[node] {
			return false
		}
		visited[node] = true
		entry, ok := g.entries[node]
		if !ok {
			return false
		}
		for _, imp := range entry.Imports {
			if visit(imp.ModulePath) {
				return true
			}
		}
		return false
	}
	return visit(to)
}
