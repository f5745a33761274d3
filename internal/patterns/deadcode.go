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
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/forgekit/refactorctl/internal/astcache"
	"github.com/forgekit/refactorctl/internal/types"
)

// Exclusions configures what DeadSymbolFinder treats as deliberately
// unreferenced rather than dead. Detection here is textual, not a real
// call graph, so these exclusions exist to keep the false-positive rate
// down rather than to prove anything.
type Exclusions struct {
	// EntryPoints lists name patterns that are always excluded.
	// Supports a trailing "*" wildcard: "Test*", "Benchmark*".
	EntryPoints []string

	// ExportedSymbols excludes exported/public symbols, which may be
	// part of a consumed API surface outside the scanned project.
	ExportedSymbols bool

	// AnnotationPatterns lists doc-comment substrings that suppress a
	// finding, e.g. "nolint:unused".
	AnnotationPatterns []string

	// BuildTaggedFiles excludes symbols in files carrying a Go build
	// constraint, since those files may be unreferenced in the default
	// build but live under another tag.
	BuildTaggedFiles bool
}

// DefaultExclusions returns the conservative defaults: prefer missing a
// real dead symbol over flagging a live one.
func DefaultExclusions() *Exclusions {
	return &Exclusions{
		EntryPoints:        []string{"main", "init", "Test*", "Benchmark*", "Example*", "Fuzz*"},
		ExportedSymbols:    true,
		AnnotationPatterns: []string{"nolint:unused", "nolint:deadcode", "@used-by", "@entry-point"},
		BuildTaggedFiles:   true,
	}
}

// DeadSymbolOptions configures one FindUnused call.
type DeadSymbolOptions struct {
	Exclusions      *Exclusions
	IncludeExported bool
	IncludeTests    bool
	MaxResults      int
}

// DefaultDeadSymbolOptions returns the conservative defaults.
func DefaultDeadSymbolOptions() DeadSymbolOptions {
	return DeadSymbolOptions{Exclusions: DefaultExclusions()}
}

var deadSymbolSkipKinds = map[types.SymbolKind]bool{
	types.SymbolKindImport:    true,
	types.SymbolKindParameter: true,
	types.SymbolKindModule:    true,
	types.SymbolKindFile:      true,
}

// DeadSymbolFinder finds declarations with no detected reference
// elsewhere in the project. Without a call graph, "reference" means a
// textual, word-boundary match of the symbol's name in some other
// file's source; this is the same conservative trick the rest of the
// project's plugins use for content scanning (see plugin.ReferenceScanner),
// just applied to symbol names instead of import paths.
type DeadSymbolFinder struct {
	cache       *astcache.Cache
	projectRoot string
}

// NewDeadSymbolFinder creates a finder that reads source under
// projectRoot to resolve cached, relative paths.
func NewDeadSymbolFinder(cache *astcache.Cache, projectRoot string) *DeadSymbolFinder {
	return &DeadSymbolFinder{cache: cache, projectRoot: projectRoot}
}

// FindUnused scans every cached file under scope (empty means the whole
// project) for symbols with no textual reference outside their own
// declaring file.
func (d *DeadSymbolFinder) FindUnused(ctx context.Context, scope string, opts *DeadSymbolOptions) ([]DeadSymbol, error) {
	if ctx == nil {
		return nil, ErrInvalidInput
	}
	if opts == nil {
		defaults := DefaultDeadSymbolOptions()
		opts = &defaults
	}
	if opts.Exclusions == nil {
		opts.Exclusions = DefaultExclusions()
	}

	entries := d.cache.Entries()
	corpus := make(map[string]string, len(entries))
	for _, e := range entries {
		if scope != "" && !strings.HasPrefix(e.Path, scope) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(d.projectRoot, e.Path))
		if err != nil {
			continue
		}
		corpus[e.Path] = string(content)
	}

	var results []DeadSymbol
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, ok := corpus[e.Path]; !ok {
			continue
		}
		if !opts.IncludeTests && strings.HasSuffix(e.Path, "_test.go") {
			continue
		}

		for _, sym := range e.Symbols {
			if deadSymbolSkipKinds[sym.Kind] {
				continue
			}
			if excluded, _ := d.isExcluded(sym, opts, corpus[e.Path]); excluded {
				continue
			}
			if d.hasExternalReference(sym, corpus) {
				continue
			}

			results = append(results, DeadSymbol{
				Kind:       sym.Kind.String(),
				Name:       sym.Name,
				FilePath:   sym.FilePath,
				Line:       sym.Range.Start.Line,
				Reason:     "no reference found outside declaring file",
				Confidence: confidenceFor(sym),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].FilePath < results[j].FilePath
	})

	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	return results, nil
}

func (d *DeadSymbolFinder) isExcluded(sym types.Symbol, opts *DeadSymbolOptions, fileContent string) (bool, string) {
	for _, pattern := range opts.Exclusions.EntryPoints {
		if matchesPattern(pattern, sym.Name) {
			return true, "entry point"
		}
	}
	if opts.Exclusions.ExportedSymbols && sym.IsPublic && !opts.IncludeExported {
		return true, "exported symbol"
	}
	for _, pattern := range opts.Exclusions.AnnotationPatterns {
		if strings.Contains(sym.Documentation, pattern) {
			return true, "annotation"
		}
	}
	if opts.Exclusions.BuildTaggedFiles && hasBuildTag(fileContent) {
		return true, "build tagged file"
	}
	return false, ""
}

// hasExternalReference reports whether sym.Name appears, as a whole
// word, in any scanned file other than the one that declares it.
func (d *DeadSymbolFinder) hasExternalReference(sym types.Symbol, corpus map[string]string) bool {
	if sym.Name == "" {
		return true // can't search for an anonymous symbol; don't flag it
	}
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(sym.Name) + `\b`)
	if err != nil {
		return true
	}
	for path, content := range corpus {
		if path == sym.FilePath {
			continue
		}
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

func matchesPattern(pattern, name string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == name
}

func hasBuildTag(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//go:build") || strings.HasPrefix(trimmed, "// +build") {
			return true
		}
		if strings.HasPrefix(trimmed, "package ") {
			return false
		}
	}
	return false
}

func confidenceFor(sym types.Symbol) float64 {
	confidence := 0.9
	switch sym.Kind {
	case types.SymbolKindMethod:
		confidence *= 0.8 // may be called only through an interface
	case types.SymbolKindVariable, types.SymbolKindConstant:
		confidence *= 0.85
	case types.SymbolKindStruct, types.SymbolKindClass, types.SymbolKindTypeAlias:
		confidence *= 0.75 // may be used only via type assertion
	}
	if !sym.IsPublic {
		confidence *= 0.95
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.1 {
		confidence = 0.1
	}
	return confidence
}
