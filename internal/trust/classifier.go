// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package trust

import (
	"path/filepath"
	"strings"

	"github.com/forgekit/refactorctl/internal/types"
)

// Classifier assigns a TrustLevel to paths, symbols, and types using a
// fixed set of ZonePatterns. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	patterns *ZonePatterns
}

// NewClassifier creates a Classifier using patterns, or the built-in
// defaults if patterns is nil.
func NewClassifier(patterns *ZonePatterns) *Classifier {
	if patterns == nil {
		patterns = DefaultZonePatterns()
	}
	return &Classifier{patterns: patterns}
}

// ClassifyPath returns the trust level a path pattern implies, falling
// back to TrustInternal when nothing matches.
func (c *Classifier) ClassifyPath(path string) TrustLevel {
	if level, ok := c.patterns.MatchPath(path); ok {
		return level
	}
	return TrustInternal
}

// ClassifySymbol classifies a parsed symbol by checking, in priority
// order, its file path, its name, and its receiver type - matching
// whichever pattern set fires first. A symbol matching none of them
// defaults to TrustInternal.
func (c *Classifier) ClassifySymbol(sym *types.Symbol) TrustLevel {
	if sym == nil {
		return TrustInternal
	}
	if level, ok := c.patterns.MatchPath(sym.FilePath); ok {
		return level
	}
	if level, ok := c.patterns.MatchFunction(sym.Name); ok {
		return level
	}
	if sym.Receiver != "" {
		if level, ok := c.patterns.MatchReceiver(sym.Receiver); ok {
			return level
		}
	}
	return TrustInternal
}

// ZoneName derives a human-readable zone name from a path's last one
// or two directory segments, used to group classified paths for
// reporting without requiring a full call graph.
func ZoneName(path string) string {
	dir := filepath.Dir(path)
	segments := strings.Split(dir, string(filepath.Separator))
	var nonEmpty []string
	for _, s := range segments {
		if s != "" && s != "." {
			nonEmpty = append(nonEmpty, s)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return "default"
	case 1:
		return nonEmpty[0]
	default:
		return nonEmpty[len(nonEmpty)-2] + "_" + nonEmpty[len(nonEmpty)-1]
	}
}

// PrivilegedPaths filters paths down to the subset the Classifier
// assigns TrustPrivileged, the check PlanExecutor runs before applying
// a plan that touches them without options.overwrite.
func (c *Classifier) PrivilegedPaths(paths []string) []string {
	var out []string
	for _, path := range paths {
		if c.ClassifyPath(path) == TrustPrivileged {
			out = append(out, path)
		}
	}
	return out
}
