// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fileservice

import "github.com/pmezard/go-difflib/difflib"

// RenameSimilarityThreshold mirrors git's own default rename-detection
// cutoff (`git diff -M50%`): a moved file at or above this content
// similarity is staged as a pure rename, below it as a delete+add so
// git's own renamed-file heuristics run against the new blob instead of
// being forced into a rename git wouldn't have picked on its own.
const RenameSimilarityThreshold = 0.5

// ContentSimilarity returns the line-level similarity ratio between two
// file contents, in [0, 1], using the same difflib SequenceMatcher that
// unifiedDiffText in internal/editplan uses to render hunks. Two empty
// contents are defined as identical (ratio 1).
func ContentSimilarity(oldContent, newContent []byte) float64 {
	if len(oldContent) == 0 && len(newContent) == 0 {
		return 1
	}
	matcher := difflib.NewMatcher(
		difflib.SplitLines(string(oldContent)),
		difflib.SplitLines(string(newContent)),
	)
	return matcher.Ratio()
}
