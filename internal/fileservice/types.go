// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fileservice is the sole writer of file content: every other
// component that needs to touch disk goes through it, so atomic
// replace, precondition checking, and VCS-aware invalidation all happen
// in one place.
//
// # Thread Safety
//
// Service is safe for concurrent use; callers are still responsible for
// holding the appropriate lock.Manager guard around a sequence of reads
// and writes that must appear atomic to other callers.
package fileservice

import (
	"os"
)

// WriteMode selects how Write persists new content.
type WriteMode string

const (
	// ModeDirect writes the file in place via a temp-file-then-rename
	// sequence, with no VCS awareness.
	ModeDirect WriteMode = "direct"

	// ModeGitAware additionally runs `git add` after a successful write
	// so the index tracks the change, and classifies cache invalidation
	// through the git executor rather than a single-path invalidate.
	ModeGitAware WriteMode = "git_aware"
)

// ReadResult is the outcome of a Read call.
type ReadResult struct {
	Path    string
	Content []byte
	Digest  string
}

// WriteResult is the outcome of a successful Write call.
type WriteResult struct {
	Path         string
	Digest       string
	BytesWritten int64
	Created      bool
}

// DefaultFileMode is applied to files this service creates.
const DefaultFileMode = os.FileMode(0644)

// DefaultDirMode is applied to directories this service creates on
// behalf of a write whose parent doesn't yet exist.
const DefaultDirMode = os.FileMode(0755)
