// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package astcache provides a content-digest-keyed store of parsed ASTs
// and per-file import graphs.
//
//   - Keyed on (path, digest): a digest mismatch on lookup is a miss and
//     evicts the stale entry, never a stale hit.
//   - Singleflight deduplication of concurrent builds for the same path.
//   - Insertion failures are swallowed - a cache miss is never a hard error.
//
// # Design Principles
//
// Parsed results are ephemeral and always rebuildable from source. The
// cache is a performance optimization, not a source of truth.
//
// # Thread Safety
//
// Cache is safe for concurrent use.
package astcache

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for cache operations.
var (
	// ErrCacheEntryInUse is returned when attempting to evict an entry
	// that has active references.
	ErrCacheEntryInUse = errors.New("cache entry in use")

	// ErrEntryNotFound is returned when the requested entry doesn't exist.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrCacheStale is returned when an entry has been marked as stale.
	ErrCacheStale = errors.New("cache entry is stale")
)

// ErrBuildFailed wraps a build error with timing information.
//
// This error type includes when the failure occurred and when
// a retry is allowed. Cache.GetOrBuild does not cache build failures
// and does not return this type; a failed build's error is returned
// to the caller as-is.
type ErrBuildFailed struct {
	// Err is the underlying build error.
	Err error

	// FailedAt is when the build failed.
	FailedAt time.Time

	// RetryAt is when a retry is allowed.
	RetryAt time.Time
}

// Error implements the error interface.
func (e *ErrBuildFailed) Error() string {
	return fmt.Sprintf("build failed at %v (retry after %v): %v",
		e.FailedAt.Format(time.RFC3339), e.RetryAt.Format(time.RFC3339), e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ErrBuildFailed) Unwrap() error {
	return e.Err
}

// CanRetry returns true if the retry time has passed.
func (e *ErrBuildFailed) CanRetry() bool {
	return time.Now().After(e.RetryAt)
}
