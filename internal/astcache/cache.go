// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package astcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/forgekit/refactorctl/internal/types"
)

// Entry is a single cached parse result, keyed by the digest of the
// content it was produced from.
type Entry struct {
	Path        string
	Digest      string
	Symbols     []types.Symbol
	ImportGraph *types.ImportGraph
	ExpiresAt   time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// BuildFunc produces a fresh Entry for path, to be called at most once
// concurrently per path thanks to singleflight.
type BuildFunc func(ctx context.Context, path string) (*Entry, error)

// Cache is the shared, concurrent-read/locked-write AstCache described
// in the component design: a digest-indexed map from path to parsed
// result. Insertions never hard-fail; GetOrBuild swallows a Put failure
// silently and returns the freshly built entry anyway.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*Entry

	group singleflight.Group
}

// New creates an empty cache. ttl of zero means entries never expire by
// age (they are still evicted by digest mismatch or explicit
// invalidation).
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*Entry),
	}
}

// Get looks up path, treating a digest mismatch as a miss and evicting
// the stale entry so no caller can observe it again.
func (c *Cache) Get(path, digest string) (*Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if entry.Digest != digest || entry.expired(time.Now()) {
		c.Invalidate(path)
		return nil, false
	}
	return entry, true
}

// Put inserts or replaces the cached entry for path. Put never returns
// an error: cache failure is a miss, not a fault.
func (c *Cache) Put(entry *Entry) {
	if entry == nil || entry.Path == "" {
		return
	}
	if c.ttl > 0 && entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[entry.Path] = entry
	c.mu.Unlock()
}

// Invalidate evicts path unconditionally.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// InvalidatePaths evicts every path in paths; used by the executor to
// clear every file a just-applied plan touched, and by the workspace
// watcher to clear files changed externally.
func (c *Cache) InvalidatePaths(paths []string) {
	c.mu.Lock()
	for _, p := range paths {
		delete(c.entries, p)
	}
	c.mu.Unlock()
}

// Clear evicts every cached entry, used when a VCS operation's blast
// radius can't be enumerated as a file list (e.g. a branch checkout).
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
}

// Len reports the number of entries currently cached, for diagnostics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a snapshot of every currently cached entry, for
// whole-project sweeps (dead-symbol detection, cycle detection) that
// need to walk every parsed file rather than look one up by path.
func (c *Cache) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// GetOrBuild returns the cached entry for path if its digest matches,
// otherwise calls build exactly once even under concurrent callers for
// the same path (singleflight), caches the result, and returns it.
func (c *Cache) GetOrBuild(ctx context.Context, path, digest string, build BuildFunc) (*Entry, error) {
	if entry, ok := c.Get(path, digest); ok {
		return entry, nil
	}

	result, err, _ := c.group.Do(path, func() (any, error) {
		entry, buildErr := build(ctx, path)
		if buildErr != nil {
			return nil, buildErr
		}
		c.Put(entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Entry), nil
}
