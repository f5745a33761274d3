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
	"errors"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/forgekit/refactorctl/internal/lock"
)

// Watcher evicts cache entries when files change outside of a plan
// apply - an editor save, a VCS checkout, a generated-file rewrite. It
// is an additional invalidation source on top of the executor's
// explicit InvalidatePaths call; either one is sufficient to keep the
// cache from serving a stale hit.
//
// When constructed with a non-nil Locks, each event is also reported to
// it via NotifyExternalChange: a change to a path currently held by a
// plan apply, or one racing an in-flight lock acquisition, is logged at
// warn level instead of passing silently, since it means a caller may be
// about to overwrite (or be overwritten by) a concurrent edit.
type Watcher struct {
	cache *Cache
	locks *lock.Manager
	fsw   *fsnotify.Watcher
	done  chan struct{}
}

// NewWatcher starts watching root for external file changes and wires
// them into cache invalidation. locks may be nil, in which case external
// modifications are only used for cache invalidation and never reported.
// Callers must call Close when done.
func NewWatcher(cache *Cache, locks *lock.Manager, root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(root); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{cache: cache, locks: locks, fsw: fsw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func changeType(op fsnotify.Op) lock.ChangeType {
	switch {
	case op&fsnotify.Remove != 0:
		return lock.ChangeDelete
	case op&fsnotify.Rename != 0:
		return lock.ChangeRename
	default:
		return lock.ChangeWrite
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.cache.Invalidate(event.Name)
				w.reportExternalChange(event.Name, changeType(event.Op))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("astcache watcher error", slog.String("error", err.Error()))
		case <-w.done:
			return
		}
	}
}

// reportExternalChange surfaces lock.NotifyExternalChange's verdict; a
// path nobody holds or is waiting on (lock.ErrLockNotHeld) is the common
// case and is not logged.
func (w *Watcher) reportExternalChange(path string, ct lock.ChangeType) {
	if w.locks == nil {
		return
	}
	err := w.locks.NotifyExternalChange(path, ct)
	if err == nil || errors.Is(err, lock.ErrLockNotHeld) {
		return
	}
	slog.Warn("external change to a watched path", slog.String("path", path), slog.String("error", err.Error()))
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
