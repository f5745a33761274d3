// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace holds the one piece of intentional process-wide
// state the core keeps beyond a single request: the (user, workspace-id)
// tenancy map. Everything else - locks, caches, dispatchers - is
// constructed per tenant and lives only as long as that tenant's entry.
package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/forgekit/refactorctl/internal/dispatcher"
	"github.com/forgekit/refactorctl/internal/errors"
)

// Key identifies one tenant's workspace. Two different users may reuse
// the same WorkspaceID for unrelated workspaces without colliding, since
// the map is keyed on the pair.
type Key struct {
	User        string
	WorkspaceID string
}

func (k Key) String() string {
	return k.User + "/" + k.WorkspaceID
}

// Instance is a fully constructed, ready-to-dispatch workspace.
type Instance struct {
	// Root is the canonicalized, absolute workspace root this instance
	// was built against - symlinks resolved, per the sandbox's
	// containment rule.
	Root string
	// Dispatcher routes tool calls against Root.
	Dispatcher *dispatcher.Dispatcher

	closer io.Closer
}

// NewInstance builds an Instance for a Factory implementation to
// return: root and dispatcher are exposed directly, closer is whatever
// per-tenant resource (typically an astcache.Watcher wrapped with a
// history.Store) needs tearing down on eviction. closer may be nil.
func NewInstance(root string, dispatcher *dispatcher.Dispatcher, closer io.Closer) *Instance {
	return &Instance{Root: root, Dispatcher: dispatcher, closer: closer}
}

// Close releases whatever per-tenant resources Factory returned -
// typically an astcache.Watcher and a history.Store. Safe to call on a
// zero-value closer.
func (i *Instance) Close() error {
	if i.closer == nil {
		return nil
	}
	return i.closer.Close()
}

// Factory builds a complete Instance rooted at root, which Manager has
// already canonicalized. Implementations own constructing every
// internal/* collaborator a workspace needs (FileService, LockManager,
// AstCache, PlanExecutor, History, the planners, and the Dispatcher
// itself) and wrapping whichever of them need teardown into the
// returned Instance's Close.
type Factory func(ctx context.Context, root string) (*Instance, error)

type tenant struct {
	instance *Instance
	lastUsed time.Time
}

// Manager is the process-wide (user, workspace-id) -> Instance map.
// It lazily constructs an Instance on the first Get for a key via
// Factory and returns the cached one on every subsequent Get. The zero
// value is not usable; construct with NewManager.
type Manager struct {
	factory Factory

	mu      sync.Mutex
	tenants map[Key]*tenant
}

// NewManager creates an empty tenancy map that builds new Instances
// with factory.
func NewManager(factory Factory) *Manager {
	return &Manager{factory: factory, tenants: make(map[Key]*tenant)}
}

// Get returns the Instance for key, canonicalizing root and building it
// via Manager's Factory on first use. A second Get for the same key
// with a different root does not rebuild the Instance - a
// (user, workspace-id) pair names one workspace for the lifetime of the
// process, and a caller that genuinely needs a different root for that
// pair should Evict it first.
func (m *Manager) Get(ctx context.Context, key Key, root string) (*Instance, error) {
	canonical, err := Canonicalize(root)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tenants[key]; ok {
		t.lastUsed = time.Now()
		return t.instance, nil
	}

	inst, err := m.factory(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("workspace: constructing instance for %s: %w", key, err)
	}
	m.tenants[key] = &tenant{instance: inst, lastUsed: time.Now()}
	return inst, nil
}

// Lookup returns the already-constructed Instance for key without
// invoking Factory, reporting false if no tenant is live for it.
func (m *Manager) Lookup(key Key) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[key]
	if !ok {
		return nil, false
	}
	t.lastUsed = time.Now()
	return t.instance, true
}

// Evict closes and forgets key's Instance, if one is live. Returns false
// if no tenant was live for key.
func (m *Manager) Evict(key Key) (bool, error) {
	m.mu.Lock()
	t, ok := m.tenants[key]
	if ok {
		delete(m.tenants, key)
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, t.instance.Close()
}

// EvictIdleSince closes and forgets every tenant whose Instance has not
// been returned by Get or Lookup since cutoff, for a caller that wants
// to bound how many workspaces stay resident. Returns the keys evicted;
// a close error for one tenant does not stop the others from being
// evicted, and the first such error is returned alongside the full list.
func (m *Manager) EvictIdleSince(cutoff time.Time) ([]Key, error) {
	m.mu.Lock()
	stale := make(map[Key]*tenant)
	for key, t := range m.tenants {
		if t.lastUsed.Before(cutoff) {
			stale[key] = t
			delete(m.tenants, key)
		}
	}
	m.mu.Unlock()

	keys := make([]Key, 0, len(stale))
	var firstErr error
	for key, t := range stale {
		keys = append(keys, key)
		if err := t.instance.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("workspace: closing %s: %w", key, err)
		}
	}
	return keys, firstErr
}

// Len reports how many tenants are currently live, for diagnostics.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tenants)
}

// Close tears down every live tenant. Intended for process shutdown;
// the first close error encountered is returned after every tenant has
// been attempted.
func (m *Manager) Close() error {
	m.mu.Lock()
	tenants := m.tenants
	m.tenants = make(map[Key]*tenant)
	m.mu.Unlock()

	var firstErr error
	for key, t := range tenants {
		if err := t.instance.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("workspace: closing %s: %w", key, err)
		}
	}
	return firstErr
}

// Canonicalize resolves root to an absolute path with symlinks
// resolved, the form every containment check in this tree compares
// against. Returns errors.KindInvalidRequest if root does not exist or
// is not a directory.
func Canonicalize(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.New(errors.KindInvalidRequest, fmt.Sprintf("workspace: cannot resolve %q: %v", root, err))
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.New(errors.KindInvalidRequest, fmt.Sprintf("workspace: root does not exist: %s", abs))
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", errors.New(errors.KindInvalidRequest, fmt.Sprintf("workspace: root is not a directory: %s", resolved))
	}
	return resolved, nil
}
