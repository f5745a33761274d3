// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history retains a bounded ring of recently applied plans'
// pre-apply file snapshots, so a caller can explicitly undo a previous,
// already-completed PlanExecutor.Apply even after the executor's own
// per-call journal has gone out of scope.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/forgekit/refactorctl/internal/types"
)

// Snapshot is the pre-apply state of one path touched by a plan: its
// content if it existed, or Existed=false if the plan created it.
type Snapshot struct {
	Path    string `json:"path"`
	Existed bool   `json:"existed"`
	Content []byte `json:"content,omitempty"`
}

// Entry is everything needed to reverse one applied plan.
type Entry struct {
	PlanID    string         `json:"planId"`
	PlanType  types.PlanType `json:"planType"`
	AppliedAt time.Time      `json:"appliedAt"`
	Snapshots []Snapshot     `json:"snapshots"`
}

// Store is a bounded, in-memory undo journal with optional JSON
// persistence across process restarts.
//
// Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	ring        *ringBuffer[Entry]
	persistPath string
}

// DefaultCapacity is the number of applied plans retained when a caller
// doesn't specify one.
const DefaultCapacity = 50

// NewStore creates a Store retaining up to capacity entries. If
// persistPath is non-empty, previously persisted entries are loaded from
// it now and Persist writes there later; a missing file is not an error.
func NewStore(capacity int, persistPath string) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{ring: newRingBuffer[Entry](capacity), persistPath: persistPath}
	if persistPath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.persistPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("history: reading %s: %w", s.persistPath, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("history: decoding %s: %w", s.persistPath, err)
	}
	for _, e := range entries {
		s.ring.push(e)
	}
	return nil
}

// Record appends entry as the most recently applied plan, evicting the
// oldest retained entry once the store is at capacity.
func (s *Store) Record(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.push(entry)
}

// PopLast removes and returns the most recently applied plan not yet
// undone. Calling it repeatedly walks backward through history one plan
// at a time.
func (s *Store) PopLast() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.popNewest()
}

// Len reports how many applied plans are currently retained.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.len()
}

// Persist writes every retained entry to persistPath as JSON. A no-op if
// the Store was constructed without one.
func (s *Store) Persist() error {
	if s.persistPath == "" {
		return nil
	}
	s.mu.Lock()
	entries := s.ring.slice()
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.persistPath), 0755); err != nil {
		return fmt.Errorf("history: creating persist dir: %w", err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("history: encoding entries: %w", err)
	}
	return os.WriteFile(s.persistPath, data, 0644)
}

// Close persists retained entries (if persistPath was set) before the
// process exits.
func (s *Store) Close() error {
	return s.Persist()
}
