// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rust

import (
	"context"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/forgekit/refactorctl/internal/plugin"
)

// ManifestUpdater implements plugin.ManifestUpdater for Cargo.toml,
// rewriting path dependencies after a crate move or rename.
//
// go-toml/v2 round-trips through a generic map rather than preserving
// the original formatting byte-for-byte the way an edit-in-place TOML
// library would; key ordering and comments are not guaranteed to survive.
type ManifestUpdater struct{}

// NewManifestUpdater constructs a Cargo.toml dependency rewriter.
func NewManifestUpdater() *ManifestUpdater { return &ManifestUpdater{} }

var depSections = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// UpdateDependencyPath rewrites any dependency entry named oldName in
// [dependencies], [dev-dependencies], or [build-dependencies] to use
// newName and newPath, preserving any other dependency keys (version,
// features, optional) it already carried.
func (m *ManifestUpdater) UpdateDependencyPath(ctx context.Context, content []byte, oldName, newName, oldPath, newPath string) (*plugin.RewriteResult, error) {
	_ = oldPath

	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}

	changeCount := 0
	for _, section := range depSections {
		raw, ok := doc[section]
		if !ok {
			continue
		}
		table, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		existing, ok := table[oldName]
		if !ok {
			continue
		}

		entry, ok := existing.(map[string]any)
		if !ok {
			entry = map[string]any{}
		}
		entry["path"] = newPath
		delete(table, oldName)
		table[newName] = entry
		changeCount++
	}

	if changeCount == 0 {
		return &plugin.RewriteResult{NewContent: content, ChangeCount: 0}, nil
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal Cargo.toml: %w", err)
	}
	return &plugin.RewriteResult{NewContent: out, ChangeCount: changeCount}, nil
}

// IsWorkspaceManifest reports whether content declares a `[workspace]`
// table, i.e. it is a workspace root Cargo.toml rather than a single
// crate manifest. Unparseable content is reported as not-a-workspace.
func (m *ManifestUpdater) IsWorkspaceManifest(content []byte) bool {
	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return false
	}
	_, ok := doc["workspace"]
	return ok
}

// ListMembers returns the `workspace.members` glob entries.
func (m *ManifestUpdater) ListMembers(content []byte) ([]string, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	workspace, ok := doc["workspace"].(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, ok := workspace["members"].([]any)
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(raw))
	for _, m := range raw {
		if s, ok := m.(string); ok {
			members = append(members, s)
		}
	}
	return members, nil
}

// AddMember appends memberPath to `workspace.members` if not already present.
func (m *ManifestUpdater) AddMember(content []byte, memberPath string) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	workspace, ok := doc["workspace"].(map[string]any)
	if !ok {
		return content, nil
	}
	members, _ := workspace["members"].([]any)
	for _, existing := range members {
		if s, ok := existing.(string); ok && s == memberPath {
			return content, nil
		}
	}
	workspace["members"] = append(members, memberPath)
	doc["workspace"] = workspace

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal Cargo.toml: %w", err)
	}
	return out, nil
}

// RemoveMember deletes memberPath from `workspace.members`.
func (m *ManifestUpdater) RemoveMember(content []byte, memberPath string) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	workspace, ok := doc["workspace"].(map[string]any)
	if !ok {
		return content, nil
	}
	members, _ := workspace["members"].([]any)
	filtered := make([]any, 0, len(members))
	removed := 0
	for _, existing := range members {
		if s, ok := existing.(string); ok && s == memberPath {
			removed++
			continue
		}
		filtered = append(filtered, existing)
	}
	if removed == 0 {
		return content, nil
	}
	workspace["members"] = filtered
	doc["workspace"] = workspace

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal Cargo.toml: %w", err)
	}
	return out, nil
}

// RenamePackage rewrites this manifest's own `[package].name` from
// oldName to newName.
func (m *ManifestUpdater) RenamePackage(content []byte, oldName, newName string) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	pkg, ok := doc["package"].(map[string]any)
	if !ok {
		return content, nil
	}
	if pkg["name"] != oldName {
		return content, nil
	}
	pkg["name"] = newName
	doc["package"] = pkg

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal Cargo.toml: %w", err)
	}
	return out, nil
}

var (
	_ plugin.ManifestUpdater  = (*ManifestUpdater)(nil)
	_ plugin.WorkspaceSupport = (*ManifestUpdater)(nil)
)
