// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner implements the five EditPlan-producing planners -
// MoveService, RenamePlanner, ExtractPlanner, InlinePlanner, and
// DeletePlanner. Each accepts a typed intent and returns an EditPlan
// following the same shape: validate the target, snapshot digests,
// compute primary edits, compute secondary edits through a
// ReferenceUpdater, compute manifest edits through a plugin's
// WorkspaceSupport/ManifestUpdater facet when the target is a package,
// and populate summary/warnings/checksums. Planners never write to
// disk; every content read goes through an injected FileReader.
package planner

import (
	"context"

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/refupdater"
)

// FileReader is the narrow slice of fileservice.Service a planner
// needs: read-only content access keyed by digest.
type FileReader interface {
	Read(ctx context.Context, path string) (content []byte, digest string, err error)
	Exists(ctx context.Context, path string) bool
}

// PluginResolver resolves the plugin responsible for a file path, by
// extension. The bootstrap-wired PluginRegistry satisfies both this
// and refupdater.PluginResolver.
type PluginResolver interface {
	PluginFor(path string) (plugin.LanguagePlugin, bool)
}

// RefUpdater is the narrow view of refupdater.ReferenceUpdater a
// planner needs to compute secondary edits for a rename or move.
type RefUpdater interface {
	UpdateReferences(ctx context.Context, req refupdater.Request) (*refupdater.Result, error)
}

// CycleChecker reports whether linking from would create an import
// cycle through to, and lists the direct importers of a path - both
// satisfied by *types.GlobalGraph.
type CycleChecker interface {
	HasCycle(from, to string) bool
	Importers(target string) []string
}

// Deps bundles the dependencies every planner needs. A nil field
// disables the capability it backs (e.g. a nil Updater means secondary
// edits are skipped rather than failing the plan).
type Deps struct {
	Reader  FileReader
	Plugins PluginResolver
	Updater RefUpdater
	Graph   CycleChecker
}

func (d Deps) validate() error {
	if d.Reader == nil || d.Plugins == nil {
		return ErrInvalidInput
	}
	return nil
}
