// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package plugin

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Registry holds every LanguagePlugin known to the workspace, keyed by
// name and by file extension. It is built once at bootstrap with
// NewRegistry and is immutable afterward - there is no Register method
// on the zero-value type, only the constructor.
type Registry struct {
	byName      map[string]LanguagePlugin
	byExtension map[string]LanguagePlugin
	ordered     []LanguagePlugin
}

// NewRegistry builds an immutable registry from the given plugins. Later
// plugins take priority over earlier ones for an extension collision,
// matching the order callers pass them in.
func NewRegistry(plugins ...LanguagePlugin) *Registry {
	r := &Registry{
		byName:      make(map[string]LanguagePlugin, len(plugins)),
		byExtension: make(map[string]LanguagePlugin),
		ordered:     append([]LanguagePlugin(nil), plugins...),
	}
	for _, p := range plugins {
		meta := p.Metadata()
		r.byName[meta.Name] = p
		for _, ext := range meta.FileExtensions {
			r.byExtension[strings.ToLower(ext)] = p
		}
	}
	return r
}

// ByName returns the plugin registered under name.
func (r *Registry) ByName(name string) (LanguagePlugin, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// PluginFor is ForFile under the name planner.PluginResolver and
// refupdater.PluginResolver both declare, so a *Registry satisfies
// either interface without an adapter.
func (r *Registry) PluginFor(filePath string) (LanguagePlugin, bool) {
	return r.ForFile(filePath)
}

// ForFile returns the plugin responsible for filePath, matched by its
// extension.
func (r *Registry) ForFile(filePath string) (LanguagePlugin, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	p, ok := r.byExtension[ext]
	return p, ok
}

// ForFileOrError is ForFile but returns a descriptive error instead of a
// boolean, for call sites that want to propagate the failure directly.
func (r *Registry) ForFileOrError(filePath string) (LanguagePlugin, error) {
	p, ok := r.ForFile(filePath)
	if !ok {
		return nil, fmt.Errorf("no plugin registered for %q", filePath)
	}
	return p, nil
}

// All returns every registered plugin in registration order.
func (r *Registry) All() []LanguagePlugin {
	return append([]LanguagePlugin(nil), r.ordered...)
}

// Names returns the names of every registered plugin, in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, p.Metadata().Name)
	}
	return names
}
