// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

// ToolParam represents a parameter in a tool definition.
type ToolParam struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     string   `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDefinition represents a tool available to the agent.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Parameters  []ToolParam `json:"parameters"`
	Returns     string      `json:"returns"`
	Performance string      `json:"performance"`
}

// ToolRegistry provides tool definitions for agent discovery.
//
// Thread Safety:
//
//	ToolRegistry is immutable after initialization and safe for concurrent use.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates a registry with all available tools.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: allToolDefinitions(),
	}
}

// GetTools returns all available tool definitions.
func (r *ToolRegistry) GetTools() []ToolDefinition {
	return r.tools
}

// GetToolsByCategory returns tools filtered by category.
func (r *ToolRegistry) GetToolsByCategory(category string) []ToolDefinition {
	var result []ToolDefinition
	for _, t := range r.tools {
		if t.Category == category {
			result = append(result, t)
		}
	}
	return result
}

// allToolDefinitions returns the 7 tools exposed over tools/call:
// inspect_code, search_code, rename_all, relocate, prune, refactor, and
// workspace.
func allToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "inspect_code",
			Description: "Aggregate intelligence at a source position: definition, references, hover text, and diagnostics. Read-only.",
			Category:    "inspect",
			Parameters: []ToolParam{
				{Name: "path", Type: "string", Description: "File path to inspect", Required: true},
				{Name: "position", Type: "object", Description: "Zero-based {line, col} to inspect", Required: true},
			},
			Returns:     "Definition symbol, referencing file paths, hover text, and diagnostics where available",
			Performance: "<100ms",
		},
		{
			Name:        "search_code",
			Description: "Workspace-wide symbol search by name fragment, optionally filtered by symbol kind. Read-only.",
			Category:    "inspect",
			Parameters: []ToolParam{
				{Name: "query", Type: "string", Description: "Name fragment to match, case-insensitive", Required: true},
				{Name: "kind", Type: "string", Description: "Restrict to one symbol kind (e.g. function, struct, interface)", Required: false},
				{Name: "limit", Type: "integer", Description: "Maximum results to return", Required: false},
			},
			Returns:     "Matching symbols with file path, range, and kind",
			Performance: "<150ms",
		},
		{
			Name:        "rename_all",
			Description: "Rename one or more targets (symbol, file, or directory) everywhere they are referenced. Mutating unless options.dryRun is set.",
			Category:    "mutate",
			Parameters: []ToolParam{
				{Name: "target", Type: "object", Description: "Single target to rename: {kind, path, selector?}", Required: false},
				{Name: "targets", Type: "array", Description: "Multiple targets sharing one newName", Required: false},
				{Name: "newName", Type: "string", Description: "The new name", Required: true},
				{Name: "options", Type: "object", Description: "{dryRun, overwrite, scope, validate}", Required: false},
			},
			Returns:     "Applied/failed file paths, warnings, and the EditPlan when dryRun is set",
			Performance: "<500ms",
		},
		{
			Name:        "relocate",
			Description: "Move a target (file or directory) to a new path, updating importing files and manifests. Mutating unless options.dryRun is set.",
			Category:    "mutate",
			Parameters: []ToolParam{
				{Name: "target", Type: "object", Description: "{kind, path}", Required: true},
				{Name: "newPath", Type: "string", Description: "Destination path", Required: true},
				{Name: "options", Type: "object", Description: "{dryRun, overwrite, scope, validate}", Required: false},
			},
			Returns:     "Applied/failed file paths, warnings, and the EditPlan when dryRun is set",
			Performance: "<500ms",
		},
		{
			Name:        "prune",
			Description: "Delete a target (file or directory), removing references and manifest entries. Mutating unless options.dryRun is set.",
			Category:    "mutate",
			Parameters: []ToolParam{
				{Name: "target", Type: "object", Description: "{kind, path}", Required: true},
				{Name: "options", Type: "object", Description: "{dryRun, overwrite, scope, validate}", Required: false},
			},
			Returns:     "Applied/failed file paths, warnings, and the EditPlan when dryRun is set",
			Performance: "<500ms",
		},
		{
			Name:        "refactor",
			Description: "Extract a function or variable from a range, or inline a variable at a position. Mutating unless options.dryRun is set.",
			Category:    "mutate",
			Parameters: []ToolParam{
				{Name: "operation", Type: "string", Description: "One of extract_function, extract_variable, inline_variable", Required: true, Enum: []string{"extract_function", "extract_variable", "inline_variable"}},
				{Name: "path", Type: "string", Description: "File being refactored", Required: true},
				{Name: "range", Type: "object", Description: "Selection range for extract operations", Required: false},
				{Name: "position", Type: "object", Description: "Cursor position for inline_variable", Required: false},
				{Name: "newName", Type: "string", Description: "Name for the extracted function or variable", Required: false},
				{Name: "options", Type: "object", Description: "{dryRun, overwrite, scope, validate}", Required: false},
			},
			Returns:     "Applied/failed file paths, warnings, and the EditPlan when dryRun is set",
			Performance: "<300ms",
		},
		{
			Name:        "workspace",
			Description: "Package management (list/add/remove members, rename a package), workspace-wide literal find/replace, and undoing the most recently applied plan.",
			Category:    "workspace",
			Parameters: []ToolParam{
				{Name: "operation", Type: "string", Description: "One of list_members, add_member, remove_member, rename_package, find_replace, undo_last", Required: true, Enum: []string{"list_members", "add_member", "remove_member", "rename_package", "find_replace", "undo_last"}},
				{Name: "manifestPath", Type: "string", Description: "Workspace manifest path (required for package-management operations)", Required: false},
				{Name: "memberPath", Type: "string", Description: "Member path for add_member/remove_member", Required: false},
				{Name: "oldName", Type: "string", Description: "Current package name for rename_package", Required: false},
				{Name: "newName", Type: "string", Description: "New package name for rename_package", Required: false},
				{Name: "find", Type: "string", Description: "Literal text to find for find_replace", Required: false},
				{Name: "replace", Type: "string", Description: "Replacement text for find_replace", Required: false},
				{Name: "options", Type: "object", Description: "{dryRun, overwrite, scope, validate}", Required: false},
			},
			Returns:     "Member list, applied/failed file paths, the EditPlan when dryRun is set, or the restored paths for undo_last",
			Performance: "<400ms",
		},
	}
}
