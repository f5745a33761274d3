// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plugin defines the LanguagePlugin contract: stable metadata plus
// a set of optional capability facets, discovered by asking the plugin
// rather than by inheritance. A missing facet means "not supported", not
// "do it anyway" - callers must type-assert for the facet they need and
// fall back gracefully when it is absent.
package plugin

import (
	"context"

	"github.com/forgekit/refactorctl/internal/types"
)

// ReferenceScope is a risk dial for ReferenceScanner.ScanReferences: wider
// scopes find more candidate references at the cost of more false
// positives that the caller (usually ReferenceUpdater) must filter.
type ReferenceScope int

const (
	// ScopeTopLevelOnly matches only top-level, unqualified references.
	ScopeTopLevelOnly ReferenceScope = iota
	// ScopeAllUseStatements matches every import/use statement referencing the module.
	ScopeAllUseStatements
	// ScopeQualifiedPaths matches fully-qualified path references anywhere in the body.
	ScopeQualifiedPaths
	// ScopeAll matches every reference a plugin can recognize.
	ScopeAll
)

// ModuleReference is a single textual reference to a module/package found
// by a ReferenceScanner.
type ModuleReference struct {
	FilePath string
	Range    types.Range
	RawText  string
}

// Metadata is the stable, non-behavioral description of a plugin.
type Metadata struct {
	Name             string
	FileExtensions   []string
	ManifestFilename string
	ModuleSeparator  string
	SourceDir        string
	EntryPoint       string
}

// Parser is the one required capability: every plugin must be able to
// turn file content into symbols. Parsing is total - syntactically
// invalid input yields a ParsedSource with an empty Symbols slice rather
// than an error, unless opts.Strict is set.
type Parser interface {
	Parse(ctx context.Context, content []byte, filePath string, opts types.ParseOptions) (*types.ParsedSource, error)
}

// ImportParser is an optional facet for plugins that can enumerate and
// test for imports without a full parse.
type ImportParser interface {
	ParseImports(ctx context.Context, content []byte) ([]string, error)
	ContainsImport(ctx context.Context, content []byte, module string) (bool, error)
}

// RewriteResult is the outcome of a content-transforming facet: the
// rewritten content and how many occurrences changed, so the executor can
// report impact without re-diffing.
type RewriteResult struct {
	NewContent  []byte
	ChangeCount int
}

// ImportRename rewrites import statements that reference oldModule to
// reference newModule.
type ImportRename interface {
	RenameImport(ctx context.Context, content []byte, oldModule, newModule string) (*RewriteResult, error)
}

// ImportMove rewrites import statements after a module moved from oldPath
// to newPath, recomputing relative import paths where the language uses
// them.
type ImportMove interface {
	MoveImport(ctx context.Context, content []byte, oldPath, newPath string) (*RewriteResult, error)
}

// ImportMutation covers narrower content-transforming operations that
// don't fit ImportRename/ImportMove - e.g. adding or removing a single
// named import.
type ImportMutation interface {
	AddImport(ctx context.Context, content []byte, module string, symbols []string) (*RewriteResult, error)
	RemoveImport(ctx context.Context, content []byte, module string) (*RewriteResult, error)
}

// ImportAdvanced covers language-specific import transforms that don't
// generalize across plugins (e.g. Go import grouping/aliasing repair).
type ImportAdvanced interface {
	NormalizeImports(ctx context.Context, content []byte) (*RewriteResult, error)
}

// ReferenceScanner finds textual references to a module/package within a
// single file's content, at the requested risk dial.
type ReferenceScanner interface {
	ScanReferences(ctx context.Context, content []byte, filePath, moduleName string, scope ReferenceScope) ([]ModuleReference, error)
}

// WorkspaceSupport manipulates a project's workspace manifest in memory.
// Implementations must operate on file content only - no I/O.
type WorkspaceSupport interface {
	IsWorkspaceManifest(content []byte) bool
	ListMembers(content []byte) ([]string, error)
	AddMember(content []byte, memberPath string) ([]byte, error)
	RemoveMember(content []byte, memberPath string) ([]byte, error)
	RenamePackage(content []byte, oldName, newName string) ([]byte, error)
}

// ManifestUpdater structurally updates a package manifest after a
// dependency it names moved or was renamed on disk.
type ManifestUpdater interface {
	UpdateDependencyPath(ctx context.Context, content []byte, oldName, newName, oldPath, newPath string) (*RewriteResult, error)
}

// CreatedFile is one file a ProjectFactory produced.
type CreatedFile struct {
	Path    string
	Content []byte
}

// ProjectFactory creates a new package/crate at a given path.
type ProjectFactory interface {
	CreatePackage(ctx context.Context, dirPath, packageName string) ([]CreatedFile, error)
}

// RefactoringProvider plans AST-level, single-file refactorings. The
// returned EditPlan covers only the source file passed in; cross-file
// effects (reference updates, manifest edits) are the caller's job, not
// the plugin's.
type RefactoringProvider interface {
	ExtractFunction(ctx context.Context, content []byte, filePath string, r types.Range, newName string) (*types.EditPlan, error)
	ExtractVariable(ctx context.Context, content []byte, filePath string, r types.Range, newName string) (*types.EditPlan, error)
	InlineVariable(ctx context.Context, content []byte, filePath string, pos types.Position) (*types.EditPlan, error)
	MoveSymbol(ctx context.Context, content []byte, filePath, symbolName, destFilePath string) (*types.EditPlan, error)
}

// LspInstaller locates or installs the LSP binary for this language. It
// is deliberately kept off the core's hot path - callers invoke it only
// when bootstrapping LSP-backed features.
type LspInstaller interface {
	LocateOrInstall(ctx context.Context) (binaryPath string, err error)
}

// LanguagePlugin is the full contract: stable metadata plus the one
// required Parser facet. Every other capability is optional and
// discovered with a type assertion against the concrete plugin value,
// e.g.:
//
//	if ir, ok := p.(ImportRename); ok { ... }
type LanguagePlugin interface {
	Metadata() Metadata
	Parser
}
