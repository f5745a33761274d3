// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package golang implements the required Parser facet, plus the
// ImportParser facet, for Go source files. It does not implement
// ImportAdvanced.
package golang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/types"
)

// File size constants for security validation.
const (
	// DefaultMaxFileSize is the maximum file size the parser will accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold at which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024
)

// ErrFileTooLarge is returned when input content exceeds the maximum file size.
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ErrInvalidContent is returned when input content is not valid UTF-8.
var ErrInvalidContent = errors.New("content is not valid UTF-8")

// Option configures a Parser instance.
type Option func(*Parser)

// WithMaxFileSize sets the maximum file size the parser will accept.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// Parser implements plugin.Parser and plugin.ImportParser for Go source
// code, backed by tree-sitter.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance internally.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a Go source parser with sensible defaults.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Metadata returns this plugin's stable identity.
func (p *Parser) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "go",
		FileExtensions:   []string{".go"},
		ManifestFilename: "go.mod",
		ModuleSeparator:  "/",
		SourceDir:        ".",
		EntryPoint:       "main.go",
	}
}

// Parse extracts symbols from Go source code. Parsing is total:
// syntactically invalid code still returns the symbols tree-sitter could
// recover, unless opts.Strict is set and the tree contains an error.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string, opts types.ParseOptions) (*types.ParsedSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}

	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large go file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w", ErrInvalidContent)
	}

	sp := sitter.NewParser()
	sp.SetLanguage(golang.GetLanguage())

	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	root := tree.RootNode()
	if root == nil {
		return &types.ParsedSource{Symbols: nil}, nil
	}
	if root.HasError() && opts.Strict {
		return nil, fmt.Errorf("%w: source contains syntax errors", ErrInvalidContent)
	}

	e := &extractor{content: content, filePath: filePath, root: root}
	e.extractPackage()
	e.extractImports()
	e.extractFunctions()
	e.extractMethods()
	e.extractTypes()
	e.extractVariables()
	e.extractConstants()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}

	return &types.ParsedSource{Symbols: e.symbols, Opaque: tree}, nil
}

// extractor walks one parsed tree and accumulates symbols. It is
// single-use: callers create one per Parse call.
type extractor struct {
	content  []byte
	filePath string
	root     *sitter.Node
	symbols  []types.Symbol
}

func rangeOf(n *sitter.Node) types.Range {
	return types.Range{
		Start: types.Position{Line: int(n.StartPoint().Row), Column: int(n.StartPoint().Column)},
		End:   types.Position{Line: int(n.EndPoint().Row), Column: int(n.EndPoint().Column)},
	}
}

func isExported(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (e *extractor) text(n *sitter.Node) string {
	return string(e.content[n.StartByte():n.EndByte()])
}

func (e *extractor) extractPackage() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			nameNode := child.Child(j)
			if nameNode.Type() != "package_identifier" {
				continue
			}
			name := e.text(nameNode)
			e.symbols = append(e.symbols, types.Symbol{
				ID:            types.NewSymbolID(e.filePath, name, int(nameNode.StartPoint().Row)),
				Name:          name,
				Kind:          types.SymbolKindModule,
				FilePath:      e.filePath,
				Range:         rangeOf(nameNode),
				IsPublic:      true,
				Language:      "go",
				Documentation: e.precedingComment(child),
			})
			return
		}
	}
}

func (e *extractor) extractImports() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "import_declaration" {
			e.processImportDecl(child)
		}
	}
}

func (e *extractor) processImportDecl(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			e.processImportSpec(child)
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "import_spec" {
					e.processImportSpec(spec)
				}
			}
		}
	}
}

func (e *extractor) processImportSpec(node *sitter.Node) {
	var path string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "interpreted_string_literal" {
			path = strings.Trim(e.text(child), "\"")
		}
	}
	if path == "" {
		return
	}
	e.symbols = append(e.symbols, types.Symbol{
		ID:       types.NewSymbolID(e.filePath, path, int(node.StartPoint().Row)),
		Name:     path,
		Kind:     types.SymbolKindImport,
		FilePath: e.filePath,
		Range:    rangeOf(node),
		IsPublic: true,
		Language: "go",
	})
}

func (e *extractor) extractFunctions() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "function_declaration" {
			e.processFunctionDecl(child)
		}
	}
}

func (e *extractor) processFunctionDecl(node *sitter.Node) {
	var name, params, returns string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = e.text(child)
		case "parameter_list":
			if params == "" {
				params = e.text(child)
			} else {
				returns = e.text(child)
			}
		case "type_identifier", "pointer_type", "slice_type", "map_type", "channel_type", "qualified_type", "interface_type", "struct_type", "function_type":
			returns = e.text(child)
		}
	}
	if name == "" {
		return
	}

	signature := fmt.Sprintf("func %s%s", name, params)
	if returns != "" {
		signature += " " + returns
	}

	e.symbols = append(e.symbols, types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindFunction,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(name),
		Signature:     signature,
		Language:      "go",
		Documentation: e.precedingComment(node),
	})
}

func (e *extractor) extractMethods() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "method_declaration" {
			e.processMethodDecl(child)
		}
	}
}

func (e *extractor) processMethodDecl(node *sitter.Node) {
	var name, receiver, params, returns string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "parameter_list":
			plist := e.text(child)
			switch {
			case receiver == "":
				receiver = plist
			case params == "":
				params = plist
			default:
				returns = plist
			}
		case "field_identifier":
			name = e.text(child)
		case "type_identifier", "pointer_type", "slice_type", "map_type", "channel_type", "qualified_type":
			returns = e.text(child)
		}
	}
	if name == "" {
		return
	}

	signature := fmt.Sprintf("func %s %s%s", receiver, name, params)
	if returns != "" {
		signature += " " + returns
	}

	e.symbols = append(e.symbols, types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindMethod,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(name),
		Signature:     signature,
		Receiver:      receiver,
		Language:      "go",
		Documentation: e.precedingComment(node),
	})
}

func (e *extractor) extractTypes() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "type_declaration" {
			e.processTypeDecl(child)
		}
	}
}

func (e *extractor) processTypeDecl(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "type_spec" {
			e.processTypeSpec(child, node)
		}
	}
}

func (e *extractor) processTypeSpec(node, parentDecl *sitter.Node) {
	var name string
	var kind types.SymbolKind
	var typeNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			name = e.text(child)
		case "struct_type":
			kind = types.SymbolKindStruct
			typeNode = child
		case "interface_type":
			kind = types.SymbolKindInterface
			typeNode = child
		default:
			if kind == types.SymbolKindUnknown && name != "" {
				kind = types.SymbolKindTypeAlias
			}
		}
	}
	if name == "" {
		return
	}
	if kind == types.SymbolKindUnknown {
		kind = types.SymbolKindTypeAlias
	}

	sym := types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          kind,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(name),
		Language:      "go",
		Documentation: e.precedingComment(parentDecl),
	}
	if typeNode != nil {
		sym.Children = e.extractTypeChildren(typeNode, kind)
	}
	e.symbols = append(e.symbols, sym)
}

func (e *extractor) extractTypeChildren(node *sitter.Node, parentKind types.SymbolKind) []*types.Symbol {
	var children []*types.Symbol
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "field_declaration_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				field := child.Child(j)
				if field.Type() == "field_declaration" {
					children = append(children, e.extractField(field)...)
				}
			}
		case "method_elem":
			if sym := e.extractMethodSpec(child); sym != nil {
				children = append(children, sym)
			}
		}
	}
	return children
}

func (e *extractor) extractField(node *sitter.Node) []*types.Symbol {
	var fields []*types.Symbol
	var fieldType string
	var names []string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "field_identifier":
			names = append(names, e.text(child))
		default:
			if len(names) > 0 && fieldType == "" {
				fieldType = e.text(child)
			}
		}
	}

	for _, name := range names {
		fields = append(fields, &types.Symbol{
			ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
			Name:      name,
			Kind:      types.SymbolKindField,
			FilePath:  e.filePath,
			Range:     rangeOf(node),
			IsPublic:  isExported(name),
			Signature: fieldType,
			Language:  "go",
		})
	}
	return fields
}

func (e *extractor) extractMethodSpec(node *sitter.Node) *types.Symbol {
	var name, params, returns string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "field_identifier":
			name = e.text(child)
		case "parameter_list":
			if params == "" {
				params = e.text(child)
			} else {
				returns = e.text(child)
			}
		case "type_identifier", "pointer_type", "slice_type", "map_type":
			returns = e.text(child)
		}
	}
	if name == "" {
		return nil
	}
	signature := fmt.Sprintf("%s%s", name, params)
	if returns != "" {
		signature += " " + returns
	}
	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindMethod,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  isExported(name),
		Signature: signature,
		Language:  "go",
	}
}

func (e *extractor) extractVariables() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "var_declaration" {
			e.processVarDecl(child, types.SymbolKindVariable)
		}
	}
}

func (e *extractor) extractConstants() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "const_declaration" {
			e.processVarDecl(child, types.SymbolKindConstant)
		}
	}
}

func (e *extractor) processVarDecl(node *sitter.Node, kind types.SymbolKind) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "var_spec", "const_spec":
			e.processVarSpec(child, kind, node)
		case "var_spec_list", "const_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "var_spec" || spec.Type() == "const_spec" {
					e.processVarSpec(spec, kind, node)
				}
			}
		}
	}
}

func (e *extractor) processVarSpec(node *sitter.Node, kind types.SymbolKind, parentDecl *sitter.Node) {
	var names []string
	var typeStr string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, e.text(child))
		case "type_identifier", "pointer_type", "slice_type", "map_type", "channel_type", "qualified_type":
			typeStr = e.text(child)
		}
	}
	for _, name := range names {
		e.symbols = append(e.symbols, types.Symbol{
			ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
			Name:          name,
			Kind:          kind,
			FilePath:      e.filePath,
			Range:         rangeOf(node),
			IsPublic:      isExported(name),
			Signature:     typeStr,
			Language:      "go",
			Documentation: e.precedingComment(parentDecl),
		})
	}
}

// precedingComment returns the doc comment immediately before node, if any.
func (e *extractor) precedingComment(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	nodeStartLine := int(node.StartPoint().Row)
	for i := 0; i < int(e.root.ChildCount()); i++ {
		sibling := e.root.Child(i)
		if sibling.Type() != "comment" {
			continue
		}
		commentEndLine := int(sibling.EndPoint().Row)
		if commentEndLine == nodeStartLine-1 || commentEndLine == nodeStartLine {
			return strings.TrimSpace(e.text(sibling))
		}
	}
	return ""
}

// ParseImports returns the import paths declared in content without
// building a full symbol list.
func (p *Parser) ParseImports(ctx context.Context, content []byte) ([]string, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(golang.GetLanguage())
	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	e := &extractor{content: content, filePath: "", root: tree.RootNode()}
	e.extractImports()

	paths := make([]string, 0, len(e.symbols))
	for _, sym := range e.symbols {
		if sym.Kind == types.SymbolKindImport {
			paths = append(paths, sym.Name)
		}
	}
	return paths, nil
}

// ContainsImport reports whether content imports module.
func (p *Parser) ContainsImport(ctx context.Context, content []byte, module string) (bool, error) {
	imports, err := p.ParseImports(ctx, content)
	if err != nil {
		return false, err
	}
	for _, imp := range imports {
		if imp == module {
			return true, nil
		}
	}
	return false, nil
}

// Compile-time interface compliance checks.
var (
	_ plugin.Parser       = (*Parser)(nil)
	_ plugin.ImportParser = (*Parser)(nil)
)
