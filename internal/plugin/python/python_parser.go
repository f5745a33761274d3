// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package python implements the required Parser facet, plus the
// ImportParser facet, for Python source files.
package python

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/types"
)

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

// Parser implements plugin.Parser and plugin.ImportParser for Python
// source code, backed by tree-sitter.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance internally.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a Python source parser with sensible defaults.
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
		Name:             "python",
		FileExtensions:   []string{".py", ".pyi"},
		ManifestFilename: "pyproject.toml",
		ModuleSeparator:  ".",
		SourceDir:        ".",
		EntryPoint:       "__main__.py",
	}
}

// Parse extracts symbols from Python source code. Parsing is total:
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
		slog.Warn("parsing large python file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w", ErrInvalidContent)
	}

	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())
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
	e.extractModuleDocstring()
	e.extractImports()
	e.extractClasses()
	e.extractFunctions()
	e.extractModuleVariables()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}

	return &types.ParsedSource{Symbols: e.symbols, Opaque: tree}, nil
}

// ParseImports returns the module paths declared in content without
// building a full symbol list.
func (p *Parser) ParseImports(ctx context.Context, content []byte) ([]string, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(python.GetLanguage())
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

func (e *extractor) text(n *sitter.Node) string {
	return string(e.content[n.StartByte():n.EndByte()])
}

// isExported applies Python's naming-convention visibility rules: dunder
// names are public, single- or double-leading-underscore names are not.
func isExported(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}
	if strings.HasPrefix(name, "_") {
		return false
	}
	return true
}

func isAllCaps(name string) bool {
	for _, r := range name {
		if r != '_' && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(name) > 0
}

func (e *extractor) extractModuleDocstring() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() == "expression_statement" && child.ChildCount() > 0 {
			strNode := child.Child(0)
			if strNode.Type() == "string" {
				e.symbols = append(e.symbols, types.Symbol{
					ID:            types.NewSymbolID(e.filePath, "__module__", int(child.StartPoint().Row)),
					Name:          "__module__",
					Kind:          types.SymbolKindModule,
					FilePath:      e.filePath,
					Range:         rangeOf(child),
					IsPublic:      true,
					Language:      "python",
					Documentation: e.stringContent(strNode),
				})
				return
			}
		}
		if child.Type() != "comment" && child.Type() != "import_statement" && child.Type() != "import_from_statement" {
			return
		}
	}
}

func (e *extractor) extractImports() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		switch child.Type() {
		case "import_statement":
			e.processImportStatement(child)
		case "import_from_statement":
			e.processImportFromStatement(child)
		}
	}
}

func (e *extractor) processImportStatement(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			e.addImport(node, e.text(child))
		case "aliased_import":
			var path string
			for j := 0; j < int(child.ChildCount()); j++ {
				if grandchild := child.Child(j); grandchild.Type() == "dotted_name" {
					path = e.text(grandchild)
				}
			}
			if path != "" {
				e.addImport(node, path)
			}
		}
	}
}

func (e *extractor) processImportFromStatement(node *sitter.Node) {
	var modulePath string
	var isRelative bool
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "relative_import":
			isRelative = true
			var prefix, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				grandchild := child.Child(j)
				switch grandchild.Type() {
				case "import_prefix":
					prefix = e.text(grandchild)
				case "dotted_name":
					name = e.text(grandchild)
				}
			}
			modulePath = prefix + name
		case "dotted_name":
			if modulePath == "" {
				modulePath = e.text(child)
			}
		}
	}
	if modulePath == "" && isRelative {
		modulePath = "."
	}
	if modulePath != "" {
		e.addImport(node, modulePath)
	}
}

func (e *extractor) addImport(node *sitter.Node, path string) {
	e.symbols = append(e.symbols, types.Symbol{
		ID:       types.NewSymbolID(e.filePath, path, int(node.StartPoint().Row)),
		Name:     path,
		Kind:     types.SymbolKindImport,
		FilePath: e.filePath,
		Range:    rangeOf(node),
		IsPublic: true,
		Language: "python",
	})
}

func (e *extractor) extractClasses() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		switch child.Type() {
		case "class_definition":
			e.processClass(child, nil)
		case "decorated_definition":
			e.processDecoratedClass(child)
		}
	}
}

func (e *extractor) processDecoratedClass(node *sitter.Node) {
	decorators := e.extractDecorators(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "class_definition" {
			e.processClass(child, decorators)
		}
	}
}

func (e *extractor) processClass(node *sitter.Node, decorators []string) *types.Symbol {
	var name string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = e.text(child)
		case "block":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	signature := "class " + name
	if len(decorators) > 0 {
		signature = "@" + strings.Join(decorators, " @") + " " + signature
	}

	var docstring string
	if bodyNode != nil {
		docstring = e.docstring(bodyNode)
	}

	sym := &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindClass,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(name),
		Signature:     signature,
		Language:      "python",
		Documentation: docstring,
	}
	if bodyNode != nil {
		e.extractClassMembers(bodyNode, sym)
	}
	e.symbols = append(e.symbols, *sym)
	return sym
}

func (e *extractor) extractClassMembers(body *sitter.Node, classSym *types.Symbol) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "function_definition":
			if method := e.processFunction(child, nil, classSym.Name); method != nil {
				classSym.Children = append(classSym.Children, method)
			}
		case "decorated_definition":
			decorators := e.extractDecorators(child)
			for j := 0; j < int(child.ChildCount()); j++ {
				if def := child.Child(j); def.Type() == "function_definition" {
					if method := e.processFunction(def, decorators, classSym.Name); method != nil {
						classSym.Children = append(classSym.Children, method)
					}
					break
				}
			}
		case "expression_statement":
			if child.ChildCount() > 0 {
				if assign := child.Child(0); assign.Type() == "assignment" || assign.Type() == "augmented_assignment" {
					if field := e.processClassVariable(assign); field != nil {
						classSym.Children = append(classSym.Children, field)
					}
				}
			}
		}
	}
}

func (e *extractor) processClassVariable(node *sitter.Node) *types.Symbol {
	var name, typeStr string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = e.text(child)
			}
		case "type":
			typeStr = e.text(child)
		}
	}
	if name == "" {
		return nil
	}
	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindField,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  isExported(name),
		Signature: typeStr,
		Language:  "python",
	}
}

func (e *extractor) extractFunctions() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		switch child.Type() {
		case "function_definition":
			if fn := e.processFunction(child, nil, ""); fn != nil {
				e.extractNestedFunctions(child, fn)
				e.symbols = append(e.symbols, *fn)
			}
		case "decorated_definition":
			for j := 0; j < int(child.ChildCount()); j++ {
				if grandchild := child.Child(j); grandchild.Type() == "function_definition" {
					decorators := e.extractDecorators(child)
					if fn := e.processFunction(grandchild, decorators, ""); fn != nil {
						e.extractNestedFunctions(grandchild, fn)
						e.symbols = append(e.symbols, *fn)
					}
					break
				}
			}
		}
	}
}

func (e *extractor) extractNestedFunctions(funcNode *sitter.Node, parentFn *types.Symbol) {
	for i := 0; i < int(funcNode.ChildCount()); i++ {
		child := funcNode.Child(i)
		if child.Type() != "block" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			stmt := child.Child(j)
			switch stmt.Type() {
			case "function_definition":
				if nested := e.processFunction(stmt, nil, ""); nested != nil {
					parentFn.Children = append(parentFn.Children, nested)
				}
			case "decorated_definition":
				decorators := e.extractDecorators(stmt)
				for k := 0; k < int(stmt.ChildCount()); k++ {
					if def := stmt.Child(k); def.Type() == "function_definition" {
						if nested := e.processFunction(def, decorators, ""); nested != nil {
							parentFn.Children = append(parentFn.Children, nested)
						}
						break
					}
				}
			}
		}
		break
	}
}

func (e *extractor) processFunction(node *sitter.Node, decorators []string, className string) *types.Symbol {
	var name, params, returnType string
	var docstring string
	var isAsync bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			name = e.text(child)
		case "parameters":
			params = e.text(child)
		case "type":
			returnType = e.text(child)
		case "block":
			docstring = e.docstring(child)
		}
	}
	if name == "" {
		return nil
	}

	kind := types.SymbolKindFunction
	if className != "" {
		kind = types.SymbolKindMethod
	}
	for _, dec := range decorators {
		if dec == "property" {
			kind = types.SymbolKindProperty
		}
	}

	var signature string
	if isAsync {
		signature = fmt.Sprintf("async def %s%s", name, params)
	} else {
		signature = fmt.Sprintf("def %s%s", name, params)
	}
	if returnType != "" {
		signature += " -> " + returnType
	}
	if len(decorators) > 0 {
		signature = "@" + strings.Join(decorators, " @") + " " + signature
	}

	return &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          kind,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(name),
		Signature:     signature,
		Receiver:      className,
		Language:      "python",
		Documentation: docstring,
	}
}

func (e *extractor) extractDecorators(node *sitter.Node) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			grandchild := child.Child(j)
			switch grandchild.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, e.text(grandchild))
			case "call":
				for k := 0; k < int(grandchild.ChildCount()); k++ {
					if ggchild := grandchild.Child(k); ggchild.Type() == "identifier" || ggchild.Type() == "attribute" {
						decorators = append(decorators, e.text(ggchild))
						break
					}
				}
			}
		}
	}
	return decorators
}

func (e *extractor) extractModuleVariables() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		if child.Type() != "expression_statement" || child.ChildCount() == 0 {
			continue
		}
		if expr := child.Child(0); expr.Type() == "assignment" {
			if variable := e.processModuleVariable(expr); variable != nil {
				e.symbols = append(e.symbols, *variable)
			}
		}
	}
}

func (e *extractor) processModuleVariable(node *sitter.Node) *types.Symbol {
	var name, typeStr string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = e.text(child)
			}
		case "type":
			typeStr = e.text(child)
		}
	}
	if name == "" {
		return nil
	}

	kind := types.SymbolKindVariable
	if isAllCaps(name) {
		kind = types.SymbolKindConstant
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      kind,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  isExported(name),
		Signature: typeStr,
		Language:  "python",
	}
}

func (e *extractor) docstring(block *sitter.Node) string {
	if block.ChildCount() == 0 {
		return ""
	}
	first := block.Child(0)
	if first.Type() == "expression_statement" && first.ChildCount() > 0 {
		if strNode := first.Child(0); strNode.Type() == "string" {
			return e.stringContent(strNode)
		}
	}
	return ""
}

func (e *extractor) stringContent(node *sitter.Node) string {
	raw := e.text(node)
	return strings.Trim(raw, `"'`)
}

// Compile-time interface compliance checks.
var (
	_ plugin.Parser       = (*Parser)(nil)
	_ plugin.ImportParser = (*Parser)(nil)
)
