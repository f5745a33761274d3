// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package typescript implements the required Parser facet, plus the
// ImportParser facet, for TypeScript and TSX source files.
package typescript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

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

// Parser implements plugin.Parser and plugin.ImportParser for TypeScript
// and TSX source code, backed by tree-sitter.
//
// Thread Safety:
//
//	Parser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance internally.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a TypeScript source parser with sensible defaults.
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
		Name:             "typescript",
		FileExtensions:   []string{".ts", ".tsx", ".mts", ".cts"},
		ManifestFilename: "package.json",
		ModuleSeparator:  "/",
		SourceDir:        "src",
		EntryPoint:       "index.ts",
	}
}

func languageFor(filePath string) *sitter.Language {
	if strings.HasSuffix(filePath, ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// Parse extracts symbols from TypeScript source code. Parsing is total:
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
		slog.Warn("parsing large typescript file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w", ErrInvalidContent)
	}

	sp := sitter.NewParser()
	sp.SetLanguage(languageFor(filePath))
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
	e.extractImports()
	e.extractDeclarations()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}

	return &types.ParsedSource{Symbols: e.symbols, Opaque: tree}, nil
}

// ParseImports returns the module specifiers imported by content, covering
// both ES module imports and CommonJS require() calls.
func (p *Parser) ParseImports(ctx context.Context, content []byte) ([]string, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(typescript.GetLanguage())
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

func (e *extractor) extractImports() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		switch child.Type() {
		case "import_statement":
			e.processImportStatement(child)
		case "lexical_declaration":
			e.processCommonJSRequire(child)
		}
	}
}

func (e *extractor) processImportStatement(node *sitter.Node) {
	var modulePath string
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "string" {
			modulePath = e.stringContent(child)
		}
	}
	if modulePath == "" {
		return
	}
	e.symbols = append(e.symbols, types.Symbol{
		ID:       types.NewSymbolID(e.filePath, modulePath, int(node.StartPoint().Row)),
		Name:     modulePath,
		Kind:     types.SymbolKindImport,
		FilePath: e.filePath,
		Range:    rangeOf(node),
		IsPublic: false,
		Language: "typescript",
	})
}

func (e *extractor) processCommonJSRequire(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		var modulePath string
		for j := 0; j < int(child.ChildCount()); j++ {
			if gc := child.Child(j); gc.Type() == "call_expression" {
				modulePath = e.extractRequireCall(gc)
			}
		}
		if modulePath == "" {
			continue
		}
		e.symbols = append(e.symbols, types.Symbol{
			ID:       types.NewSymbolID(e.filePath, modulePath, int(node.StartPoint().Row)),
			Name:     modulePath,
			Kind:     types.SymbolKindImport,
			FilePath: e.filePath,
			Range:    rangeOf(node),
			IsPublic: false,
			Language: "typescript",
		})
	}
}

func (e *extractor) extractRequireCall(node *sitter.Node) string {
	var funcName, modulePath string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			funcName = e.text(child)
		case "arguments":
			for j := 0; j < int(child.ChildCount()); j++ {
				if arg := child.Child(j); arg.Type() == "string" {
					modulePath = e.stringContent(arg)
				}
			}
		}
	}
	if funcName == "require" {
		return modulePath
	}
	return ""
}

func (e *extractor) extractDeclarations() {
	for i := 0; i < int(e.root.ChildCount()); i++ {
		child := e.root.Child(i)
		switch child.Type() {
		case "export_statement":
			e.processExportStatement(child)
		case "function_declaration":
			if fn := e.processFunction(child, false); fn != nil {
				e.symbols = append(e.symbols, *fn)
			}
		case "class_declaration":
			if cls := e.processClass(child, false); cls != nil {
				e.symbols = append(e.symbols, *cls)
			}
		case "interface_declaration":
			if iface := e.processInterface(child, false); iface != nil {
				e.symbols = append(e.symbols, *iface)
			}
		case "type_alias_declaration":
			if ta := e.processTypeAlias(child, false); ta != nil {
				e.symbols = append(e.symbols, *ta)
			}
		case "enum_declaration":
			if en := e.processEnum(child, false); en != nil {
				e.symbols = append(e.symbols, *en)
			}
		case "lexical_declaration":
			e.processLexicalDeclaration(child, false)
		case "variable_declaration":
			e.processVariableDeclaration(child, false)
		}
	}
}

func (e *extractor) processExportStatement(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration":
			if fn := e.processFunction(child, true); fn != nil {
				e.symbols = append(e.symbols, *fn)
			}
		case "class_declaration", "abstract_class_declaration":
			if cls := e.processClass(child, true); cls != nil {
				e.symbols = append(e.symbols, *cls)
			}
		case "interface_declaration":
			if iface := e.processInterface(child, true); iface != nil {
				e.symbols = append(e.symbols, *iface)
			}
		case "type_alias_declaration":
			if ta := e.processTypeAlias(child, true); ta != nil {
				e.symbols = append(e.symbols, *ta)
			}
		case "enum_declaration":
			if en := e.processEnum(child, true); en != nil {
				e.symbols = append(e.symbols, *en)
			}
		case "lexical_declaration":
			e.processLexicalDeclaration(child, true)
		}
	}
}

func (e *extractor) processFunction(node *sitter.Node, exported bool) *types.Symbol {
	var name, params, returnType string
	var isAsync bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			name = e.text(child)
		case "formal_parameters":
			params = e.text(child)
		case "type_annotation":
			returnType = e.extractTypeAnnotation(child)
		}
	}
	if name == "" {
		return nil
	}

	signature := "function " + name + params
	if returnType != "" {
		signature += ": " + returnType
	}
	if isAsync {
		signature = "async " + signature
	}

	return &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindFunction,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      exported,
		Signature:     signature,
		Language:      "typescript",
		Documentation: e.precedingComment(node),
	}
}

func (e *extractor) processClass(node *sitter.Node, exported bool) *types.Symbol {
	var name string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			name = e.text(child)
		case "class_body":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	sym := &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindClass,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      exported,
		Language:      "typescript",
		Documentation: e.precedingComment(node),
	}
	if bodyNode != nil {
		e.extractClassMembers(bodyNode, sym)
	}
	return sym
}

func (e *extractor) extractClassMembers(body *sitter.Node, classSym *types.Symbol) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "method_definition":
			if method := e.processMethod(child); method != nil {
				classSym.Children = append(classSym.Children, method)
			}
		case "public_field_definition":
			if field := e.processField(child); field != nil {
				classSym.Children = append(classSym.Children, field)
			}
		}
	}
}

func (e *extractor) processMethod(node *sitter.Node) *types.Symbol {
	var name, params, returnType, accessModifier string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			accessModifier = e.text(child)
		case "property_identifier":
			name = e.text(child)
		case "formal_parameters":
			params = e.text(child)
		case "type_annotation":
			returnType = e.extractTypeAnnotation(child)
		}
	}
	if name == "" {
		return nil
	}

	signature := name + params
	if returnType != "" {
		signature += ": " + returnType
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindMethod,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  accessModifier != "private",
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) processField(node *sitter.Node) *types.Symbol {
	var name, typeStr, accessModifier string
	var isReadonly bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			accessModifier = e.text(child)
		case "readonly":
			isReadonly = true
		case "property_identifier":
			name = e.text(child)
		case "type_annotation":
			typeStr = e.extractTypeAnnotation(child)
		}
	}
	if name == "" {
		return nil
	}

	signature := name
	if typeStr != "" {
		signature += ": " + typeStr
	}
	if isReadonly {
		signature = "readonly " + signature
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindField,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  accessModifier != "private",
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) processInterface(node *sitter.Node, exported bool) *types.Symbol {
	var name string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			name = e.text(child)
		case "interface_body", "object_type":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	sym := &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindInterface,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      exported,
		Language:      "typescript",
		Documentation: e.precedingComment(node),
	}
	if bodyNode != nil {
		e.extractInterfaceMembers(bodyNode, sym)
	}
	return sym
}

func (e *extractor) extractInterfaceMembers(body *sitter.Node, ifaceSym *types.Symbol) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "property_signature":
			if prop := e.processPropertySignature(child); prop != nil {
				ifaceSym.Children = append(ifaceSym.Children, prop)
			}
		case "method_signature":
			if method := e.processMethodSignature(child); method != nil {
				ifaceSym.Children = append(ifaceSym.Children, method)
			}
		}
	}
}

func (e *extractor) processPropertySignature(node *sitter.Node) *types.Symbol {
	var name, typeStr string
	var isReadonly, isOptional bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "readonly":
			isReadonly = true
		case "property_identifier":
			name = e.text(child)
		case "?":
			isOptional = true
		case "type_annotation":
			typeStr = e.extractTypeAnnotation(child)
		}
	}
	if name == "" {
		return nil
	}

	signature := name
	if isOptional {
		signature += "?"
	}
	if typeStr != "" {
		signature += ": " + typeStr
	}
	if isReadonly {
		signature = "readonly " + signature
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindField,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  true,
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) processMethodSignature(node *sitter.Node) *types.Symbol {
	var name, params, returnType string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "property_identifier":
			name = e.text(child)
		case "formal_parameters":
			params = e.text(child)
		case "type_annotation":
			returnType = e.extractTypeAnnotation(child)
		}
	}
	if name == "" {
		return nil
	}

	signature := name + params
	if returnType != "" {
		signature += ": " + returnType
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindMethod,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  true,
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) processTypeAlias(node *sitter.Node, exported bool) *types.Symbol {
	var name, typeDef string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			name = e.text(child)
		default:
			if child.Type() != "type" && child.Type() != "=" && child.Type() != ";" && typeDef == "" && name != "" {
				typeDef = e.text(child)
			}
		}
	}
	if name == "" {
		return nil
	}

	signature := "type " + name
	if typeDef != "" {
		signature += " = " + typeDef
	}

	return &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindTypeAlias,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      exported,
		Signature:     signature,
		Language:      "typescript",
		Documentation: e.precedingComment(node),
	}
}

func (e *extractor) processEnum(node *sitter.Node, exported bool) *types.Symbol {
	var name string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = e.text(child)
		case "enum_body":
			bodyNode = child
		}
	}
	if name == "" {
		return nil
	}

	sym := &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindEnum,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      exported,
		Language:      "typescript",
		Documentation: e.precedingComment(node),
	}
	if bodyNode != nil {
		e.extractEnumMembers(bodyNode, sym)
	}
	return sym
}

func (e *extractor) extractEnumMembers(body *sitter.Node, enumSym *types.Symbol) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		switch child.Type() {
		case "enum_assignment":
			if member := e.processEnumMember(child); member != nil {
				enumSym.Children = append(enumSym.Children, member)
			}
		case "property_identifier":
			name := e.text(child)
			enumSym.Children = append(enumSym.Children, &types.Symbol{
				ID:       types.NewSymbolID(e.filePath, name, int(child.StartPoint().Row)),
				Name:     name,
				Kind:     types.SymbolKindEnumMember,
				FilePath: e.filePath,
				Range:    rangeOf(child),
				IsPublic: true,
				Language: "typescript",
			})
		}
	}
}

func (e *extractor) processEnumMember(node *sitter.Node) *types.Symbol {
	var name, value string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "property_identifier":
			name = e.text(child)
		case "string", "number":
			value = e.text(child)
		}
	}
	if name == "" {
		return nil
	}
	signature := name
	if value != "" {
		signature += " = " + value
	}
	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      types.SymbolKindEnumMember,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  true,
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) processLexicalDeclaration(node *sitter.Node, exported bool) {
	var declKind string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "const", "let":
			declKind = child.Type()
		case "variable_declarator":
			if variable := e.processVariableDeclarator(child, declKind, exported); variable != nil {
				e.symbols = append(e.symbols, *variable)
			}
		}
	}
}

func (e *extractor) processVariableDeclaration(node *sitter.Node, exported bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "variable_declarator" {
			if variable := e.processVariableDeclarator(child, "var", exported); variable != nil {
				e.symbols = append(e.symbols, *variable)
			}
		}
	}
}

func (e *extractor) processVariableDeclarator(node *sitter.Node, declKind string, exported bool) *types.Symbol {
	var name, typeStr string
	var hasArrowFunction bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = e.text(child)
		case "type_annotation":
			typeStr = e.extractTypeAnnotation(child)
		case "arrow_function":
			hasArrowFunction = true
		}
	}
	if name == "" {
		return nil
	}

	kind := types.SymbolKindVariable
	if declKind == "const" {
		kind = types.SymbolKindConstant
	}
	if hasArrowFunction {
		kind = types.SymbolKindFunction
	}

	signature := declKind + " " + name
	if typeStr != "" {
		signature += ": " + typeStr
	}

	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      kind,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  exported,
		Signature: signature,
		Language:  "typescript",
	}
}

func (e *extractor) extractTypeAnnotation(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() != ":" {
			return e.text(child)
		}
	}
	return ""
}

func (e *extractor) stringContent(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == "string_fragment" {
			return e.text(child)
		}
	}
	return strings.Trim(e.text(node), `"'`)
}

// precedingComment returns the JSDoc comment immediately before node,
// checking the enclosing export_statement's sibling when node is wrapped
// in one.
func (e *extractor) precedingComment(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	if prev := node.PrevSibling(); prev != nil && prev.Type() == "comment" {
		if comment := e.text(prev); strings.HasPrefix(comment, "/**") {
			return comment
		}
	}
	if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
		if parentPrev := parent.PrevSibling(); parentPrev != nil && parentPrev.Type() == "comment" {
			if comment := e.text(parentPrev); strings.HasPrefix(comment, "/**") {
				return comment
			}
		}
	}
	return ""
}

// Compile-time interface compliance checks.
var (
	_ plugin.Parser       = (*Parser)(nil)
	_ plugin.ImportParser = (*Parser)(nil)
)
