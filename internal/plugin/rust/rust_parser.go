// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rust implements the required Parser facet, plus the
// ImportParser facet, for Rust source files.
package rust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

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

// Parser implements plugin.Parser and plugin.ImportParser for Rust source
// code, backed by tree-sitter.
type Parser struct {
	maxFileSize int64
}

// NewParser creates a Rust source parser with sensible defaults.
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
		Name:             "rust",
		FileExtensions:   []string{".rs"},
		ManifestFilename: "Cargo.toml",
		ModuleSeparator:  "::",
		SourceDir:        "src",
		EntryPoint:       "main.rs",
	}
}

// Parse extracts symbols from Rust source code. Parsing is total: syntax
// errors still yield whatever tree-sitter could recover, unless
// opts.Strict is set and the tree contains an error.
func (p *Parser) Parse(ctx context.Context, content []byte, filePath string, opts types.ParseOptions) (*types.ParsedSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if len(content) > WarnFileSize {
		slog.Warn("parsing large rust file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w", ErrInvalidContent)
	}

	sp := sitter.NewParser()
	sp.SetLanguage(rust.GetLanguage())
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

	e := &extractor{content: content, filePath: filePath}
	e.walk(root, "")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", err)
	}

	return &types.ParsedSource{Symbols: e.symbols, Opaque: tree}, nil
}

// ParseImports returns the module paths named by `use` declarations in
// content, flattened from any `use a::{b, c}` grouping.
func (p *Parser) ParseImports(ctx context.Context, content []byte) ([]string, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(rust.GetLanguage())
	tree, err := sp.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	e := &extractor{content: content}
	e.walk(tree.RootNode(), "")

	paths := make([]string, 0, len(e.symbols))
	for _, sym := range e.symbols {
		if sym.Kind == types.SymbolKindImport {
			paths = append(paths, sym.Name)
		}
	}
	return paths, nil
}

// ContainsImport reports whether content has a `use` declaration naming
// module.
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
	symbols  []types.Symbol
}

func rangeOf(n *sitter.Node) types.Range {
	return types.Range{
		Start: types.Position{Line: int(n.StartPoint().Row), Column: int(n.StartPoint().Column)},
		End:   types.Position{Line: int(n.EndPoint().Row), Column: int(n.EndPoint().Column)},
	}
}

func (e *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(e.content[n.StartByte():n.EndByte()])
}

// isExported reports Rust visibility: anything marked `pub` is public,
// and Rust identifiers carry no underscore-based convention of their own.
func isExported(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

// walk descends the tree, recording top-level and nested items. receiver
// carries the enclosing impl/trait target for methods, mirroring the
// Receiver convention used for Go methods.
func (e *extractor) walk(node *sitter.Node, receiver string) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "use_declaration":
			e.processUse(child)
		case "mod_item":
			e.processMod(child)
		case "function_item":
			if fn := e.processFunction(child, receiver); fn != nil {
				e.symbols = append(e.symbols, *fn)
			}
		case "struct_item":
			e.processStruct(child)
		case "enum_item":
			e.processEnum(child)
		case "trait_item":
			e.processTrait(child)
		case "impl_item":
			e.processImpl(child)
		case "const_item":
			if c := e.processConstOrStatic(child, types.SymbolKindConstant); c != nil {
				e.symbols = append(e.symbols, *c)
			}
		case "static_item":
			if s := e.processConstOrStatic(child, types.SymbolKindVariable); s != nil {
				e.symbols = append(e.symbols, *s)
			}
		default:
			if child.Type() == "declaration_list" || child.Type() == "source_file" {
				e.walk(child, receiver)
			}
		}
	}
}

func (e *extractor) processUse(node *sitter.Node) {
	argument := node.ChildByFieldName("argument")
	if argument == nil {
		return
	}
	for _, path := range flattenUsePath(e, argument) {
		e.symbols = append(e.symbols, types.Symbol{
			ID:       types.NewSymbolID(e.filePath, path, int(node.StartPoint().Row)),
			Name:     path,
			Kind:     types.SymbolKindImport,
			FilePath: e.filePath,
			Range:    rangeOf(node),
			Language: "rust",
		})
	}
}

// flattenUsePath expands `use a::b::{c, d as e}` into ["a::b::c", "a::b::d"].
func flattenUsePath(e *extractor, node *sitter.Node) []string {
	switch node.Type() {
	case "scoped_use_list":
		path := e.text(node.ChildByFieldName("path"))
		list := node.ChildByFieldName("list")
		var out []string
		if list != nil {
			for i := 0; i < int(list.ChildCount()); i++ {
				item := list.Child(i)
				if item.Type() != "identifier" && item.Type() != "use_as_clause" && item.Type() != "self" {
					continue
				}
				name := e.text(item)
				if item.Type() == "use_as_clause" {
					name = e.text(item.ChildByFieldName("path"))
				}
				if path != "" {
					out = append(out, path+"::"+name)
				} else {
					out = append(out, name)
				}
			}
		}
		return out
	case "use_as_clause":
		return []string{e.text(node.ChildByFieldName("path"))}
	case "use_wildcard":
		return []string{e.text(node) }
	default:
		return []string{e.text(node)}
	}
}

func (e *extractor) processMod(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	sym := types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindModule,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(node),
		Language:      "rust",
		Documentation: e.docComment(node),
	}
	e.symbols = append(e.symbols, sym)
	if body := node.ChildByFieldName("body"); body != nil {
		e.walk(body, "")
	}
}

func (e *extractor) processFunction(node *sitter.Node, receiver string) *types.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := e.text(nameNode)
	params := e.text(node.ChildByFieldName("parameters"))
	returnType := e.text(node.ChildByFieldName("return_type"))

	kind := types.SymbolKindFunction
	if receiver != "" {
		kind = types.SymbolKindMethod
	}

	signature := "fn " + name + params
	if returnType != "" {
		signature += " -> " + returnType
	}
	if isAsyncFunction(node) {
		signature = "async " + signature
	}

	return &types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          kind,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(node),
		Signature:     signature,
		Receiver:      receiver,
		Language:      "rust",
		Documentation: e.docComment(node),
	}
}

func isAsyncFunction(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			return true
		}
	}
	return false
}

func (e *extractor) processStruct(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	sym := types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindStruct,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(node),
		Language:      "rust",
		Documentation: e.docComment(node),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			field := body.Child(i)
			if field.Type() != "field_declaration" {
				continue
			}
			fieldName := e.text(field.ChildByFieldName("name"))
			if fieldName == "" {
				continue
			}
			sym.Children = append(sym.Children, &types.Symbol{
				ID:        types.NewSymbolID(e.filePath, fieldName, int(field.StartPoint().Row)),
				Name:      fieldName,
				Kind:      types.SymbolKindField,
				FilePath:  e.filePath,
				Range:     rangeOf(field),
				IsPublic:  isExported(field),
				Signature: fieldName + ": " + e.text(field.ChildByFieldName("type")),
				Language:  "rust",
			})
		}
	}
	e.symbols = append(e.symbols, sym)
}

func (e *extractor) processEnum(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	sym := types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindEnum,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(node),
		Language:      "rust",
		Documentation: e.docComment(node),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			variant := body.Child(i)
			if variant.Type() != "enum_variant" {
				continue
			}
			variantName := e.text(variant.ChildByFieldName("name"))
			if variantName == "" {
				continue
			}
			sym.Children = append(sym.Children, &types.Symbol{
				ID:       types.NewSymbolID(e.filePath, variantName, int(variant.StartPoint().Row)),
				Name:     variantName,
				Kind:     types.SymbolKindEnumMember,
				FilePath: e.filePath,
				Range:    rangeOf(variant),
				IsPublic: true,
				Language: "rust",
			})
		}
	}
	e.symbols = append(e.symbols, sym)
}

func (e *extractor) processTrait(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	sym := types.Symbol{
		ID:            types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:          name,
		Kind:          types.SymbolKindTrait,
		FilePath:      e.filePath,
		Range:         rangeOf(node),
		IsPublic:      isExported(node),
		Language:      "rust",
		Documentation: e.docComment(node),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			item := body.Child(i)
			if item.Type() != "function_item" && item.Type() != "function_signature_item" {
				continue
			}
			if fn := e.processFunction(item, name); fn != nil {
				sym.Children = append(sym.Children, fn)
			}
		}
	}
	e.symbols = append(e.symbols, sym)
}

// processImpl handles both inherent impls (`impl Foo`) and trait impls
// (`impl Trait for Foo`), attaching methods to the target type's name as
// Receiver.
func (e *extractor) processImpl(node *sitter.Node) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	receiver := e.text(typeNode)
	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		receiver = e.text(traitNode) + " for " + receiver
	}
	if body := node.ChildByFieldName("body"); body != nil {
		e.walk(body, receiver)
	}
}

func (e *extractor) processConstOrStatic(node *sitter.Node, kind types.SymbolKind) *types.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := e.text(nameNode)
	typeStr := e.text(node.ChildByFieldName("type"))
	signature := name
	if typeStr != "" {
		signature += ": " + typeStr
	}
	return &types.Symbol{
		ID:        types.NewSymbolID(e.filePath, name, int(node.StartPoint().Row)),
		Name:      name,
		Kind:      kind,
		FilePath:  e.filePath,
		Range:     rangeOf(node),
		IsPublic:  isExported(node),
		Signature: signature,
		Language:  "rust",
	}
}

// docComment collects the contiguous run of `///` line comments (or a
// `/** */` block comment) immediately preceding node.
func (e *extractor) docComment(node *sitter.Node) string {
	prev := node.PrevSibling()
	var lines []string
	for prev != nil && prev.Type() == "line_comment" {
		text := e.text(prev)
		if !strings.HasPrefix(strings.TrimSpace(text), "///") {
			break
		}
		lines = append([]string{text}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}

// Compile-time interface compliance checks.
var (
	_ plugin.Parser       = (*Parser)(nil)
	_ plugin.ImportParser = (*Parser)(nil)
)
