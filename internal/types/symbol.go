// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package types holds the language-agnostic data model shared by every
// plugin and every planner: symbols, positions, import metadata, and
// the per-file import graph.
//
// Design principles, carried from the teacher's ast package:
//   - Language-agnostic: types work for any supported language.
//   - Timestamps as int64 UnixMilli.
//   - No map[string]interface{} — concrete types only.
package types

import "fmt"

// SymbolKind represents the type of code symbol extracted from source.
//
// Each kind maps to a common programming construct that exists across
// multiple languages; a language-specific construct is mapped to the
// closest general kind (e.g. a Python class maps to Class, not Struct).
type SymbolKind int

const (
	// SymbolKindUnknown indicates an unrecognized or unparseable symbol.
	SymbolKindUnknown SymbolKind = iota

	// SymbolKindModule represents a package, module, or crate declaration.
	SymbolKindModule

	// SymbolKindFile represents a source file as a symbol, used for
	// file-level relationships like imports.
	SymbolKindFile

	// SymbolKindFunction represents a standalone function declaration.
	SymbolKindFunction

	// SymbolKindMethod represents a function attached to a type.
	SymbolKindMethod

	// SymbolKindInterface represents an interface, protocol, or trait
	// with only method signatures.
	SymbolKindInterface

	// SymbolKindTrait represents a Rust trait or similar mixin-style
	// capability interface distinct from a plain Interface.
	SymbolKindTrait

	// SymbolKindStruct represents a composite data type.
	SymbolKindStruct

	// SymbolKindClass represents a class definition; used where "class"
	// is the idiomatic term (Python, TypeScript).
	SymbolKindClass

	// SymbolKindEnum represents an enumeration type.
	SymbolKindEnum

	// SymbolKindEnumMember represents a member of an enumeration.
	SymbolKindEnumMember

	// SymbolKindTypeAlias represents a type alias or type definition.
	SymbolKindTypeAlias

	// SymbolKindVariable represents a variable declaration.
	SymbolKindVariable

	// SymbolKindConstant represents a constant declaration.
	SymbolKindConstant

	// SymbolKindField represents a field within a struct/class.
	SymbolKindField

	// SymbolKindParameter represents a function/method parameter.
	SymbolKindParameter

	// SymbolKindProperty represents a property with getter/setter.
	SymbolKindProperty

	// SymbolKindImport represents a single import statement.
	SymbolKindImport
)

var symbolKindNames = map[SymbolKind]string{
	SymbolKindUnknown:    "unknown",
	SymbolKindModule:     "module",
	SymbolKindFile:       "file",
	SymbolKindFunction:   "function",
	SymbolKindMethod:     "method",
	SymbolKindInterface:  "interface",
	SymbolKindTrait:      "trait",
	SymbolKindStruct:     "struct",
	SymbolKindClass:      "class",
	SymbolKindEnum:       "enum",
	SymbolKindEnumMember: "enum_member",
	SymbolKindTypeAlias:  "type_alias",
	SymbolKindVariable:   "variable",
	SymbolKindConstant:   "constant",
	SymbolKindField:      "field",
	SymbolKindParameter:  "parameter",
	SymbolKindProperty:   "property",
	SymbolKindImport:     "import",
}

// String returns the lowercase, stable string form of the kind.
func (k SymbolKind) String() string {
	if name, ok := symbolKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the kind as its stable string form.
func (k SymbolKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Position is a 0-indexed line/column location within a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"col"`
}

// Range spans from Start (inclusive) to End (exclusive).
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p falls within r.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Column < r.Start.Column {
		return false
	}
	if p.Line == r.End.Line && p.Column >= r.End.Column {
		return false
	}
	return true
}

// Overlaps reports whether r and other describe intersecting spans.
func (r Range) Overlaps(other Range) bool {
	if r.End.Line < other.Start.Line {
		return false
	}
	if other.End.Line < r.Start.Line {
		return false
	}
	if r.End.Line == other.Start.Line && r.End.Column <= other.Start.Column {
		return false
	}
	if other.End.Line == r.Start.Line && other.End.Column <= r.Start.Column {
		return false
	}
	return true
}

// Symbol is a language-agnostic description of a named code entity.
//
// ID is derived deterministically from FilePath, the start line, and
// Name, so the same declaration produces the same ID across repeated
// parses as long as its location hasn't shifted.
type Symbol struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	FilePath      string     `json:"file_path"`
	Range         Range      `json:"range"`
	IsPublic      bool       `json:"is_public"`
	Documentation string     `json:"documentation,omitempty"`
	Signature     string     `json:"signature,omitempty"`
	Receiver      string     `json:"receiver,omitempty"`
	Module        string     `json:"module,omitempty"`
	Language      string     `json:"language"`
	Children      []*Symbol  `json:"children,omitempty"`
}

// NewSymbolID derives the stable ID described in spec.md §3: the path,
// start line, and name joined with colons, in that order.
func NewSymbolID(filePath, name string, startLine int) string {
	return fmt.Sprintf("%s:%d:%s", filePath, startLine, name)
}

// ParsedSource is the result a plugin's required Parser facet returns.
//
// Parsing must be total: syntactically invalid input yields an empty
// Symbols slice rather than an error, unless the caller opted into
// strict parsing via ParseOptions.Strict.
type ParsedSource struct {
	Symbols []Symbol
	// Opaque carries a plugin-private representation (e.g. a tree-sitter
	// tree) for reuse by that same plugin's other facets. The core never
	// inspects it.
	Opaque any
}

// ParseOptions configures a single Parser.Parse call.
type ParseOptions struct {
	// Strict, when true, requests that syntactically invalid input
	// return an error instead of an empty symbol list.
	Strict bool
}
