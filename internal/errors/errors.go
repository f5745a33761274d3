// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package errors implements the stable error taxonomy shared by every
// component in the plan/apply/validate pipeline.
//
// Every component returns a *CoreError (or an error satisfying
// errors.As to one) rather than an ad-hoc string. The JSON-RPC envelope
// (internal/transport/jsonrpc) is the only component that translates a
// Kind into a wire code, via WireCode; all other components only ever
// produce, wrap, or propagate one.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the stable taxonomy of error categories described in spec §7.
type Kind string

const (
	// KindInvalidRequest indicates a malformed or missing argument.
	KindInvalidRequest Kind = "InvalidRequest"

	// KindNotFound indicates the target path or symbol does not exist.
	KindNotFound Kind = "NotFound"

	// KindUnsupported indicates the capability is not implemented by the
	// plugin for this file kind.
	KindUnsupported Kind = "Unsupported"

	// KindPreconditionFailed indicates a checksum or state changed between
	// plan and apply.
	KindPreconditionFailed Kind = "PreconditionFailed"

	// KindCollision indicates the destination path already exists.
	KindCollision Kind = "Collision"

	// KindWouldCreateCycle indicates the planned edit introduces an import
	// cycle.
	KindWouldCreateCycle Kind = "WouldCreateCycle"

	// KindSandboxViolation indicates a path escapes the workspace root.
	KindSandboxViolation Kind = "SandboxViolation"

	// KindTimeout indicates the operation was cancelled by timeout.
	KindTimeout Kind = "Timeout"

	// KindValidationFailed indicates the PostApplyValidator reported
	// failure.
	KindValidationFailed Kind = "ValidationFailed"

	// KindInternal indicates an invariant violation or plugin fault.
	KindInternal Kind = "Internal"

	// KindCancelled indicates the operation observed cancellation of its
	// context before completing.
	KindCancelled Kind = "Cancelled"

	// KindUnknownTool indicates the dispatcher received a tool name it does
	// not route.
	KindUnknownTool Kind = "UnknownTool"
)

// CoreError is the concrete error type every component returns.
//
// # Description
//
// Wraps an underlying cause with a stable Kind and, when the fault
// originates inside a language plugin, the plugin's name so upstream
// callers can disambiguate language-specific faults without string
// matching.
//
// # Fields
//
//   - Kind: The stable taxonomy category.
//   - Plugin: Name of the plugin that raised the error, if any.
//   - Path: The workspace-relative or absolute path implicated, if any.
//   - Err: The wrapped cause.
type CoreError struct {
	Kind   Kind
	Plugin string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	switch {
	case e.Plugin != "" && e.Path != "":
		return fmt.Sprintf("%s: plugin %q: %s: %v", e.Kind, e.Plugin, e.Path, e.Err)
	case e.Plugin != "":
		return fmt.Sprintf("%s: plugin %q: %v", e.Kind, e.Plugin, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CoreError) Unwrap() error {
	return e.Err
}

// New creates a *CoreError of the given kind wrapping msg.
func New(kind Kind, msg string) *CoreError {
	return &CoreError{Kind: kind, Err: errors.New(msg)}
}

// Wrap creates a *CoreError of the given kind wrapping err.
func Wrap(kind Kind, err error) *CoreError {
	if err == nil {
		return nil
	}
	return &CoreError{Kind: kind, Err: err}
}

// WithPath attaches the implicated path to a copy of the error.
func (e *CoreError) WithPath(path string) *CoreError {
	cp := *e
	cp.Path = path
	return &cp
}

// WithPlugin attaches the raising plugin's name to a copy of the error,
// so upstream callers can disambiguate language-specific faults.
func (e *CoreError) WithPlugin(name string) *CoreError {
	cp := *e
	cp.Plugin = name
	return &cp
}

// KindOf extracts the Kind from err, returning KindInternal if err does
// not wrap a *CoreError.
func KindOf(err error) Kind {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// WireCode maps a Kind to the stable numeric code a JSON-RPC transport
// puts on the wire (spec §6's "errors carry a numeric code... stable
// per taxonomy"). Follows the JSON-RPC 2.0 reserved range for the two
// kinds with a direct analogue (InvalidRequest, and UnknownTool as
// "method not found") and assigns the rest a
// private, taxonomy-ordered block starting at -32000, the first code
// JSON-RPC 2.0 reserves for implementation-defined server errors.
func WireCode(kind Kind) int {
	switch kind {
	case KindInvalidRequest:
		return -32600
	case KindUnknownTool:
		return -32601
	case KindNotFound:
		return -32000
	case KindUnsupported:
		return -32001
	case KindPreconditionFailed:
		return -32002
	case KindCollision:
		return -32003
	case KindWouldCreateCycle:
		return -32004
	case KindSandboxViolation:
		return -32005
	case KindTimeout:
		return -32006
	case KindValidationFailed:
		return -32007
	case KindCancelled:
		return -32008
	default:
		return -32603 // JSON-RPC 2.0 "Internal error"
	}
}
