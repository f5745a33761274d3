// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jsonrpc defines the wire envelope both the HTTP and WebSocket
// transports speak: JSON-RPC 2.0 restricted to a single method,
// "tools/call", whose params name one of the dispatcher's registered
// tools plus its arguments.
package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/forgekit/refactorctl/internal/errors"
)

// Request is the inbound envelope. Method is always expected to be
// "tools/call"; anything else is rejected before Params is even
// inspected.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params ToolCallParams  `json:"params"`
}

// ToolCallParams names the tool to invoke and its arguments, passed
// through to Dispatcher.Dispatch unexamined.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is the outbound envelope: exactly one of Result or Error is
// set, mirroring JSON-RPC 2.0's response shape.
type Response struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Error is the wire form of a failed call: a stable numeric code (see
// internal/errors.WireCode) plus a human-readable message.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Dispatcher is the subset of dispatcher.Dispatcher both transports
// need, narrowed so tests can substitute a fake without constructing a
// real tool graph.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, arguments json.RawMessage) (any, error)
}

// ErrorResponse builds the Response for a failed call, translating err's
// Kind into a stable wire code via errors.WireCode.
func ErrorResponse(id json.RawMessage, err error) Response {
	return Response{
		ID: id,
		Error: &Error{
			Code:    errors.WireCode(errors.KindOf(err)),
			Message: err.Error(),
		},
	}
}
