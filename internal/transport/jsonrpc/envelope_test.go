// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/errors"
)

func TestErrorResponse_TranslatesCoreErrorKindToWireCode(t *testing.T) {
	id := json.RawMessage(`"42"`)
	err := errors.New(errors.KindNotFound, "symbol missing")

	resp := ErrorResponse(id, err)

	require.Equal(t, id, resp.ID)
	require.Nil(t, resp.Result)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
	require.Contains(t, resp.Error.Message, "symbol missing")
}

func TestErrorResponse_OpaqueErrorFallsBackToInternalCode(t *testing.T) {
	resp := ErrorResponse(json.RawMessage(`1`), assertableError{"boom"})
	require.Equal(t, -32603, resp.Error.Code)
}

type assertableError struct{ msg string }

func (e assertableError) Error() string { return e.msg }

func TestRequest_RoundTripsThroughJSON(t *testing.T) {
	raw := []byte(`{"id":"1","method":"tools/call","params":{"name":"rename_symbol","arguments":{"x":1}}}`)

	var req Request
	require.NoError(t, json.Unmarshal(raw, &req))
	require.Equal(t, "tools/call", req.Method)
	require.Equal(t, "rename_symbol", req.Params.Name)
	require.JSONEq(t, `{"x":1}`, string(req.Params.Arguments))
}

func TestResponse_OmitsAbsentFields(t *testing.T) {
	resp := Response{ID: json.RawMessage(`"1"`), Result: map[string]string{"ok": "true"}}

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	require.NotContains(t, string(out), `"error"`)
}
