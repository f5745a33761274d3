// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wsjsonrpc

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/transport/jsonrpc"
)

type fakeDispatcher struct {
	result any
	err    error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, name string, arguments json.RawMessage) (any, error) {
	return f.result, f.err
}

func newTestServer(t *testing.T, dispatcher jsonrpc.Dispatcher) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHandler(dispatcher, nil)
	h.Register(router.Group("/v1"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/tools/call/ws"
	return server, wsURL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleUpgrade_SuccessfulToolCallRoundTrip(t *testing.T) {
	_, url := newTestServer(t, &fakeDispatcher{result: map[string]string{"status": "applied"}})
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(jsonrpc.Request{
		ID:     json.RawMessage(`"1"`),
		Method: "tools/call",
		Params: jsonrpc.ToolCallParams{Name: "rename_symbol", Arguments: json.RawMessage(`{}`)},
	}))

	var resp jsonrpc.Response
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&resp))
	require.Nil(t, resp.Error)
}

func TestHandleUpgrade_UnsupportedMethodReturnsMethodError(t *testing.T) {
	_, url := newTestServer(t, &fakeDispatcher{})
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(jsonrpc.Request{ID: json.RawMessage(`"2"`), Method: "tools/list"}))

	var resp jsonrpc.Response
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestHandleUpgrade_DispatchErrorTranslatesToWireCode(t *testing.T) {
	_, url := newTestServer(t, &fakeDispatcher{err: errors.New(errors.KindTimeout, "deadline exceeded")})
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(jsonrpc.Request{
		ID:     json.RawMessage(`"3"`),
		Method: "tools/call",
		Params: jsonrpc.ToolCallParams{Name: "apply_plan", Arguments: json.RawMessage(`{}`)},
	}))

	var resp jsonrpc.Response
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, -32006, resp.Error.Code)
}

func TestHandleUpgrade_SupportsMultipleRequestsOverOneConnection(t *testing.T) {
	_, url := newTestServer(t, &fakeDispatcher{result: "ok"})
	conn := dial(t, url)

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteJSON(jsonrpc.Request{
			ID:     json.RawMessage(`"1"`),
			Method: "tools/call",
			Params: jsonrpc.ToolCallParams{Name: "noop", Arguments: json.RawMessage(`{}`)},
		}))
		var resp jsonrpc.Response
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&resp))
		require.Nil(t, resp.Error)
	}
}

func TestHandleUpgrade_ClientCloseEndsLoopCleanly(t *testing.T) {
	_, url := newTestServer(t, &fakeDispatcher{result: "ok"})
	conn := dial(t, url)
	require.NoError(t, conn.Close())
}
