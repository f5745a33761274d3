// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wsjsonrpc binds the core's JSON-RPC "tools/call" contract to
// a long-lived WebSocket connection: one request per inbound frame, one
// response per outbound frame, ported from the teacher's
// services/orchestrator/handlers/websocket.go upgrade-and-loop shape.
package wsjsonrpc

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/transport/jsonrpc"
)

// upgrader accepts connections from any origin, matching the teacher's
// wiring - this transport is meant to sit behind the caller's own
// reverse proxy / auth layer, not police origins itself.
var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1 << 20,
	WriteBufferSize: 1 << 20,
}

// Handler upgrades HTTP connections to WebSocket and serves tools/call
// requests over the resulting connection for one workspace instance's
// Dispatcher.
type Handler struct {
	dispatcher jsonrpc.Dispatcher
	logger     *telemetry.Logger
}

// NewHandler wraps dispatcher for WebSocket. A nil logger falls back to
// telemetry.Default().
func NewHandler(dispatcher jsonrpc.Dispatcher, logger *telemetry.Logger) *Handler {
	if logger == nil {
		logger = telemetry.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// Register mounts GET /tools/call/ws on rg as the upgrade endpoint.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/tools/call/ws", h.handleUpgrade)
}

func (h *Handler) handleUpgrade(c *gin.Context) {
	connID := uuid.NewString()
	log := h.logger.With("connectionId", connID, "transport", "websocket")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()
	log.Info("connection opened")

	for {
		var req jsonrpc.Request
		if err := conn.ReadJSON(&req); err != nil {
			log.Info("connection closed", "error", err.Error())
			return
		}

		if req.Method != "tools/call" {
			if writeErr := conn.WriteJSON(jsonrpc.Response{
				ID:    req.ID,
				Error: &jsonrpc.Error{Code: -32601, Message: "unsupported method: " + req.Method},
			}); writeErr != nil {
				log.Warn("write failed, closing connection", "error", writeErr.Error())
				return
			}
			continue
		}

		result, callErr := h.dispatcher.Dispatch(c.Request.Context(), req.Params.Name, req.Params.Arguments)
		var resp jsonrpc.Response
		if callErr != nil {
			log.Warn("tool call failed", "tool", req.Params.Name, "error", callErr.Error())
			resp = jsonrpc.ErrorResponse(req.ID, callErr)
		} else {
			log.Info("tool call completed", "tool", req.Params.Name)
			resp = jsonrpc.Response{ID: req.ID, Result: result}
		}
		if writeErr := conn.WriteJSON(resp); writeErr != nil {
			log.Warn("write failed, closing connection", "error", writeErr.Error())
			return
		}
	}
}
