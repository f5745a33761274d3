// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package httpjsonrpc binds the core's JSON-RPC "tools/call" contract
// to a single HTTP POST endpoint, ported from the teacher's
// services/code_buddy/routes.go Gin wiring.
package httpjsonrpc

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/transport/jsonrpc"
)

// Handler serves tools/call requests over HTTP for one workspace
// instance's Dispatcher.
type Handler struct {
	dispatcher jsonrpc.Dispatcher
	logger     *telemetry.Logger
}

// NewHandler wraps dispatcher for HTTP. A nil logger falls back to
// telemetry.Default().
func NewHandler(dispatcher jsonrpc.Dispatcher, logger *telemetry.Logger) *Handler {
	if logger == nil {
		logger = telemetry.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// Register mounts POST /tools/call on rg, mirroring RegisterRoutes'
// router-group convention.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/tools/call", h.handleToolsCall)
}

// NewRouter builds a standalone Gin engine with recovery middleware and
// Handler mounted at /v1, for callers that don't already own a router.
func NewRouter(dispatcher jsonrpc.Dispatcher, logger *telemetry.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h := NewHandler(dispatcher, logger)
	v1 := router.Group("/v1")
	h.Register(v1)
	return router
}

func (h *Handler) handleToolsCall(c *gin.Context) {
	requestID := uuid.NewString()
	log := h.logger.With("requestId", requestID, "transport", "http")

	var req jsonrpc.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("malformed request body", "error", err.Error())
		c.JSON(http.StatusBadRequest, jsonrpc.Response{
			Error: &jsonrpc.Error{Code: -32700, Message: "invalid JSON: " + err.Error()},
		})
		return
	}

	if req.Method != "tools/call" {
		c.JSON(http.StatusOK, jsonrpc.Response{
			ID:    req.ID,
			Error: &jsonrpc.Error{Code: -32601, Message: "unsupported method: " + req.Method},
		})
		return
	}

	log = log.With("tool", req.Params.Name)
	result, err := h.dispatcher.Dispatch(c.Request.Context(), req.Params.Name, req.Params.Arguments)
	if err != nil {
		log.Warn("tool call failed", "error", err.Error())
		c.JSON(http.StatusOK, jsonrpc.ErrorResponse(req.ID, err))
		return
	}
	log.Info("tool call completed")
	c.JSON(http.StatusOK, jsonrpc.Response{ID: req.ID, Result: result})
}
