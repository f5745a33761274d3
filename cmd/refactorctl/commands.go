// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/forgekit/refactorctl/internal/config"
	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/transport/httpjsonrpc"
	"github.com/forgekit/refactorctl/internal/transport/wsjsonrpc"
	"github.com/forgekit/refactorctl/internal/workspace"
)

// cfg, logger, and manager are populated by rootCmd's PersistentPreRunE
// before any subcommand's Run executes, following the teacher's
// package-level-config-plus-PersistentPreRun convention in
// cmd/aleutian/main.go.
var (
	cfg     config.Config
	logger  *telemetry.Logger
	manager *workspace.Manager

	configPath    string
	workspaceRoot string
)

var rootCmd = &cobra.Command{
	Use:   "refactorctl",
	Short: "Serves language-aware refactoring tools over JSON-RPC",
	Long: `refactorctl applies rename, move, delete, extract, inline, and
find/replace refactorings across a workspace, planning each one against
a cached symbol index before ever touching disk, and exposes them as
JSON-RPC tools over HTTP and WebSocket.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "refactorctl.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "workspace", ".", "workspace root this process serves")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = *loaded

		logger = telemetry.New(cfg.Logging.TelemetryConfig("refactorctl"))
		registry := newPluginRegistry()
		manager = workspace.NewManager(newFactory(cfg, logger, registry))
		return nil
	}

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP and WebSocket tool-call server",
	RunE:  runServe,
}

// tenantKey is the (user, workspace-id) pair this single-tenant process
// serves. A future multi-tenant deployment would derive this from the
// authenticated caller instead of a constant.
var tenantKey = workspace.Key{User: "local", WorkspaceID: "default"}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	instance, err := manager.Get(ctx, tenantKey, workspaceRoot)
	if err != nil {
		return fmt.Errorf("constructing workspace: %w", err)
	}
	defer manager.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	v1 := router.Group("/v1")

	httpjsonrpc.NewHandler(instance.Dispatcher, logger).Register(v1)
	wsjsonrpc.NewHandler(instance.Dispatcher, logger).Register(v1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("serving tool calls", "addr", addr, "workspace", instance.Root)
	return router.Run(addr)
}
