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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgekit/refactorctl/internal/astcache"
	"github.com/forgekit/refactorctl/internal/config"
	"github.com/forgekit/refactorctl/internal/dispatcher"
	"github.com/forgekit/refactorctl/internal/executor"
	"github.com/forgekit/refactorctl/internal/fileservice"
	"github.com/forgekit/refactorctl/internal/git"
	"github.com/forgekit/refactorctl/internal/history"
	"github.com/forgekit/refactorctl/internal/lock"
	"github.com/forgekit/refactorctl/internal/planner"
	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/plugin/golang"
	"github.com/forgekit/refactorctl/internal/plugin/python"
	"github.com/forgekit/refactorctl/internal/plugin/rust"
	"github.com/forgekit/refactorctl/internal/plugin/typescript"
	"github.com/forgekit/refactorctl/internal/refupdater"
	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/trust"
	"github.com/forgekit/refactorctl/internal/types"
	"github.com/forgekit/refactorctl/internal/workspace"
)

// newPluginRegistry instantiates every language plugin this tree ships
// and wires them into one immutable plugin.Registry. This is the
// bootstrap no other package could own: planner/refupdater only depend
// on the PluginResolver interface, never on the concrete plugins.
func newPluginRegistry() *plugin.Registry {
	return plugin.NewRegistry(
		golang.NewParser(),
		python.NewParser(),
		typescript.NewParser(),
		rust.NewParser(),
	)
}

// fileReaderAdapter satisfies planner.FileReader over a *fileservice.Service,
// whose own Read/Exists signatures are shaped for executor.Files instead.
type fileReaderAdapter struct {
	files *fileservice.Service
}

func (a fileReaderAdapter) Read(ctx context.Context, path string) ([]byte, string, error) {
	result, err := a.files.Read(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return result.Content, result.Digest, nil
}

func (a fileReaderAdapter) Exists(ctx context.Context, path string) bool {
	return a.files.Exists(ctx, path)
}

// refupdaterReaderAdapter satisfies refupdater.FileReader, which only
// needs raw content.
type refupdaterReaderAdapter struct {
	files *fileservice.Service
}

func (a refupdaterReaderAdapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	result, err := a.files.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return result.Content, nil
}

// instanceCloser tears down the per-tenant resources newFactory
// allocates that outlive a single tool call: the filesystem watcher
// feeding cache invalidation and the undo journal's persistence file
// handle.
type instanceCloser struct {
	watcher *astcache.Watcher
	history *history.Store
}

func (c *instanceCloser) Close() error {
	var firstErr error
	if c.watcher != nil {
		if err := c.watcher.Close(); err != nil {
			firstErr = err
		}
	}
	if c.history != nil {
		if err := c.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// newFactory builds the workspace.Factory that constructs one tenant's
// full dependency graph - FileService, LockManager, AstCache,
// PlanExecutor, the planners, and the Dispatcher - against cfg and
// registry. cfg.Git.Enabled switches FileService into git-aware write
// mode; cfg.Validation.Enabled wires a PostApplyValidator; every other
// collaborator is unconditional.
func newFactory(cfg config.Config, logger *telemetry.Logger, registry *plugin.Registry) workspace.Factory {
	return func(ctx context.Context, root string) (*workspace.Instance, error) {
		cache := astcache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)

		var fileOpts []fileservice.Option
		if cfg.Git.Enabled {
			fileOpts = append(fileOpts, fileservice.WithGitAware(git.NewExecutor(root, cache)))
		}
		files, err := fileservice.New(root, fileOpts...)
		if err != nil {
			return nil, fmt.Errorf("refactorctl: constructing file service: %w", err)
		}

		locks := lock.New(uuid.NewString())

		watcher, err := astcache.NewWatcher(cache, locks, root)
		if err != nil {
			return nil, fmt.Errorf("refactorctl: starting file watcher: %w", err)
		}

		historyStore, err := history.NewStore(history.DefaultCapacity, "")
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("refactorctl: constructing history store: %w", err)
		}

		graph := types.NewGlobalGraph()
		reader := fileReaderAdapter{files: files}
		refReader := refupdaterReaderAdapter{files: files}
		updater := refupdater.New(registry, files, refReader)

		planDeps := planner.Deps{
			Reader:  reader,
			Plugins: registry,
			Updater: updater,
			Graph:   graph,
		}

		var validator *executor.PostApplyValidator
		if cfg.Validation.Enabled {
			validator = executor.NewPostApplyValidator(executor.PostApplyValidatorConfig{
				WorkDir:         root,
				AllowedCommands: []string{"go", "npm", "pnpm", "yarn", "cargo", "pytest", "python", "python3", "make"},
				Timeout:         time.Duration(cfg.Validation.TimeoutSeconds) * time.Second,
				FailOnStderr:    cfg.Validation.FailOnStderr,
			})
		}

		planExecutor := executor.NewPlanExecutor(executor.Deps{
			Locks:     locks,
			Files:     files,
			Cache:     cache,
			Trust:     trust.NewClassifier(nil),
			Validator: validator,
			History:   historyStore,
			Logger:    logger.Slog(),
		})

		d := dispatcher.New(dispatcher.Deps{
			Rename:      planner.NewRenamePlanner(planDeps),
			Move:        planner.NewMoveService(planDeps),
			Delete:      planner.NewDeletePlanner(planDeps),
			Extract:     planner.NewExtractPlanner(planDeps),
			Inline:      planner.NewInlinePlanner(planDeps),
			FindReplace: planner.NewFindReplacePlanner(reader, files),
			Executor:    planExecutor,
			History:     historyStore,
			Reader:      reader,
			Plugins:     registry,
			Cache:       cache,
			Graph:       graph,
			Logger:      logger,
		})

		return workspace.NewInstance(root, d, &instanceCloser{watcher: watcher, history: historyStore}), nil
	}
}
