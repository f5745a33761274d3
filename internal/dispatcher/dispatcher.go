// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dispatcher implements the JSON-RPC-facing tool surface:
// inspect_code, search_code, rename_all, relocate, prune, refactor, and
// workspace. It owns no business logic of its own - every mutating tool
// builds an EditPlan through the matching internal/planner type and
// applies it through internal/executor.PlanExecutor; every read-only
// tool queries internal/astcache and internal/types.GlobalGraph
// directly.
package dispatcher

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/forgekit/refactorctl/internal/astcache"
	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/executor"
	"github.com/forgekit/refactorctl/internal/history"
	"github.com/forgekit/refactorctl/internal/planner"
	"github.com/forgekit/refactorctl/internal/plugin"
	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/types"
)

// Deps bundles every planner, the executor, and the read-side indexes
// the dispatcher routes tool calls to.
type Deps struct {
	Rename      *planner.RenamePlanner
	Move        *planner.MoveService
	Delete      *planner.DeletePlanner
	Extract     *planner.ExtractPlanner
	Inline      *planner.InlinePlanner
	FindReplace *planner.FindReplacePlanner

	Executor *executor.PlanExecutor
	History  *history.Store

	Reader  planner.FileReader
	Plugins planner.PluginResolver
	Cache   *astcache.Cache
	Graph   *types.GlobalGraph

	// Logger receives one structured line per tool call, tagged with a
	// fresh correlation ID; nil falls back to telemetry.Default().
	Logger *telemetry.Logger
}

// Dispatcher routes a tools/call request by name to its handler.
type Dispatcher struct {
	deps Deps
}

// New creates a Dispatcher using deps.
func New(deps Deps) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = telemetry.Default()
	}
	return &Dispatcher{deps: deps}
}

// Dispatch decodes arguments into the shape name's tool expects and
// runs it. An unrecognized name returns errors.KindUnknownTool; a
// JSON decode failure returns errors.KindInvalidRequest. Every call is
// tagged with a fresh correlation ID logged alongside the tool name and,
// on failure, the error - the thread a caller follows across logs when
// chasing down one tool invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, arguments json.RawMessage) (any, error) {
	correlationID := uuid.NewString()
	log := d.deps.Logger.With("tool", name, "correlationId", correlationID)

	var result any
	var err error
	switch name {
	case "inspect_code":
		result, err = d.inspectCode(ctx, arguments)
	case "search_code":
		result, err = d.searchCode(ctx, arguments)
	case "rename_all":
		result, err = d.renameAll(ctx, arguments)
	case "relocate":
		result, err = d.relocate(ctx, arguments)
	case "prune":
		result, err = d.prune(ctx, arguments)
	case "refactor":
		result, err = d.refactor(ctx, arguments)
	case "workspace":
		result, err = d.workspace(ctx, arguments)
	default:
		err = errors.New(errors.KindUnknownTool, "dispatcher: unknown tool "+name)
	}

	if err != nil {
		log.Warn("tool call failed", "error", err.Error(), "kind", errors.KindOf(err))
		return nil, err
	}
	log.Info("tool call completed")
	return result, nil
}

func decode[T any](arguments json.RawMessage) (T, error) {
	var v T
	if len(arguments) == 0 {
		return v, errors.New(errors.KindInvalidRequest, "dispatcher: missing arguments")
	}
	if err := json.Unmarshal(arguments, &v); err != nil {
		return v, errors.Wrap(errors.KindInvalidRequest, err)
	}
	return v, nil
}

// inspectCode aggregates definition, references, hover, and
// diagnostics for a position. Definition/references are answered from
// the cached symbol index and import graph; hover and diagnostics are
// left nil, since no language server request-dispatch is wired into
// this tree - reporting that honestly beats fabricating a response.
func (d *Dispatcher) inspectCode(_ context.Context, arguments json.RawMessage) (*InspectCodeResult, error) {
	req, err := decode[InspectCodeRequest](arguments)
	if err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, errors.New(errors.KindInvalidRequest, "inspect_code: path is required")
	}
	if d.deps.Cache == nil {
		return nil, errors.New(errors.KindInternal, "inspect_code: no symbol cache configured")
	}

	result := &InspectCodeResult{}
	for _, entry := range d.deps.Cache.Entries() {
		if entry.Path != req.Path {
			continue
		}
		for i := range entry.Symbols {
			sym := &entry.Symbols[i]
			if sym.Range.Contains(req.Position) {
				result.Definition = sym
				break
			}
		}
		break
	}

	if d.deps.Graph != nil {
		result.References = d.deps.Graph.Importers(req.Path)
	}

	return result, nil
}

// searchCode filters every cached file's symbol index by name fragment
// and, when given, symbol kind.
func (d *Dispatcher) searchCode(_ context.Context, arguments json.RawMessage) (*SearchCodeResult, error) {
	req, err := decode[SearchCodeRequest](arguments)
	if err != nil {
		return nil, err
	}
	if req.Query == "" {
		return nil, errors.New(errors.KindInvalidRequest, "search_code: query is required")
	}
	if d.deps.Cache == nil {
		return nil, errors.New(errors.KindInternal, "search_code: no symbol cache configured")
	}

	var matches []types.Symbol
	for _, entry := range d.deps.Cache.Entries() {
		for _, sym := range entry.Symbols {
			if !strings.Contains(strings.ToLower(sym.Name), strings.ToLower(req.Query)) {
				continue
			}
			if req.Kind != "" && sym.Kind.String() != req.Kind {
				continue
			}
			matches = append(matches, sym)
			if req.Limit > 0 && len(matches) >= req.Limit {
				return &SearchCodeResult{Symbols: matches}, nil
			}
		}
	}
	return &SearchCodeResult{Symbols: matches}, nil
}

func (d *Dispatcher) renameAll(ctx context.Context, arguments json.RawMessage) (*ApplyResult, error) {
	req, err := decode[RenameAllRequest](arguments)
	if err != nil {
		return nil, err
	}
	if req.NewName == "" {
		return nil, errors.New(errors.KindInvalidRequest, "rename_all: newName is required")
	}

	targets := req.Targets
	if req.Target != nil {
		targets = append(targets, *req.Target)
	}
	if len(targets) == 0 {
		return nil, errors.New(errors.KindInvalidRequest, "rename_all: target or targets is required")
	}

	var merged *types.EditPlan
	for _, target := range targets {
		kind, err := renameTargetKind(target.Kind)
		if err != nil {
			return nil, err
		}
		plan, err := d.deps.Rename.Plan(ctx, planner.RenameIntent{
			Kind:       kind,
			TargetPath: target.Path,
			NewName:    req.NewName,
			Overwrite:  req.Options.Overwrite,
			DryRun:     req.Options.DryRun,
		})
		if err != nil {
			return nil, err
		}
		merged = mergePlans(merged, plan)
	}

	return d.apply(ctx, merged, req.Options)
}

func (d *Dispatcher) relocate(ctx context.Context, arguments json.RawMessage) (*ApplyResult, error) {
	req, err := decode[RelocateRequest](arguments)
	if err != nil {
		return nil, err
	}
	kind, err := renameTargetKind(req.Target.Kind)
	if err != nil {
		return nil, err
	}
	if req.NewPath == "" {
		return nil, errors.New(errors.KindInvalidRequest, "relocate: newPath is required")
	}

	plan, err := d.deps.Move.Plan(ctx, planner.MoveIntent{
		Kind:      kind,
		OldPath:   req.Target.Path,
		NewPath:   req.NewPath,
		Overwrite: req.Options.Overwrite,
		DryRun:    req.Options.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return d.apply(ctx, plan, req.Options)
}

func (d *Dispatcher) prune(ctx context.Context, arguments json.RawMessage) (*ApplyResult, error) {
	req, err := decode[PruneRequest](arguments)
	if err != nil {
		return nil, err
	}
	kind, err := renameTargetKind(req.Target.Kind)
	if err != nil {
		return nil, err
	}

	plan, err := d.deps.Delete.Plan(ctx, planner.DeleteIntent{
		Kind:       kind,
		TargetPath: req.Target.Path,
	})
	if err != nil {
		return nil, err
	}
	return d.apply(ctx, plan, req.Options)
}

func (d *Dispatcher) refactor(ctx context.Context, arguments json.RawMessage) (*ApplyResult, error) {
	req, err := decode[RefactorRequest](arguments)
	if err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, errors.New(errors.KindInvalidRequest, "refactor: path is required")
	}

	var plan *types.EditPlan
	switch req.Operation {
	case RefactorExtractFunction:
		plan, err = d.deps.Extract.Plan(ctx, planner.ExtractIntent{
			Kind: planner.ExtractKindFunction, FilePath: req.Path, Range: req.Range, NewName: req.NewName,
		})
	case RefactorExtractVariable:
		plan, err = d.deps.Extract.Plan(ctx, planner.ExtractIntent{
			Kind: planner.ExtractKindVariable, FilePath: req.Path, Range: req.Range, NewName: req.NewName,
		})
	case RefactorInlineVariable:
		plan, err = d.deps.Inline.Plan(ctx, planner.InlineIntent{FilePath: req.Path, Position: req.Position})
	default:
		return nil, errors.New(errors.KindInvalidRequest, "refactor: unknown operation "+string(req.Operation))
	}
	if err != nil {
		return nil, err
	}
	return d.apply(ctx, plan, req.Options)
}

// workspace routes to plugin.WorkspaceSupport for package-management
// sub-operations and to FindReplacePlanner for a textual sweep.
// Dependency extraction has no grounded component in this tree and is
// intentionally not implemented; it returns errors.KindUnsupported
// rather than fabricating results.
func (d *Dispatcher) workspace(ctx context.Context, arguments json.RawMessage) (*WorkspaceResult, error) {
	req, err := decode[WorkspaceRequest](arguments)
	if err != nil {
		return nil, err
	}

	switch req.Operation {
	case WorkspaceFindReplace:
		if d.deps.FindReplace == nil {
			return nil, errors.New(errors.KindInternal, "workspace: find_replace planner not configured")
		}
		plan, err := d.deps.FindReplace.Plan(ctx, planner.FindReplaceIntent{
			Find: req.Find, Replace: req.Replace, Scope: req.Options.Scope,
		})
		if err != nil {
			return nil, err
		}
		if req.Options.DryRun {
			return &WorkspaceResult{Plan: plan}, nil
		}
		if d.deps.Executor == nil {
			return nil, errors.New(errors.KindInternal, "workspace: no executor configured")
		}
		applied, err := d.deps.Executor.Apply(ctx, plan, executor.ApplyOptions{Overwrite: req.Options.Overwrite})
		if err != nil {
			return nil, err
		}
		return &WorkspaceResult{AppliedFiles: applied.AppliedFiles}, nil

	case WorkspaceListMembers, WorkspaceAddMember, WorkspaceRemoveMember, WorkspaceRenamePackage:
		return d.workspaceManifest(ctx, req)

	case WorkspaceUndoLast:
		if d.deps.History == nil {
			return nil, errors.New(errors.KindInternal, "workspace: undo_last: no history store configured")
		}
		if d.deps.Executor == nil {
			return nil, errors.New(errors.KindInternal, "workspace: undo_last: no executor configured")
		}
		entry, ok := d.deps.History.PopLast()
		if !ok {
			return nil, errors.New(errors.KindNotFound, "workspace: undo_last: no applied plan to undo")
		}
		result, err := d.deps.Executor.Undo(ctx, entry)
		if err != nil {
			return nil, err
		}
		return &WorkspaceResult{AppliedFiles: result.AppliedFiles}, nil

	default:
		return nil, errors.New(errors.KindUnsupported, "workspace: operation "+string(req.Operation)+" has no grounded implementation")
	}
}

func (d *Dispatcher) workspaceManifest(ctx context.Context, req WorkspaceRequest) (*WorkspaceResult, error) {
	if req.ManifestPath == "" {
		return nil, errors.New(errors.KindInvalidRequest, "workspace: manifestPath is required")
	}
	if d.deps.Reader == nil || d.deps.Plugins == nil {
		return nil, errors.New(errors.KindInternal, "workspace: no plugin resolver configured")
	}

	content, _, err := d.deps.Reader.Read(ctx, req.ManifestPath)
	if err != nil {
		return nil, err
	}
	p, ok := d.deps.Plugins.PluginFor(req.ManifestPath)
	if !ok {
		return nil, errors.New(errors.KindUnsupported, "workspace: no plugin registered for "+req.ManifestPath)
	}
	support, ok := p.(plugin.WorkspaceSupport)
	if !ok {
		return nil, errors.New(errors.KindUnsupported, "workspace: plugin has no workspace support")
	}

	switch req.Operation {
	case WorkspaceListMembers:
		members, err := support.ListMembers(content)
		if err != nil {
			return nil, err
		}
		return &WorkspaceResult{Members: members}, nil
	case WorkspaceAddMember:
		if req.MemberPath == "" {
			return nil, errors.New(errors.KindInvalidRequest, "workspace: memberPath is required")
		}
		if _, err := support.AddMember(content, req.MemberPath); err != nil {
			return nil, err
		}
		return &WorkspaceResult{}, nil
	case WorkspaceRemoveMember:
		if req.MemberPath == "" {
			return nil, errors.New(errors.KindInvalidRequest, "workspace: memberPath is required")
		}
		if _, err := support.RemoveMember(content, req.MemberPath); err != nil {
			return nil, err
		}
		return &WorkspaceResult{}, nil
	case WorkspaceRenamePackage:
		if req.OldName == "" || req.NewName == "" {
			return nil, errors.New(errors.KindInvalidRequest, "workspace: oldName and newName are required")
		}
		if _, err := support.RenamePackage(content, req.OldName, req.NewName); err != nil {
			return nil, err
		}
		return &WorkspaceResult{}, nil
	default:
		return nil, errors.New(errors.KindUnknownTool, "workspace: unreachable operation "+string(req.Operation))
	}
}

// apply runs plan through the executor, honoring opts.DryRun/Overwrite,
// and folds the outcome into the dispatcher's ApplyResult shape.
// opts.Validate is forwarded, but PlanExecutor.Apply runs no post-apply
// validation itself (only ApplyWithValidation does).
func (d *Dispatcher) apply(ctx context.Context, plan *types.EditPlan, opts Options) (*ApplyResult, error) {
	if plan == nil {
		return &ApplyResult{}, nil
	}
	if d.deps.Executor == nil {
		return nil, errors.New(errors.KindInternal, "dispatcher: no executor configured")
	}

	execOpts := executor.ApplyOptions{
		DryRun:    opts.DryRun,
		Overwrite: opts.Overwrite,
		Validate:  opts.Validate,
	}
	result, err := d.deps.Executor.Apply(ctx, plan, execOpts)
	if err != nil {
		return nil, err
	}

	out := &ApplyResult{
		AppliedFiles: result.AppliedFiles,
		FailedFiles:  result.FailedFiles,
		Warnings:     result.Warnings,
		DryRun:       result.DryRun,
	}
	if opts.DryRun {
		out.Plan = plan
	}
	return out, nil
}

// renameTargetKind rejects symbol-kind targets: structural renames of a
// symbol need an LSP-backed rename provider this tree doesn't wire in,
// so rename_all/relocate/prune only ever operate on files and
// directories.
func renameTargetKind(kind TargetKind) (planner.RenameTargetKind, error) {
	switch kind {
	case TargetKindFile:
		return planner.RenameKindFile, nil
	case TargetKindDirectory:
		return planner.RenameKindDirectory, nil
	case TargetKindSymbol:
		return "", errors.New(errors.KindUnsupported, "symbol-kind targets require an LSP-backed rename provider not wired into this build")
	default:
		return "", errors.New(errors.KindInvalidRequest, "unknown target kind "+string(kind))
	}
}

// mergePlans folds b's ops, checksums, and summary counts into a,
// creating a if it's nil. Used to combine a batch rename_all's
// per-target plans into one EditPlan applied atomically.
func mergePlans(a, b *types.EditPlan) *types.EditPlan {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	a.Ops = append(a.Ops, b.Ops...)
	for path, digest := range b.FileChecksums {
		a.FileChecksums[path] = digest
	}
	a.Summary.AffectedFiles += b.Summary.AffectedFiles
	a.Summary.AddedLines += b.Summary.AddedLines
	a.Summary.RemovedLines += b.Summary.RemovedLines
	a.Warnings = append(a.Warnings, b.Warnings...)
	return a
}
