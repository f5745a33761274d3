// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/fileservice"
	"github.com/forgekit/refactorctl/internal/history"
	"github.com/forgekit/refactorctl/internal/lock"
	"github.com/forgekit/refactorctl/internal/telemetry"
	"github.com/forgekit/refactorctl/internal/trust"
	"github.com/forgekit/refactorctl/internal/types"
)

// Files is the subset of fileservice.Service the executor needs, narrowed
// so tests can substitute a fake without touching a real filesystem.
type Files interface {
	Read(ctx context.Context, path string) (*fileservice.ReadResult, error)
	Write(ctx context.Context, path string, newContent []byte, expectedDigest string) (*fileservice.WriteResult, error)
	Delete(ctx context.Context, path string, expectedDigest string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	MoveFile(ctx context.Context, oldPath, newPath string, similarity float64) error
}

// Locks is the subset of lock.Manager the executor needs.
type Locks interface {
	AcquireMany(ctx context.Context, paths []string, mode lock.Mode) (*lock.Guard, error)
}

// Cache is the subset of astcache.Cache the executor needs.
type Cache interface {
	InvalidatePaths(paths []string)
}

// History is the subset of history.Store the executor needs to retain an
// undo snapshot after a successful, non-dry-run apply.
type History interface {
	Record(entry history.Entry)
}

// Deps bundles every resource PlanExecutor needs to apply a plan.
// Trust, Validator, and History are optional: a nil Trust skips the
// privileged-zone check, a nil Validator skips post-apply validation
// regardless of ApplyOptions.Validate, and a nil History means applied
// plans cannot later be undone via Undo.
type Deps struct {
	Locks     Locks
	Files     Files
	Cache     Cache
	Trust     *trust.Classifier
	Validator *PostApplyValidator
	History   History
	Logger    *slog.Logger
}

// PlanExecutor applies an EditPlan atomically under the protocol: acquire
// locks, re-verify preconditions, journal, apply in order, validate,
// invalidate cache.
type PlanExecutor struct {
	deps Deps
}

// NewPlanExecutor creates a PlanExecutor using deps.
func NewPlanExecutor(deps Deps) *PlanExecutor {
	if deps.Logger == nil {
		deps.Logger = telemetry.Default().Slog()
	}
	return &PlanExecutor{deps: deps}
}

type journalEntry struct {
	existed bool
	content []byte
}

// Apply applies plan under opts, returning AppliedFiles/FailedFiles on
// both success and an apply-time failure (the latter after rollback, if
// any was attempted).
func (e *PlanExecutor) Apply(ctx context.Context, plan *types.EditPlan, opts ApplyOptions) (result *Result, err error) {
	start := time.Now()
	outcome := "failed"
	defer func() { applyDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds()) }()

	if plan == nil {
		return nil, errors.New(errors.KindInvalidRequest, "plan executor: nil plan")
	}

	paths := plan.Paths()
	var warnings []string

	if e.deps.Trust != nil {
		if privileged := e.deps.Trust.PrivilegedPaths(paths); len(privileged) > 0 {
			if !opts.Overwrite {
				return nil, errors.New(errors.KindSandboxViolation,
					fmt.Sprintf("plan touches privileged paths without options.overwrite: %v", privileged))
			}
			warnings = append(warnings, fmt.Sprintf("plan applied to privileged paths: %v", privileged))
		}
	}

	// Step 1: lock acquisition, in lexicographic order.
	guard, err := e.deps.Locks.AcquireMany(ctx, paths, lock.Write)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	// Step 2: precondition re-verification.
	for path, expected := range plan.FileChecksums {
		res, readErr := e.deps.Files.Read(ctx, path)
		exists := readErr == nil
		switch {
		case expected == "" && exists:
			return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("expected %s to not exist", path))
		case expected != "" && !exists:
			return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("expected %s to exist", path))
		case expected != "" && exists && res.Digest != expected:
			return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("content of %s changed since plan was built", path))
		}
	}

	if opts.DryRun {
		outcome = "dry_run"
		return &Result{DryRun: true, Warnings: warnings}, nil
	}

	// Step 3: journal every path (old and new) before any write, so
	// rollback can restore or delete regardless of which op touched it.
	journal := make(map[string]journalEntry, len(paths))
	for _, path := range paths {
		res, readErr := e.deps.Files.Read(ctx, path)
		if readErr == nil {
			journal[path] = journalEntry{existed: true, content: res.Content}
		} else {
			journal[path] = journalEntry{existed: false}
		}
	}

	// Step 4: apply in order - creates, then text edits, then
	// moves/renames, then deletes, preserving relative order within a
	// priority tier.
	ordered := orderedOps(plan.Ops)

	var applied, failed []string
	var applyErr error
	for _, op := range ordered {
		if ctx.Err() != nil {
			applyErr = errors.Wrap(errors.KindCancelled, ctx.Err())
			break
		}
		touched, err := e.applyOp(ctx, plan, op, journal)
		if err != nil {
			applyErr = err
			failed = append(failed, op.Path)
			break
		}
		applied = append(applied, touched...)
	}

	if applyErr != nil {
		e.rollback(ctx, journal)
		rollbacksTotal.WithLabelValues(string(plan.PlanType)).Inc()
		return &Result{FailedFiles: failed, Warnings: warnings}, applyErr
	}

	result = &Result{AppliedFiles: applied, Warnings: warnings}

	// Step 5 (post-apply validation) runs in ApplyWithValidation, which
	// needs the command string a bare Apply call doesn't take.

	// Step 6: cache invalidation.
	if e.deps.Cache != nil {
		e.deps.Cache.InvalidatePaths(paths)
	}

	if e.deps.History != nil {
		e.deps.History.Record(journalToHistoryEntry(plan, journal))
	}

	outcome = "applied"
	return result, nil
}

// journalToHistoryEntry converts Apply's pre-write journal into a
// retained history.Entry, so a later, separate call can reconstruct the
// pre-apply state of every path this plan touched.
func journalToHistoryEntry(plan *types.EditPlan, journal map[string]journalEntry) history.Entry {
	snapshots := make([]history.Snapshot, 0, len(journal))
	for path, entry := range journal {
		snapshots = append(snapshots, history.Snapshot{Path: path, Existed: entry.existed, Content: entry.content})
	}
	return history.Entry{PlanID: plan.ID, PlanType: plan.PlanType, AppliedAt: time.Now(), Snapshots: snapshots}
}

// Undo reverses one previously applied plan by restoring every path in
// entry.Snapshots to its pre-apply state: a write-back of the retained
// content if it existed, or a delete if the plan had created it. Unlike
// Apply, Undo doesn't re-verify plan preconditions - the caller is
// explicitly asking to discard whatever is there now - but it still
// re-reads the current digest immediately before each write so a
// concurrent modification is overwritten atomically rather than torn.
func (e *PlanExecutor) Undo(ctx context.Context, entry history.Entry) (*Result, error) {
	paths := make([]string, 0, len(entry.Snapshots))
	for _, snap := range entry.Snapshots {
		paths = append(paths, snap.Path)
	}

	guard, err := e.deps.Locks.AcquireMany(ctx, paths, lock.Write)
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	var restored []string
	for _, snap := range entry.Snapshots {
		cur, readErr := e.deps.Files.Read(ctx, snap.Path)
		currentlyExists := readErr == nil

		switch {
		case snap.Existed && currentlyExists:
			if _, err := e.deps.Files.Write(ctx, snap.Path, snap.Content, cur.Digest); err != nil {
				return nil, err
			}
		case snap.Existed && !currentlyExists:
			if _, err := e.deps.Files.Write(ctx, snap.Path, snap.Content, ""); err != nil {
				return nil, err
			}
		case !snap.Existed && currentlyExists:
			if err := e.deps.Files.Delete(ctx, snap.Path, cur.Digest); err != nil {
				return nil, err
			}
		default:
			continue
		}
		restored = append(restored, snap.Path)
	}

	if e.deps.Cache != nil {
		e.deps.Cache.InvalidatePaths(paths)
	}

	return &Result{AppliedFiles: restored}, nil
}

// ApplyWithValidation is Apply followed by running command through
// PostApplyValidator if opts.Validate is set, honoring opts.ValidationPolicy
// on failure. Split from Apply so a caller without a configured validator
// never needs to pass an unused command string.
func (e *PlanExecutor) ApplyWithValidation(ctx context.Context, plan *types.EditPlan, opts ApplyOptions, command string) (*Result, error) {
	// Snapshot every touched path before applying, so the Rollback policy
	// below can restore the pre-apply state and remove created files.
	preImage := make(map[string]journalEntry)
	if plan != nil {
		for _, path := range plan.Paths() {
			entry := journalEntry{}
			if res, readErr := e.deps.Files.Read(ctx, path); readErr == nil {
				entry = journalEntry{existed: true, content: res.Content}
			}
			preImage[path] = entry
		}
	}

	result, err := e.Apply(ctx, plan, opts)
	if err != nil || result.DryRun || !opts.Validate || e.deps.Validator == nil || command == "" {
		return result, err
	}

	cmdResult, runErr := e.deps.Validator.Run(ctx, command)
	if runErr != nil {
		return result, runErr
	}
	result.Validation = cmdResult

	if cmdResult.Failed {
		policy := opts.ValidationPolicy
		if policy == "" {
			policy = PolicyReport
		}
		if policy == PolicyRollback {
			e.rollback(ctx, preImage)
			return result, errors.New(errors.KindValidationFailed, cmdResult.Reason)
		}
	}

	return result, nil
}

func (e *PlanExecutor) applyOp(ctx context.Context, plan *types.EditPlan, op types.FileOp, journal map[string]journalEntry) ([]string, error) {
	switch op.Kind {
	case types.FileOpCreateFile:
		if _, err := e.deps.Files.Write(ctx, op.Path, []byte(op.NewText), ""); err != nil {
			return nil, err
		}
		return []string{op.Path}, nil

	case types.FileOpTextEdit:
		expected := plan.FileChecksums[op.Path]
		if expected == "" {
			expected = fileservice.Digest([]byte(op.OldText))
		}
		if _, err := e.deps.Files.Write(ctx, op.Path, []byte(op.NewText), expected); err != nil {
			return nil, err
		}
		return []string{op.Path}, nil

	case types.FileOpMoveFile:
		res, err := e.deps.Files.Read(ctx, op.Path)
		if err != nil {
			return nil, err
		}
		// A move never rewrites content itself; if op.Path's bytes differ
		// from what they were before this Apply call started, an earlier
		// TextEdit in the same plan already rewrote them in place, and
		// this move carries that rewrite along with it.
		similarity := 1.0
		if pre, ok := journal[op.Path]; ok && pre.existed {
			similarity = fileservice.ContentSimilarity(pre.content, res.Content)
		}
		if err := e.deps.Files.MoveFile(ctx, op.Path, op.NewPath, similarity); err != nil {
			return nil, err
		}
		return []string{op.Path, op.NewPath}, nil

	case types.FileOpRenameDirectory:
		if err := e.deps.Files.Rename(ctx, op.Path, op.NewPath); err != nil {
			return nil, err
		}
		return []string{op.Path, op.NewPath}, nil

	case types.FileOpDeleteFile:
		expected := plan.FileChecksums[op.Path]
		if err := e.deps.Files.Delete(ctx, op.Path, expected); err != nil {
			return nil, err
		}
		return []string{op.Path}, nil

	default:
		return nil, errors.New(errors.KindInternal, fmt.Sprintf("unknown file op kind: %s", op.Kind))
	}
}

// rollback restores or removes every journaled path, best-effort: a
// restore failure is logged but doesn't block restoring the remaining
// paths, since the caller is already on a failure path.
func (e *PlanExecutor) rollback(ctx context.Context, journal map[string]journalEntry) {
	for path, entry := range journal {
		cur, readErr := e.deps.Files.Read(ctx, path)
		currentlyExists := readErr == nil

		switch {
		case entry.existed && currentlyExists:
			if _, err := e.deps.Files.Write(ctx, path, entry.content, cur.Digest); err != nil {
				e.deps.Logger.Error("rollback: failed to restore modified file", slog.String("path", path), slog.String("error", err.Error()))
			}
		case entry.existed && !currentlyExists:
			if _, err := e.deps.Files.Write(ctx, path, entry.content, ""); err != nil {
				e.deps.Logger.Error("rollback: failed to recreate deleted file", slog.String("path", path), slog.String("error", err.Error()))
			}
		case !entry.existed && currentlyExists:
			if err := e.deps.Files.Delete(ctx, path, cur.Digest); err != nil {
				e.deps.Logger.Error("rollback: failed to remove created file", slog.String("path", path), slog.String("error", err.Error()))
			}
		}
	}
}

func opPriority(kind types.FileOpKind) int {
	switch kind {
	case types.FileOpCreateFile:
		return 0
	case types.FileOpTextEdit:
		return 1
	case types.FileOpMoveFile, types.FileOpRenameDirectory:
		return 2
	case types.FileOpDeleteFile:
		return 3
	default:
		return 4
	}
}

// orderedOps returns ops sorted so creates run before edits that
// reference the new file, and deletes run last among ops touching the
// same path, preserving relative order within one priority tier.
func orderedOps(ops []types.FileOp) []types.FileOp {
	out := make([]types.FileOp, len(ops))
	copy(out, ops)
	sort.SliceStable(out, func(i, j int) bool {
		return opPriority(out[i].Kind) < opPriority(out[j].Kind)
	})
	return out
}
