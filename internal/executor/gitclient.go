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
	"strings"

	"github.com/forgekit/refactorctl/internal/git"
)

// GitStatus is the working-tree state PreFlightGuard inspects.
type GitStatus struct {
	StagedFiles    []string
	ModifiedFiles  []string
	UntrackedFiles []string
}

// GitClient is the subset of git queries PreFlightGuard needs. It is
// satisfied by gitExecClient, a thin wrapper over *git.Executor, kept
// as its own interface so tests can substitute a fake without running
// a real git binary.
type GitClient interface {
	IsGitRepository(ctx context.Context) bool
	HasMergeInProgress(ctx context.Context) bool
	HasRebaseInProgress(ctx context.Context) bool
	HasCherryPickInProgress(ctx context.Context) bool
	HasBisectInProgress(ctx context.Context) bool
	IsDetachedHead(ctx context.Context) bool
	Status(ctx context.Context) (*GitStatus, error)
	StashPush(ctx context.Context, message string) error
	StashPop(ctx context.Context) error
}

// gitRunner is the narrow slice of *git.Executor this package depends
// on, so it can be faked without running a real git binary in tests.
type gitRunner interface {
	Execute(ctx context.Context, args []string) (*git.ExecResult, error)
}

// gitExecClient implements GitClient by shelling out through a
// gitRunner, following the same plumbing-command style the rest of the
// workspace's git interactions use (porcelain output is never parsed
// by hand beyond status; plumbing exit codes and refs are).
type gitExecClient struct {
	run gitRunner
}

// NewGitExecClient wraps run (typically *git.Executor) as a GitClient.
func NewGitExecClient(run gitRunner) GitClient {
	return &gitExecClient{run: run}
}

func (c *gitExecClient) exec(ctx context.Context, args ...string) (*git.ExecResult, error) {
	return c.run.Execute(ctx, args)
}

func (c *gitExecClient) IsGitRepository(ctx context.Context) bool {
	res, err := c.exec(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && res.ExitCode == 0
}

func (c *gitExecClient) HasMergeInProgress(ctx context.Context) bool {
	res, err := c.exec(ctx, "rev-parse", "--verify", "-q", "MERGE_HEAD")
	return err == nil && res.ExitCode == 0
}

func (c *gitExecClient) HasRebaseInProgress(ctx context.Context) bool {
	res, err := c.exec(ctx, "rev-parse", "--verify", "-q", "REBASE_HEAD")
	return err == nil && res.ExitCode == 0
}

func (c *gitExecClient) HasCherryPickInProgress(ctx context.Context) bool {
	res, err := c.exec(ctx, "rev-parse", "--verify", "-q", "CHERRY_PICK_HEAD")
	return err == nil && res.ExitCode == 0
}

func (c *gitExecClient) HasBisectInProgress(ctx context.Context) bool {
	res, err := c.exec(ctx, "rev-parse", "--verify", "-q", "BISECT_START")
	return err == nil && res.ExitCode == 0
}

func (c *gitExecClient) IsDetachedHead(ctx context.Context) bool {
	res, err := c.exec(ctx, "symbolic-ref", "-q", "HEAD")
	return err == nil && res.ExitCode != 0
}

func (c *gitExecClient) Status(ctx context.Context) (*GitStatus, error) {
	res, err := c.exec(ctx, "status", "--porcelain=v1")
	if err != nil {
		return nil, err
	}
	status := &GitStatus{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if len(line) < 3 {
			continue
		}
		indexState, workState, path := line[0], line[1], strings.TrimSpace(line[3:])
		switch {
		case indexState == '?' && workState == '?':
			status.UntrackedFiles = append(status.UntrackedFiles, path)
		case indexState != ' ' && indexState != '?':
			status.StagedFiles = append(status.StagedFiles, path)
			if workState != ' ' {
				status.ModifiedFiles = append(status.ModifiedFiles, path)
			}
		case workState != ' ':
			status.ModifiedFiles = append(status.ModifiedFiles, path)
		}
	}
	return status, nil
}

func (c *gitExecClient) StashPush(ctx context.Context, message string) error {
	_, err := c.exec(ctx, "stash", "push", "-u", "-m", message)
	return err
}

func (c *gitExecClient) StashPop(ctx context.Context) error {
	_, err := c.exec(ctx, "stash", "pop")
	return err
}
