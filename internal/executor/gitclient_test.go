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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/git"
)

type fakeGitRunner struct {
	responses map[string]*git.ExecResult
}

func (f *fakeGitRunner) Execute(ctx context.Context, args []string) (*git.ExecResult, error) {
	key := strings.Join(args, " ")
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return &git.ExecResult{ExitCode: 1}, nil
}

func TestGitExecClient_HasMergeInProgress(t *testing.T) {
	runner := &fakeGitRunner{responses: map[string]*git.ExecResult{
		"rev-parse --verify -q MERGE_HEAD": {ExitCode: 0},
	}}
	client := NewGitExecClient(runner)
	require.True(t, client.HasMergeInProgress(context.Background()))
	require.False(t, client.HasRebaseInProgress(context.Background()))
}

func TestGitExecClient_IsDetachedHead(t *testing.T) {
	runner := &fakeGitRunner{responses: map[string]*git.ExecResult{
		"symbolic-ref -q HEAD": {ExitCode: 1},
	}}
	client := NewGitExecClient(runner)
	require.True(t, client.IsDetachedHead(context.Background()))
}

func TestGitExecClient_StatusBucketsFiles(t *testing.T) {
	runner := &fakeGitRunner{responses: map[string]*git.ExecResult{
		"status --porcelain=v1": {
			ExitCode: 0,
			Stdout:   "M  staged.go\n M modified.go\n?? new.go\n",
		},
	}}
	client := NewGitExecClient(runner)
	status, err := client.Status(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"staged.go"}, status.StagedFiles)
	require.Equal(t, []string{"modified.go"}, status.ModifiedFiles)
	require.Equal(t, []string{"new.go"}, status.UntrackedFiles)
}
