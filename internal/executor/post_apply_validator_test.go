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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/errors"
)

func TestPostApplyValidator_RejectsMetacharactersBeforeExecution(t *testing.T) {
	v := NewPostApplyValidator(PostApplyValidatorConfig{AllowedCommands: []string{"go"}})
	_, err := v.Run(context.Background(), "go build ./... ; rm -rf /")

	require.Error(t, err)
	require.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}

func TestPostApplyValidator_RejectsCommandNotInAllowList(t *testing.T) {
	v := NewPostApplyValidator(PostApplyValidatorConfig{AllowedCommands: []string{"go"}})
	_, err := v.Run(context.Background(), "curl http://example.com")

	require.Error(t, err)
	require.Equal(t, errors.KindInvalidRequest, errors.KindOf(err))
}

func TestPostApplyValidator_RunsAllowedCommand(t *testing.T) {
	v := NewPostApplyValidator(PostApplyValidatorConfig{
		AllowedCommands: []string{"echo"},
		Timeout:         5 * time.Second,
	})
	result, err := v.Run(context.Background(), "echo hello")

	require.NoError(t, err)
	require.False(t, result.Failed)
	require.Equal(t, 0, result.ExitCode)
	require.Contains(t, result.Stdout, "hello")
}

func TestPostApplyValidator_NonZeroExitIsFailed(t *testing.T) {
	v := NewPostApplyValidator(PostApplyValidatorConfig{AllowedCommands: []string{"false"}})
	result, err := v.Run(context.Background(), "false")

	require.NoError(t, err)
	require.True(t, result.Failed)
	require.NotZero(t, result.ExitCode)
}
