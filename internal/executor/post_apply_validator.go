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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/forgekit/refactorctl/internal/errors"
)

// dangerousMetachars are rejected outright before a command is ever
// tokenized, since a string containing them cannot be safely split into
// argv tokens without a shell interpreting it.
var dangerousMetachars = []string{";", "&", "|", "`", "$("}

// PostApplyValidatorConfig configures one PostApplyValidator.
type PostApplyValidatorConfig struct {
	// WorkDir is the directory the command runs in; normally the
	// workspace root.
	WorkDir string

	// AllowedCommands is the set of recognized first-token program
	// names (e.g. "go", "npm", "cargo", "pytest"). A command whose
	// first token isn't in this set is rejected before execution.
	AllowedCommands []string

	// Timeout bounds how long the command may run; zero means no bound.
	Timeout time.Duration

	// FailOnStderr treats any non-empty stderr as failure even when the
	// command exits zero.
	FailOnStderr bool
}

// PostApplyValidator runs a single configured build/check command in the
// workspace root and reports whether it passed. The command string is
// never handed to a shell: it is tokenized and its first token checked
// against an allow-list, so injected shell metacharacters cannot expand
// into a different program.
type PostApplyValidator struct {
	cfg PostApplyValidatorConfig
}

// NewPostApplyValidator creates a PostApplyValidator using cfg.
func NewPostApplyValidator(cfg PostApplyValidatorConfig) *PostApplyValidator {
	return &PostApplyValidator{cfg: cfg}
}

// Run tokenizes command, checks it against the allow-list, and executes
// it with the configured timeout. It returns a KindInvalidRequest error,
// without running anything, if command fails either check.
func (v *PostApplyValidator) Run(ctx context.Context, command string) (*CommandResult, error) {
	for _, meta := range dangerousMetachars {
		if strings.Contains(command, meta) {
			return nil, errors.New(errors.KindInvalidRequest,
				fmt.Sprintf("post-apply command rejected: contains shell metacharacter %q", meta))
		}
	}

	tokens := strings.Fields(command)
	if len(tokens) == 0 {
		return nil, errors.New(errors.KindInvalidRequest, "post-apply command is empty")
	}

	if !v.isAllowed(tokens[0]) {
		return nil, errors.New(errors.KindInvalidRequest,
			fmt.Sprintf("post-apply command %q is not in the allow-list", tokens[0]))
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if v.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, v.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, tokens[0], tokens[1:]...)
	cmd.Dir = v.cfg.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if runErr != nil {
		exitCode = -1
	}

	result := &CommandResult{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
	}

	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Failed = true
		result.Reason = "timed out"
	case exitCode != 0:
		result.Failed = true
		result.Reason = fmt.Sprintf("non-zero exit code %d", exitCode)
	case v.cfg.FailOnStderr && result.Stderr != "":
		result.Failed = true
		result.Reason = "non-empty stderr"
	}

	return result, nil
}

func (v *PostApplyValidator) isAllowed(program string) bool {
	for _, allowed := range v.cfg.AllowedCommands {
		if program == allowed {
			return true
		}
	}
	return false
}
