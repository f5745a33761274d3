// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fileservice

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/errors"
)

func TestWrite_CreatesNewFile(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	res, err := svc.Write(context.Background(), "a.txt", []byte("hello"), "")
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, Digest([]byte("hello")), res.Digest)

	content, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestWrite_RejectsExistingWithoutDigest(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v1"), "")
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v2"), "")
	require.True(t, errors.Is(err, errors.KindPreconditionFailed))
}

func TestWrite_DigestMismatchFails(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v1"), "")
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v2"), "stale-digest")
	require.True(t, errors.Is(err, errors.KindPreconditionFailed))

	content, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	require.Equal(t, "v1", string(content))
}

func TestWrite_MatchingDigestSucceeds(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	first, err := svc.Write(context.Background(), "a.txt", []byte("v1"), "")
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v2"), first.Digest)
	require.NoError(t, err)

	content, _ := os.ReadFile(filepath.Join(root, "a.txt"))
	require.Equal(t, "v2", string(content))
}

func TestResolve_RejectsEscapingPath(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "../escape.txt", []byte("x"), "")
	require.True(t, errors.Is(err, errors.KindSandboxViolation))
}

func TestRename_FailsOnCollision(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("a"), "")
	require.NoError(t, err)
	_, err = svc.Write(context.Background(), "b.txt", []byte("b"), "")
	require.NoError(t, err)

	err = svc.Rename(context.Background(), "a.txt", "b.txt")
	require.True(t, errors.Is(err, errors.KindCollision))
}

func TestDelete_DigestMismatchFails(t *testing.T) {
	root := t.TempDir()
	svc, err := New(root)
	require.NoError(t, err)

	_, err = svc.Write(context.Background(), "a.txt", []byte("v1"), "")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "a.txt", "stale-digest")
	require.True(t, errors.Is(err, errors.KindPreconditionFailed))
	_, statErr := os.Stat(filepath.Join(root, "a.txt"))
	require.NoError(t, statErr)
}
