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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgekit/refactorctl/internal/errors"
	"github.com/forgekit/refactorctl/internal/git"
)

// GitRunner is the subset of *git.Executor the service needs for
// ModeGitAware writes, narrowed so tests can substitute a fake.
type GitRunner interface {
	Execute(ctx context.Context, args []string) (*git.ExecResult, error)
}

// Service is the sole writer of file content under a workspace root.
type Service struct {
	root string
	mode WriteMode
	git  GitRunner
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithGitAware switches the service into ModeGitAware, staging every
// successful write with the given runner.
func WithGitAware(runner GitRunner) Option {
	return func(s *Service) {
		s.mode = ModeGitAware
		s.git = runner
	}
}

// New creates a Service rooted at root, which must be an absolute,
// existing directory; every path passed to Read/Write/Rename/Delete is
// checked against it.
func New(root string, opts ...Option) (*Service, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("fileservice: root must be absolute: %s", root)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("fileservice: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fileservice: root is not a directory: %s", root)
	}
	s := &Service{root: filepath.Clean(root), mode: ModeDirect}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Digest returns the content-addressed digest used throughout the
// precondition-checking protocol: lowercase hex SHA-256.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *Service) resolve(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, path)
	}
	clean := filepath.Clean(abs)
	if clean != s.root && !strings.HasPrefix(clean, s.root+string(filepath.Separator)) {
		return "", errors.New(errors.KindSandboxViolation, fmt.Sprintf("path escapes workspace root: %s", path))
	}
	return clean, nil
}

// Read returns the current content and digest of path.
func (s *Service) Read(ctx context.Context, path string) (*ReadResult, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.KindNotFound, fmt.Sprintf("file not found: %s", path))
		}
		return nil, err
	}
	return &ReadResult{Path: path, Content: content, Digest: Digest(content)}, nil
}

// Write replaces the content of path with newContent, atomically via a
// temp-file-then-rename in the same directory. If expectedDigest is
// non-empty, the file's current digest must match it (empty expected
// digest means the file must not already exist) or Write fails with
// KindPreconditionFailed without touching the file.
func (s *Service) Write(ctx context.Context, path string, newContent []byte, expectedDigest string) (*WriteResult, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	existing, readErr := os.ReadFile(full)
	exists := readErr == nil
	created := !exists

	switch {
	case expectedDigest == "" && exists:
		return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("file already exists: %s", path))
	case expectedDigest != "" && !exists:
		return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("file does not exist: %s", path))
	case expectedDigest != "" && exists && Digest(existing) != expectedDigest:
		return nil, errors.New(errors.KindPreconditionFailed, fmt.Sprintf("content changed since plan was built: %s", path))
	}

	if err := os.MkdirAll(filepath.Dir(full), DefaultDirMode); err != nil {
		return nil, fmt.Errorf("fileservice: creating parent directories: %w", err)
	}

	if err := s.atomicWrite(full, newContent); err != nil {
		return nil, err
	}

	if s.mode == ModeGitAware && s.git != nil {
		if _, err := s.git.Execute(ctx, []string{"add", "--", full}); err != nil {
			return nil, fmt.Errorf("fileservice: git add after write: %w", err)
		}
	}

	return &WriteResult{
		Path:         path,
		Digest:       Digest(newContent),
		BytesWritten: int64(len(newContent)),
		Created:      created,
	}, nil
}

// atomicWrite writes content to a sibling temp file and renames it over
// target, so a concurrent reader never observes a partial write and a
// crash mid-write leaves the original file untouched.
func (s *Service) atomicWrite(target string, content []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".fileservice-*.tmp")
	if err != nil {
		return fmt.Errorf("fileservice: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("fileservice: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fileservice: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fileservice: closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, DefaultFileMode); err != nil {
		return fmt.Errorf("fileservice: setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("fileservice: renaming into place: %w", err)
	}
	return nil
}

// Delete removes path. If expectedDigest is non-empty, the file's
// current digest must match it or Delete fails with
// KindPreconditionFailed without touching the file.
func (s *Service) Delete(ctx context.Context, path string, expectedDigest string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if expectedDigest != "" {
		content, readErr := os.ReadFile(full)
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return errors.New(errors.KindNotFound, fmt.Sprintf("file not found: %s", path))
			}
			return readErr
		}
		if Digest(content) != expectedDigest {
			return errors.New(errors.KindPreconditionFailed, fmt.Sprintf("content changed since plan was built: %s", path))
		}
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.KindNotFound, fmt.Sprintf("file not found: %s", path))
		}
		return err
	}
	if s.mode == ModeGitAware && s.git != nil {
		if _, err := s.git.Execute(ctx, []string{"rm", "--cached", "--ignore-unmatch", "--", full}); err != nil {
			return fmt.Errorf("fileservice: git rm after delete: %w", err)
		}
	}
	return nil
}

// Rename moves oldPath to newPath, creating newPath's parent directory
// if needed and failing with KindCollision if newPath already exists.
// It stages the whole subtree with a single `git add -A`, since a
// directory rename has no single before/after content to compare and
// git's own renamed-file detection already runs per-file at diff time.
func (s *Service) Rename(ctx context.Context, oldPath, newPath string) error {
	fullOld, fullNew, err := s.prepareRename(oldPath, newPath)
	if err != nil {
		return err
	}
	if err := os.Rename(fullOld, fullNew); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.KindNotFound, fmt.Sprintf("file not found: %s", oldPath))
		}
		return err
	}
	if s.mode == ModeGitAware && s.git != nil {
		if _, err := s.git.Execute(ctx, []string{"add", "-A", "--", fullOld, fullNew}); err != nil {
			return fmt.Errorf("fileservice: git add after rename: %w", err)
		}
	}
	return nil
}

// MoveFile relocates a single file from oldPath to newPath, choosing how
// according to similarity: the caller-supplied ratio (see
// ContentSimilarity), comparing the file's content before this plan
// started touching it against its content at move time, decides whether
// this was effectively a pure rename or a rename bundled with enough of
// a rewrite that git shouldn't be told to track it as one.
//
// At or above RenameSimilarityThreshold, `git mv` performs the move
// itself - it does its own rename on disk plus stages it, so unlike the
// branch below, MoveFile never calls os.Rename directly in this case.
// Below the threshold, MoveFile does the physical move itself via
// os.Rename and stages the old path's removal and the new path's
// addition as two separate index operations, so git's own diff-time
// similarity detector (not this classification) decides whether to
// still render the result as a rename.
func (s *Service) MoveFile(ctx context.Context, oldPath, newPath string, similarity float64) error {
	fullOld, fullNew, err := s.prepareRename(oldPath, newPath)
	if err != nil {
		return err
	}

	if s.mode == ModeGitAware && s.git != nil && similarity >= RenameSimilarityThreshold {
		if _, err := s.git.Execute(ctx, []string{"mv", "--", fullOld, fullNew}); err != nil {
			return fmt.Errorf("fileservice: git mv: %w", err)
		}
		return nil
	}

	if err := os.Rename(fullOld, fullNew); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.KindNotFound, fmt.Sprintf("file not found: %s", oldPath))
		}
		return err
	}
	if s.mode != ModeGitAware || s.git == nil {
		return nil
	}
	if _, err := s.git.Execute(ctx, []string{"rm", "--cached", "--ignore-unmatch", "--", fullOld}); err != nil {
		return fmt.Errorf("fileservice: git rm after move: %w", err)
	}
	if _, err := s.git.Execute(ctx, []string{"add", "--", fullNew}); err != nil {
		return fmt.Errorf("fileservice: git add after move: %w", err)
	}
	return nil
}

// Root returns the absolute, cleaned workspace root this service is
// confined to.
func (s *Service) Root() string {
	return s.root
}

// Exists reports whether path resolves to a file within the workspace
// root that currently exists on disk. A path escaping the root reports
// false rather than propagating the sandbox violation, matching the
// boolean contract planner.FileReader expects.
func (s *Service) Exists(ctx context.Context, path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// ListFiles walks the workspace root and returns every regular file's
// path relative to it, skipping .git, used by the reference updater's
// plugin-scan fallback to find candidate importers when no LSP is
// available.
func (s *Service) ListFiles(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fileservice: listing files: %w", err)
	}
	return files, nil
}

// prepareRename resolves and validates a rename's endpoints: newPath
// must not already exist, and its parent directory is created if
// needed.
func (s *Service) prepareRename(oldPath, newPath string) (fullOld, fullNew string, err error) {
	fullOld, err = s.resolve(oldPath)
	if err != nil {
		return "", "", err
	}
	fullNew, err = s.resolve(newPath)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(fullNew); err == nil {
		return "", "", errors.New(errors.KindCollision, fmt.Sprintf("destination already exists: %s", newPath))
	}
	if err := os.MkdirAll(filepath.Dir(fullNew), DefaultDirMode); err != nil {
		return "", "", fmt.Errorf("fileservice: creating parent directories: %w", err)
	}
	return fullOld, fullNew, nil
}
