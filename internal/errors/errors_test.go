// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoreError_Error(t *testing.T) {
	base := New(KindNotFound, "symbol not found")
	require.Contains(t, base.Error(), "NotFound")
	require.Contains(t, base.Error(), "symbol not found")

	withPath := base.WithPath("a.go")
	require.Contains(t, withPath.Error(), "a.go")

	withPlugin := withPath.WithPlugin("golang")
	require.Contains(t, withPlugin.Error(), "golang")
	require.Contains(t, withPlugin.Error(), "a.go")
}

func TestWrap_NilIsNil(t *testing.T) {
	require.Nil(t, Wrap(KindInternal, nil))
}

func TestKindOf(t *testing.T) {
	ce := New(KindPreconditionFailed, "checksum mismatch")
	require.Equal(t, KindPreconditionFailed, KindOf(ce))

	wrapped := errors.New("some opaque failure")
	require.Equal(t, KindInternal, KindOf(wrapped))
}

func TestIs(t *testing.T) {
	ce := New(KindCollision, "destination exists")
	require.True(t, Is(ce, KindCollision))
	require.False(t, Is(ce, KindNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	ce := Wrap(KindInternal, cause)
	require.ErrorIs(t, ce, cause)
}

func TestWireCode_EveryKindHasAStableNonDefaultCode(t *testing.T) {
	kinds := []Kind{
		KindInvalidRequest, KindNotFound, KindUnsupported, KindPreconditionFailed,
		KindCollision, KindWouldCreateCycle, KindSandboxViolation, KindTimeout,
		KindValidationFailed, KindInternal, KindCancelled, KindUnknownTool,
	}
	seen := map[int]Kind{}
	for _, k := range kinds {
		code := WireCode(k)
		if k != KindInternal {
			require.NotEqualf(t, -32603, code, "%s should not fall back to the default Internal code", k)
		}
		if existing, ok := seen[code]; ok {
			t.Fatalf("kinds %s and %s collide on wire code %d", existing, k, code)
		}
		seen[code] = k
	}
}

func TestWireCode_UnknownKindFallsBackToInternal(t *testing.T) {
	require.Equal(t, -32603, WireCode(Kind("SomethingNew")))
}
