// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package trust

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/types"
)

func TestClassifyPath_MatchesKnownZones(t *testing.T) {
	c := NewClassifier(nil)
	require.Equal(t, TrustExternal, c.ClassifyPath("internal/handlers/login.go"))
	require.Equal(t, TrustPrivileged, c.ClassifyPath("internal/admin/reset.go"))
	require.Equal(t, TrustInternal, c.ClassifyPath("internal/domain/order.go"))
}

func TestClassifySymbol_FallsBackToReceiver(t *testing.T) {
	c := NewClassifier(nil)
	sym := &types.Symbol{FilePath: "internal/domain/service.go", Name: "Update", Receiver: "AdminService"}
	require.Equal(t, TrustPrivileged, c.ClassifySymbol(sym))
}

func TestClassifySymbol_NilIsInternal(t *testing.T) {
	c := NewClassifier(nil)
	require.Equal(t, TrustInternal, c.ClassifySymbol(nil))
}

func TestPrivilegedPaths_FiltersNonPrivileged(t *testing.T) {
	c := NewClassifier(nil)
	got := c.PrivilegedPaths([]string{
		"internal/admin/reset.go",
		"internal/domain/order.go",
		"internal/secrets/vault.go",
	})
	require.ElementsMatch(t, []string{"internal/admin/reset.go", "internal/secrets/vault.go"}, got)
}

func TestZoneName_UsesLastTwoSegments(t *testing.T) {
	require.Equal(t, "internal_admin", ZoneName("internal/admin/reset.go"))
	require.Equal(t, "default", ZoneName("reset.go"))
}
