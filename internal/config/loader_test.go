// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgekit/refactorctl/internal/telemetry"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	require.False(t, cfg.Git.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refactorctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\ngit:\n  enabled: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.True(t, cfg.Git.Enabled)
	require.Equal(t, DefaultConfig().Cache.TTLSeconds, cfg.Cache.TTLSeconds)
}

func TestLoad_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refactorctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [this is not a mapping"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyEnvOverrides_LogLevelAndFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "Pretty")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)

	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, LogFormatPretty, cfg.Logging.Format)
}

func TestLoggingConfig_TelemetryConfigMapsLevelAndFormat(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: LogFormatPretty, File: "/tmp/logs"}
	tc := lc.TelemetryConfig("dispatcher")

	require.Equal(t, telemetry.LevelWarn, tc.Level)
	require.False(t, tc.JSON)
	require.Equal(t, "dispatcher", tc.Service)
	require.Equal(t, "/tmp/logs", tc.LogDir)
}
