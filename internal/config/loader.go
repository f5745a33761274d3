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
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgekit/refactorctl/internal/telemetry"
)

// Load reads path as YAML into a Config seeded with DefaultConfig, so a
// file only needs to specify the keys it wants to override. A missing
// file is not an error - an unconfigured workspace runs on defaults -
// but a malformed one is. Recognized environment variables (LOG_LEVEL,
// LOG_FORMAT) are applied on top of the file afterward, per spec.md §6's
// "file load then override" order.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// no file at path: defaults stand.
		default:
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	ApplyEnvOverrides(&cfg)
	return &cfg, nil
}

// ApplyEnvOverrides layers LOG_LEVEL and LOG_FORMAT onto cfg.Logging.
// GODEBUG, the third override spec.md §6 names, needs no handling here:
// the Go runtime itself reads it at process start, before this package
// ever runs, so there's nothing left for Load to forward.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
}

// parseLevel maps a config-file/env level name onto telemetry.Level,
// defaulting to LevelInfo for anything unrecognized rather than
// rejecting the whole config over one bad field.
func parseLevel(name string) telemetry.Level {
	switch strings.ToLower(name) {
	case "debug":
		return telemetry.LevelDebug
	case "warn", "warning":
		return telemetry.LevelWarn
	case "error":
		return telemetry.LevelError
	default:
		return telemetry.LevelInfo
	}
}

// TelemetryConfig translates LoggingConfig into the telemetry.Config
// telemetry.New expects, tagging every entry with service.
func (c LoggingConfig) TelemetryConfig(service string) telemetry.Config {
	return telemetry.Config{
		Level:   parseLevel(c.Level),
		LogDir:  c.File,
		Service: service,
		JSON:    c.Format == LogFormatJSON || c.Format == "",
	}
}
