// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads refactorctl's flat configuration schema: server
// binding/auth, git-aware mode, post-apply validation, cache sizing, and
// logging, each as a recognized top-level key.
package config

// AuthConfig is server.auth.*: JWT verification for the wire transports.
type AuthConfig struct {
	JWTSecret        string `yaml:"jwtSecret"`
	JWTExpirySeconds int    `yaml:"jwtExpirySeconds"`
	JWTIssuer        string `yaml:"jwtIssuer"`
	JWTAudience      string `yaml:"jwtAudience"`
}

// ServerConfig is server.*: transport binding and request limits.
type ServerConfig struct {
	Port       int        `yaml:"port"`
	Host       string     `yaml:"host"`
	MaxClients int        `yaml:"maxClients"`
	TimeoutMs  int        `yaml:"timeoutMs"`
	Auth       AuthConfig `yaml:"auth"`
}

// GitConfig is git.*: whether FileService runs in VCS-aware mode.
type GitConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ValidationOnFailure is the policy PostApplyValidator follows when a
// validation command fails.
type ValidationOnFailure string

const (
	OnFailureReport      ValidationOnFailure = "Report"
	OnFailureRollback    ValidationOnFailure = "Rollback"
	OnFailureInteractive ValidationOnFailure = "Interactive"
)

// ValidationConfig is validation.*: whether and how PostApplyValidator runs.
type ValidationConfig struct {
	Enabled        bool                `yaml:"enabled"`
	Command        string              `yaml:"command"`
	OnFailure      ValidationOnFailure `yaml:"onFailure"`
	TimeoutSeconds int                 `yaml:"timeoutSeconds"`
	WorkingDir     string              `yaml:"workingDir"`
	FailOnStderr   bool                `yaml:"failOnStderr"`
}

// CacheConfig is cache.*: AstCache sizing and eviction.
type CacheConfig struct {
	Enabled      bool  `yaml:"enabled"`
	TTLSeconds   int   `yaml:"ttlSeconds"`
	MaxSizeBytes int64 `yaml:"maxSizeBytes"`
}

// LogFormat selects telemetry's wire format.
type LogFormat string

const (
	LogFormatJSON   LogFormat = "Json"
	LogFormatPretty LogFormat = "Pretty"
)

// LoggingConfig is logging.*: internal/telemetry's Config, in the
// schema's terms.
type LoggingConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
	File   string    `yaml:"file,omitempty"`
}

// Config is the complete recognized configuration, flat at the top
// level per spec.md §6 ("server.port", "git.enabled", etc. - no nested
// profiles or environments).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Git        GitConfig        `yaml:"git"`
	Validation ValidationConfig `yaml:"validation"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns the configuration a fresh, unconfigured
// workspace runs with: no auth, git-aware mode off (safest default for
// a directory that might not be a git repository), validation off,
// a modest cache, and info-level JSON logging to stderr.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:       8765,
			Host:       "127.0.0.1",
			MaxClients: 32,
			TimeoutMs:  30_000,
		},
		Git: GitConfig{Enabled: false},
		Validation: ValidationConfig{
			Enabled:        false,
			OnFailure:      OnFailureReport,
			TimeoutSeconds: 60,
		},
		Cache: CacheConfig{
			Enabled:      true,
			TTLSeconds:   3600,
			MaxSizeBytes: 256 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: LogFormatJSON,
		},
	}
}
