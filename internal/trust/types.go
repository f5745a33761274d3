// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package trust classifies workspace paths into trust zones - external,
// internal, or privileged - by path pattern, function name, and
// receiver/type name. PlanExecutor consults a Classifier before
// applying a plan: touching a privileged-zone file without
// options.overwrite fails with a SandboxViolation error; with it, the
// plan applies and the result carries a warning naming those paths.
package trust

import (
	"fmt"
	"strings"

	"github.com/forgekit/refactorctl/internal/errors"
)

// TrustLevel classifies the trust zone of a path, function, or type.
// The zero value is TrustExternal; a Classifier assigns TrustInternal,
// not the zero value, to anything no pattern matches.
type TrustLevel int

const (
	// TrustExternal is untrusted input surface: HTTP handlers, CLI
	// entry points, anything reading directly from outside the process.
	TrustExternal TrustLevel = iota

	// TrustInternal is ordinary business logic, the default zone for
	// code that matches no pattern.
	TrustInternal

	// TrustPrivileged is admin/system code: migrations, credential
	// handling, anything PlanExecutor should hesitate before touching.
	TrustPrivileged
)

// String returns the zone's name as used in warnings and zone IDs.
func (t TrustLevel) String() string {
	switch t {
	case TrustExternal:
		return "external"
	case TrustInternal:
		return "internal"
	case TrustPrivileged:
		return "privileged"
	default:
		return "unknown"
	}
}

// PathPattern pairs a case-insensitive substring with the trust level
// it implies.
type PathPattern struct {
	Substring string
	Level     TrustLevel
}

// ZonePatterns is the ordered set of rules a Classifier checks, in
// priority order: path patterns first, then function-name patterns,
// then receiver/type-name patterns. Earlier entries take precedence
// when more than one pattern matches the same input.
type ZonePatterns struct {
	PathPatterns     []PathPattern
	FunctionPatterns []PathPattern
	ReceiverPatterns []PathPattern
}

// DefaultZonePatterns returns the built-in classification rules:
// handler/cmd/api paths are external surface, admin/migration/secret
// paths are privileged, everything else defaults to internal.
func DefaultZonePatterns() *ZonePatterns {
	return &ZonePatterns{
		PathPatterns: []PathPattern{
			{Substring: "/cmd/", Level: TrustExternal},
			{Substring: "/handlers/", Level: TrustExternal},
			{Substring: "/transport/", Level: TrustExternal},
			{Substring: "/api/", Level: TrustExternal},
			{Substring: "/admin/", Level: TrustPrivileged},
			{Substring: "/migrations/", Level: TrustPrivileged},
			{Substring: "/secrets/", Level: TrustPrivileged},
			{Substring: "/credentials/", Level: TrustPrivileged},
		},
		FunctionPatterns: []PathPattern{
			{Substring: "HandleHTTP", Level: TrustExternal},
			{Substring: "ServeHTTP", Level: TrustExternal},
			{Substring: "HandleRequest", Level: TrustExternal},
			{Substring: "AdminOnly", Level: TrustPrivileged},
			{Substring: "RequireRoot", Level: TrustPrivileged},
			{Substring: "RotateCredential", Level: TrustPrivileged},
		},
		ReceiverPatterns: []PathPattern{
			{Substring: "Handler", Level: TrustExternal},
			{Substring: "Controller", Level: TrustExternal},
			{Substring: "AdminService", Level: TrustPrivileged},
			{Substring: "CredentialStore", Level: TrustPrivileged},
		},
	}
}

func match(patterns []PathPattern, needle string) (TrustLevel, bool) {
	if needle == "" {
		return TrustInternal, false
	}
	lower := strings.ToLower(needle)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p.Substring)) {
			return p.Level, true
		}
	}
	return TrustInternal, false
}

// MatchPath reports the trust level a path pattern implies for path,
// if any pattern matched.
func (z *ZonePatterns) MatchPath(path string) (TrustLevel, bool) {
	return match(z.PathPatterns, path)
}

// MatchFunction reports the trust level a function-name pattern
// implies for name, if any pattern matched.
func (z *ZonePatterns) MatchFunction(name string) (TrustLevel, bool) {
	return match(z.FunctionPatterns, name)
}

// MatchReceiver reports the trust level a receiver/type-name pattern
// implies for receiver, if any pattern matched.
func (z *ZonePatterns) MatchReceiver(receiver string) (TrustLevel, bool) {
	return match(z.ReceiverPatterns, receiver)
}

// ZoneID is a stable, human-readable identifier for a (level, name) pair.
func ZoneID(level TrustLevel, name string) string {
	return fmt.Sprintf("%s:%s", level, name)
}

// ErrInvalidInput is the package's invalid-input error. No Classifier
// method returns it: an empty path classifies as TrustInternal.
var ErrInvalidInput = errors.New(errors.KindValidationFailed, "trust: invalid input")
