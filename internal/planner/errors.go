// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import "github.com/forgekit/refactorctl/internal/errors"

// ErrInvalidInput is returned when a planner is called with a nil
// context or a missing required field on its intent.
var ErrInvalidInput = errors.New(errors.KindValidationFailed, "planner: invalid input")

// ErrTargetNotFound is returned when the intent's primary target does
// not exist in the workspace.
var ErrTargetNotFound = errors.New(errors.KindNotFound, "planner: target not found")

// ErrNoPluginForFile is returned when no registered plugin claims the
// target's extension, so a planner has no way to compute primary edits.
var ErrNoPluginForFile = errors.New(errors.KindUnsupported, "planner: no plugin registered for file")
