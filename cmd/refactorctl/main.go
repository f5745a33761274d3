// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command refactorctl starts the tool-call server a JSON-RPC client
// (over HTTP or WebSocket) talks to for code-editing operations -
// rename, move, delete, extract, inline, find/replace, inspect, and
// search - against the single workspace root given by --workspace.
package main

import (
	"log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("refactorctl: %v", err)
	}
}
