// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries run events from the orchestrator to whatever is watching it:
// the console prompt, the terminal UI or a test.
//
// Reporting never blocks the run. Reporters drop events they cannot deliver.
package progress
