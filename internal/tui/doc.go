// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a terminal user interface for a vaxtag run. It shows the state of each
// batch with the last line of interpreter output, an overall progress bar, and the manual
// submission prompt between batches.
//
// Keys: enter confirms the manual submission, s stops the run, q quits once the run has ended.
package tui
