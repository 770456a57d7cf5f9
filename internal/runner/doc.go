// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner starts the automation interpreter for one batch script, streams its output
// and waits for it to exit.
package runner
