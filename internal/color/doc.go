// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI color codes for console output.
//
// Color is enabled when stdout is a terminal, unless NO_COLOR is set.
// FORCE_COLOR enables color regardless of the terminal.
package color
