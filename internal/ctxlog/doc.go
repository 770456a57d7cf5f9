// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// The default logger writes through PrettyHandler, which prints one line per record with
// the attributes rendered as indented JSON. The level comes from the VAXTAG_LOG_LEVEL
// environment variable and can be changed at runtime through LevelVar.
package ctxlog
