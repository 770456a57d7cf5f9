// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import "context"

// RunIDKey is the context key carrying the identifier of the active run.
type RunIDKey struct{}

// WithRunID returns a context carrying runID for components that report events.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey{}, runID)
}

// RunID returns the run identifier stored in ctx, or an empty string.
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey{}).(string); ok {
		return id
	}

	return ""
}
