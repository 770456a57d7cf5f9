// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batcher splits an ordered list of work items (tag IDs) into fixed-size batches.
//
// Splitting is pure and order preserving: no items are reordered, removed or de-duplicated.
// The package also parses free-form tag input, one tag per line, into work items.
package batcher
