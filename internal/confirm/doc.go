// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package confirm is the line-based operator console for headless runs.
// It prints run progress and asks the operator to confirm each manual form submission.
package confirm
