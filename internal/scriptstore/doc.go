// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scriptstore persists automation scripts keyed by batch number.
//
// Each batch number can hold a generated script, written fresh on every run, and a
// customized script saved by an operator. The store is a plain key-value text store;
// deciding which of the two to run is the caller's concern.
package scriptstore
