// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package script decides which automation script a batch runs and produces its text.
//
// A batch runs its customized script when one has been saved, otherwise a script generated
// from the template. Customized scripts are never regenerated: the four parameter slots
// (village comment, batch count comment, tag list and village variable) are rewritten in
// place and every other line is left exactly as the operator wrote it.
package script
