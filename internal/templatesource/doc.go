// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package templatesource loads the script template from the built-in copy, a local file,
// or any source supported by Hashicorp's go-getter.
package templatesource
