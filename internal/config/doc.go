// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads vaxtag settings from an optional YAML or HCL file.
//
// HCL files may reference environment variables through the env object, for example:
//
//	interpreter = "${env.PROGRAMFILES}/AutoHotkey/v2/AutoHotkey64.exe"
package config
