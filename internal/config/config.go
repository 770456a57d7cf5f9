// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/vaxtag/internal/batcher"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
)

const (
	// DefaultInterpreter is the AutoHotkey v2 executable name looked up on PATH.
	DefaultInterpreter = "AutoHotkey64.exe"
	// DefaultScriptsDir is where batch scripts are written.
	DefaultScriptsDir = "scripts"
)

var (
	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInterpreterRequired is returned when no interpreter is configured.
	ErrInterpreterRequired = errors.New("interpreter must not be empty")
	// ErrScriptsDirRequired is returned when no scripts directory is configured.
	ErrScriptsDirRequired = errors.New("scripts_dir must not be empty")
	// ErrBatchSize is returned when the batch size is not positive.
	ErrBatchSize = errors.New("batch_size must be greater than zero")
	// ErrLogLevel is returned for an unknown log level.
	ErrLogLevel = errors.New("log_level must be one of DEBUG, INFO, WARN, ERROR")
	// ErrTemplateConflict is returned when both a template file and URL are set.
	ErrTemplateConflict = errors.New("template file and url are mutually exclusive")
)

// Template selects the script template. When both fields are empty the built-in template is used.
type Template struct {
	File string // Local path to a text/template file
	URL  string // go-getter source of a template file
}

// Config holds the resolved settings.
type Config struct {
	Interpreter string
	ScriptsDir  string
	BatchSize   int
	LogLevel    string // Empty keeps the level from the environment
	Template    Template
	TUI         bool
	Source      string // File the settings were read from, empty for defaults
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Interpreter: DefaultInterpreter,
		ScriptsDir:  DefaultScriptsDir,
		BatchSize:   batcher.DefaultSize,
	}
}

// Validate reports every problem with the settings.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Interpreter == "" {
		result = multierror.Append(result, ErrInterpreterRequired)
	}

	if c.ScriptsDir == "" {
		result = multierror.Append(result, ErrScriptsDirRequired)
	}

	if c.BatchSize < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrBatchSize, c.BatchSize))
	}

	if c.LogLevel != "" {
		if _, ok := ctxlog.ParseLevel(c.LogLevel); !ok {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrLogLevel, c.LogLevel))
		}
	}

	if c.Template.File != "" && c.Template.URL != "" {
		result = multierror.Append(result, ErrTemplateConflict)
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Level returns the configured log level and whether one was set.
func (c *Config) Level() (slog.Level, bool) {
	if c.LogLevel == "" {
		return slog.LevelWarn, false
	}

	return ctxlog.ParseLevel(c.LogLevel)
}
