// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrReadConfigFile is returned when the configuration file cannot be read.
	ErrReadConfigFile = errors.New("failed to read configuration file")
	// ErrParseConfigFile is returned when the configuration file cannot be decoded.
	ErrParseConfigFile = errors.New("failed to parse configuration file")
	// ErrUnsupportedFormat is returned for files that are neither YAML nor HCL.
	ErrUnsupportedFormat = errors.New("unsupported configuration file format, use .yaml, .yml or .hcl")
)

// DefaultFiles are looked up in the working directory when no file is given.
var DefaultFiles = []string{"vaxtag.yaml", "vaxtag.yml", "vaxtag.hcl"}

// fileConfig is the on-disk shape. Pointers distinguish unset values from zero values.
type fileConfig struct {
	Interpreter *string       `yaml:"interpreter" hcl:"interpreter,optional"`
	ScriptsDir  *string       `yaml:"scripts_dir" hcl:"scripts_dir,optional"`
	BatchSize   *int          `yaml:"batch_size" hcl:"batch_size,optional"`
	LogLevel    *string       `yaml:"log_level" hcl:"log_level,optional"`
	TUI         *bool         `yaml:"tui" hcl:"tui,optional"`
	Template    *fileTemplate `yaml:"template" hcl:"template,block"`
}

type fileTemplate struct {
	File string `yaml:"file" hcl:"file,optional"`
	URL  string `yaml:"url" hcl:"url,optional"`
}

// Load reads the settings from path and validates them.
// An empty path selects the first of DefaultFiles that exists, or the defaults when none does.
func Load(path string) (*Config, error) {
	fs := FsFactory()

	if path == "" {
		found, err := discover(fs)
		if err != nil {
			return nil, err
		}

		if found == "" {
			cfg := Default()
			return cfg, cfg.Validate()
		}

		path = found
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrReadConfigFile, path), err)
	}

	var f fileConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %s", ErrParseConfigFile, path), err)
		}
	case ".hcl":
		if err := hclsimple.Decode(path, data, evalContext(), &f); err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %s", ErrParseConfigFile, path), err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	cfg := Default()
	f.apply(cfg)
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func discover(fs afero.Fs) (string, error) {
	for _, name := range DefaultFiles {
		ok, err := afero.Exists(fs, name)
		if err != nil {
			return "", errors.Join(fmt.Errorf("%w: %s", ErrReadConfigFile, name), err)
		}

		if ok {
			return name, nil
		}
	}

	return "", nil
}

func (f *fileConfig) apply(cfg *Config) {
	if f.Interpreter != nil {
		cfg.Interpreter = *f.Interpreter
	}

	if f.ScriptsDir != nil {
		cfg.ScriptsDir = *f.ScriptsDir
	}

	if f.BatchSize != nil {
		cfg.BatchSize = *f.BatchSize
	}

	if f.LogLevel != nil {
		cfg.LogLevel = *f.LogLevel
	}

	if f.TUI != nil {
		cfg.TUI = *f.TUI
	}

	if f.Template != nil {
		cfg.Template = Template{
			File: f.Template.File,
			URL:  f.Template.URL,
		}
	}
}

// evalContext exposes the process environment to HCL expressions as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !hclsyntax.ValidIdentifier(name) {
			continue
		}

		vars[name] = cty.StringVal(value)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
