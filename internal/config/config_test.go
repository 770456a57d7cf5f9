// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stub := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stub.Reset)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	stubFs(t, nil)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "AutoHotkey64.exe", cfg.Interpreter)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Empty(t, cfg.Source)
}

func TestLoad_YAML(t *testing.T) {
	stubFs(t, map[string]string{
		"vaxtag.yaml": `
interpreter: 'C:\Program Files\AutoHotkey\v2\AutoHotkey64.exe'
scripts_dir: ./out
batch_size: 10
log_level: debug
tui: true
template:
  url: "git::https://example.com/templates.git//form.ahk.tmpl?ref=v1"
`,
	})

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Interpreter: `C:\Program Files\AutoHotkey\v2\AutoHotkey64.exe`,
		ScriptsDir:  "./out",
		BatchSize:   10,
		LogLevel:    "debug",
		TUI:         true,
		Template:    Template{URL: "git::https://example.com/templates.git//form.ahk.tmpl?ref=v1"},
		Source:      "vaxtag.yaml",
	}, cfg)
}

func TestLoad_YAMLPartialKeepsDefaults(t *testing.T) {
	stubFs(t, map[string]string{"custom.yml": "batch_size: 5\n"})

	cfg, err := Load("custom.yml")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, DefaultInterpreter, cfg.Interpreter)
	assert.Equal(t, DefaultScriptsDir, cfg.ScriptsDir)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	stubFs(t, map[string]string{"vaxtag.yaml": "batchsize: 5\n"})

	_, err := Load("vaxtag.yaml")
	assert.ErrorIs(t, err, ErrParseConfigFile)
}

func TestLoad_HCLWithEnv(t *testing.T) {
	t.Setenv("VAXTAG_TEST_AHK_DIR", "/opt/ahk")

	stubFs(t, map[string]string{
		"vaxtag.hcl": `
interpreter = "${env.VAXTAG_TEST_AHK_DIR}/AutoHotkey64.exe"
batch_size  = 20

template {
  file = "form.ahk.tmpl"
}
`,
	})

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/opt/ahk/AutoHotkey64.exe", cfg.Interpreter)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, Template{File: "form.ahk.tmpl"}, cfg.Template)
	assert.Equal(t, DefaultScriptsDir, cfg.ScriptsDir)
	assert.Equal(t, "vaxtag.hcl", cfg.Source)
}

func TestLoad_HCLSyntaxError(t *testing.T) {
	stubFs(t, map[string]string{"vaxtag.hcl": "interpreter = \n"})

	_, err := Load("vaxtag.hcl")
	assert.ErrorIs(t, err, ErrParseConfigFile)
}

func TestLoad_Errors(t *testing.T) {
	stubFs(t, map[string]string{"vaxtag.toml": "x = 1"})

	_, err := Load("vaxtag.toml")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load("missing.yaml")
	assert.ErrorIs(t, err, ErrReadConfigFile)
}

func TestValidate_AggregatesProblems(t *testing.T) {
	cfg := &Config{
		BatchSize: 0,
		LogLevel:  "loud",
		Template:  Template{File: "a", URL: "b"},
	}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)

	for _, want := range []error{ErrInterpreterRequired, ErrScriptsDirRequired, ErrBatchSize, ErrLogLevel, ErrTemplateConflict} {
		assert.ErrorIs(t, err, want)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	stubFs(t, map[string]string{"vaxtag.yaml": "batch_size: -1\ninterpreter: \"\"\n"})

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrBatchSize)
	assert.ErrorIs(t, err, ErrInterpreterRequired)
}

func TestConfig_Level(t *testing.T) {
	_, ok := Default().Level()
	assert.False(t, ok)

	lvl, ok := (&Config{LogLevel: "error"}).Level()
	assert.True(t, ok)
	assert.Equal(t, "ERROR", lvl.String())
}
