// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scripts

import (
	"bytes"
	"context"
	"testing"

	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/cmdstate"
	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const customText = `; AutoHotkey v2 Script for Vaccination Form Automation
; Batch 1 of 1 - 1 tags
; Village: Old
TagIDs := [
    "X1"
]
VillageName := "Old"
`

type harness struct {
	t   *testing.T
	fs  afero.Fs
	ctx context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fs := afero.NewMemMapFs()

	stubs := gostub.Stub(&scriptstore.FsFactory, func() afero.Fs { return fs })
	stubs.Stub(&cli.OsExiter, func(int) {})
	t.Cleanup(stubs.Reset)

	cfg := config.Default()
	cfg.ScriptsDir = "scripts"

	return &harness{t: t, fs: fs, ctx: cmdstate.WithConfig(context.Background(), cfg)}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	out := new(bytes.Buffer)
	root := &cli.Command{
		Name:           "vaxtag",
		Writer:         out,
		ErrWriter:      new(bytes.Buffer),
		Commands:       []*cli.Command{ScriptsCmd},
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := root.Run(h.ctx, append([]string{"vaxtag", "scripts"}, args...))

	return out.String(), err
}

func (h *harness) read(name string) string {
	h.t.Helper()

	data, err := afero.ReadFile(h.fs, "scripts/"+name)
	require.NoError(h.t, err)

	return string(data)
}

func TestScripts_Lifecycle(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "No scripts in scripts")

	out, err = h.run("generate", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "vaccination-batch-2.ahk")
	assert.Contains(t, h.read("vaccination-batch-2.ahk"), "; Batch 2 of 2 - ")

	require.NoError(t, afero.WriteFile(h.fs, "custom.ahk", []byte(customText), 0o644))

	_, err = h.run("save", "2", "custom.ahk")
	require.NoError(t, err)

	saved := h.read("modifiedScript-batch-2.ahk")
	assert.Contains(t, saved, "; MODIFIED SCRIPT - This script will be used for all future runs")
	assert.Contains(t, saved, `"X1"`)

	out, err = h.run("show", "2")
	require.NoError(t, err)
	assert.Equal(t, saved, out, "customized script shown before the generated one")

	out, err = h.run("show", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "; Batch 3 of 3 - ", "sample rendered when nothing is stored")

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "generated")
	assert.Contains(t, out, "customized")
	assert.Contains(t, out, "Old")

	out, err = h.run("delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 script(s) for batch 2")

	out, err = h.run("clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 script(s)")
}

func TestScripts_ShowGenerated(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, afero.WriteFile(h.fs, "scripts/vaccination-batch-1.ahk", []byte(customText), 0o644))

	out, err := h.run("show", "1")
	require.NoError(t, err)
	assert.Equal(t, customText, out)
}

func TestScripts_InvalidBatchNumber(t *testing.T) {
	h := newHarness(t)

	for _, arg := range []string{"0", "two"} {
		_, err := h.run("delete", arg)

		var exit cli.ExitCoder
		require.ErrorAs(t, err, &exit, arg)
		assert.Equal(t, 1, exit.ExitCode())
	}
}

func TestScripts_SaveMissingFile(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("save", "1", "nope.ahk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrReadScript.Error())
}
