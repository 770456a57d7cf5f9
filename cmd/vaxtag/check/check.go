// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check contains the command that verifies the automation interpreter can be found.
package check

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/cmdstate"
	"github.com/matt-FFFFFF/vaxtag/internal/color"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/runner"
	"github.com/urfave/cli/v3"
)

const interpreterFlag = "interpreter"

// locate is replaced in tests.
var locate = runner.Locate

// CheckCmd is the command that reports whether the interpreter is available.
var CheckCmd = &cli.Command{
	Name:  "check",
	Usage: "Check that the AutoHotkey interpreter can be found",
	Description: `Check looks up the configured AutoHotkey v2 interpreter, searching PATH when it is
given by name. It exits with status 1 when the interpreter cannot be found.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      interpreterFlag,
			Usage:     "Path or name of the AutoHotkey v2 interpreter",
			TakesFile: true,
			OnlyOnce:  true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		interpreter := cmdstate.Config(ctx).Interpreter
		if cmd.IsSet(interpreterFlag) {
			interpreter = cmd.String(interpreterFlag)
		}

		path, err := locate(interpreter)
		if err != nil {
			ctxlog.Error(ctx, "interpreter not found", "interpreter", interpreter, "error", err)
			return cli.Exit(fmt.Sprintf("%s %s", color.Colorize("✗", color.FgRed), err.Error()), 1)
		}

		fmt.Fprintf(cmd.Writer, "%s %s\n", color.Colorize("✓", color.FgGreen), path) //nolint:errcheck

		return nil
	},
}
