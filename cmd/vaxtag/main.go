// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the vaxtag command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/vaxtag"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/check"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/cmdstate"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/run"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/scripts"
	"github.com/matt-FFFFFF/vaxtag/internal/color"
	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

const (
	configFlag   = "config"
	logLevelFlag = "log-level"
	noColorFlag  = "no-color"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		check.CheckCmd,
		scripts.ScriptsCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "vaxtag",
	Description: `Vaxtag registers vaccination tags on a web form by driving AutoHotkey in batches.
After each batch the run pauses so the form can be submitted by hand, then continues
with the next batch once confirmed. Batch scripts can be customized and are reused
by later runs.`,
	Usage:     "vaxtag run --tags tags.txt --village Kibera",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Read settings from this YAML or HCL file instead of ./vaxtag.yaml, ./vaxtag.yml or ./vaxtag.hcl",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:     logLevelFlag,
			Aliases:  []string{"l"},
			Usage:    "Set the log level (debug, info, warn, error). Overrides the configuration file.",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        noColorFlag,
			Usage:       "Disable colored output",
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Before: before,
}

// before loads the configuration and applies the log level before any subcommand runs.
func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool(noColorFlag) {
		color.SetEnabled(false)
	}

	cfg, err := config.Load(cmd.String(configFlag))
	if err != nil {
		ctxlog.Error(ctx, "failed to load configuration", "error", err)
		return ctx, cli.Exit(err.Error(), 1)
	}

	if lvl, ok := cfg.Level(); ok {
		ctxlog.LevelVar.Set(lvl)
	}

	if s := cmd.String(logLevelFlag); s != "" {
		lvl, ok := ctxlog.ParseLevel(s)
		if !ok {
			return ctx, cli.Exit(fmt.Sprintf("invalid log level %q", s), 1)
		}

		ctxlog.LevelVar.Set(lvl)
	}

	if cfg.Source != "" {
		ctxlog.Debug(ctx, "configuration loaded", "file", cfg.Source)
	}

	return cmdstate.WithConfig(ctx, cfg), nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	active := &cmdstate.Active{}
	ctx = cmdstate.WithActive(ctx, active)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, func() { active.Stop() }, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", vaxtag.Version, vaxtag.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
