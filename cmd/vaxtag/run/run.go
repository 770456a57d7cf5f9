// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the command that registers a list of tags in batches.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/cmdstate"
	"github.com/matt-FFFFFF/vaxtag/internal/batcher"
	"github.com/matt-FFFFFF/vaxtag/internal/config"
	"github.com/matt-FFFFFF/vaxtag/internal/confirm"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/orchestrator"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/matt-FFFFFF/vaxtag/internal/templatesource"
	"github.com/matt-FFFFFF/vaxtag/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const (
	tagsFlag        = "tags"
	villageFlag     = "village"
	tuiFlag         = "tui"
	interpreterFlag = "interpreter"
	scriptsDirFlag  = "scripts-dir"
	batchSizeFlag   = "batch-size"
	verboseFlag     = "verbose"
	stdinName       = "-"
	eventBufferSize = 1024
)

var (
	// ErrReadTags is returned when the tag list cannot be read.
	ErrReadTags = errors.New("failed to read tag list")
	// ErrNoTags is returned when the tag list holds no tags.
	ErrNoTags = errors.New("the tag list is empty")
	// ErrStdinConflict is returned when tags are piped in but the confirmation prompt also needs standard input.
	ErrStdinConflict = errors.New("tags read from a non-interactive standard input need --tui for confirmations")
)

// FsFactory returns the filesystem tag files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// newPrompter returns the prompter used for confirmations without the TUI.
var newPrompter = func() confirm.Prompter {
	return confirm.NewLinerPrompter()
}

// stdinIsTerminal reports whether standard input is attached to a terminal.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// RunCmd is the command that registers tags in batches.
var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "Register a list of tags in batches",
	Description: `Run splits the tag list into batches and runs one AutoHotkey script per batch.
After every batch except the last, the run pauses until you have submitted the form
and confirmed. Press Enter to continue or type stop to end the run.

Tags are read from a file, or from standard input when the file is "-". Tags are
separated by new lines or commas; blank entries are ignored.

A customized script for a batch number is used in preference to the generated one.
`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      tagsFlag,
			Aliases:   []string{"t"},
			Usage:     "File holding the tags to register, or - for standard input",
			Required:  true,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:     villageFlag,
			Usage:    "Village selected on the form",
			Required: true,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"interactive"},
			Usage:       "Run with interactive Terminal User Interface (TUI) showing real-time progress",
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:      interpreterFlag,
			Usage:     "Path or name of the AutoHotkey v2 interpreter",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      scriptsDirFlag,
			Usage:     "Directory holding generated and customized scripts",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:     batchSizeFlag,
			Usage:    "Number of tags entered by each script",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        verboseFlag,
			Aliases:     []string{"v"},
			Usage:       "Print interpreter output",
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	cfg := settings(ctx, cmd)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	tagsPath := cmd.String(tagsFlag)
	fromStdin := tagsPath == stdinName

	if fromStdin && !cfg.TUI && !stdinIsTerminal() {
		return cli.Exit(ErrStdinConflict.Error(), 1)
	}

	items, err := readTags(FsFactory(), tagsPath, cmd.Reader)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	village := cmd.String(villageFlag)
	if err := script.ValidateVillage(village); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	plan, err := batcher.Split(items, cfg.BatchSize)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	gen, err := templatesource.Generator(ctx, cfg.Template)
	if err != nil {
		logger.Error("failed to load script template", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	rep := progress.NewChannelReporter(ctx, eventBufferSize)
	o := orchestrator.New(orchestrator.Options{
		Store:       scriptstore.New(nil, cfg.ScriptsDir),
		Generator:   gen,
		Reporter:    rep,
		BatchSize:   cfg.BatchSize,
		Interpreter: cfg.Interpreter,
	})

	release := cmdstate.ActiveRun(ctx).Set(o)
	defer release()

	req := orchestrator.Request{Items: items, Village: village}

	var res orchestrator.Result

	switch cfg.TUI {
	case true:
		logger.Info("Starting interactive TUI mode...")

		info := tui.RunInfo{Village: village, TotalBatches: plan.Len(), TotalTags: plan.TotalItems()}
		res, err = runTUI(ctx, cmd.Writer, o, rep, req, info, cfg.ScriptsDir, fromStdin)
	default:
		res, err = runConsole(ctx, cmd.Writer, o, rep, req, cmd.Bool(verboseFlag))
	}

	return exitFor(ctx, res, err)
}

// settings applies the command line overrides to the loaded configuration.
func settings(ctx context.Context, cmd *cli.Command) *config.Config {
	cfg := *cmdstate.Config(ctx)

	if cmd.IsSet(interpreterFlag) {
		cfg.Interpreter = cmd.String(interpreterFlag)
	}

	if cmd.IsSet(scriptsDirFlag) {
		cfg.ScriptsDir = cmd.String(scriptsDirFlag)
	}

	if cmd.IsSet(batchSizeFlag) {
		cfg.BatchSize = cmd.Int(batchSizeFlag)
	}

	if cmd.IsSet(tuiFlag) {
		cfg.TUI = cmd.Bool(tuiFlag)
	}

	return &cfg
}

// readTags reads the cleaned tag list from path, or from stdin when path is "-".
func readTags(fs afero.Fs, path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin

	if path != stdinName {
		f, err := fs.Open(path)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("%w: %s", ErrReadTags, path), err)
		}
		defer f.Close() //nolint:errcheck

		r = f
	}

	if r == nil {
		r = os.Stdin
	}

	items, err := batcher.ParseItems(r)
	if err != nil {
		return nil, errors.Join(ErrReadTags, err)
	}

	items = batcher.Clean(items)
	if len(items) == 0 {
		return nil, ErrNoTags
	}

	return items, nil
}

// runConsole pairs the run with the line prompt until both have finished.
func runConsole(
	ctx context.Context,
	out io.Writer,
	o *orchestrator.Orchestrator,
	rep *progress.ChannelReporter,
	req orchestrator.Request,
	verbose bool,
) (orchestrator.Result, error) {
	p := newPrompter()
	defer p.Close() //nolint:errcheck

	console := confirm.NewConsole(p, out, verbose)
	rep.Listen(console)

	promptCtx, stopPrompt := context.WithCancel(ctx)
	defer stopPrompt()

	var res orchestrator.Result

	g := new(errgroup.Group)

	g.Go(func() error {
		defer stopPrompt()
		defer rep.Close()

		var err error

		res, err = o.Start(ctx, req)

		return err
	})

	g.Go(func() error {
		if err := console.Run(promptCtx, o); err != nil {
			o.Stop()
			return err
		}

		return nil
	})

	err := g.Wait()

	return res, err
}

// runTUI shows the run in the terminal interface, with notices for customized scripts saved meanwhile.
func runTUI(
	ctx context.Context,
	out io.Writer,
	o *orchestrator.Orchestrator,
	rep *progress.ChannelReporter,
	req orchestrator.Request,
	info tui.RunInfo,
	scriptsDir string,
	fromStdin bool,
) (orchestrator.Result, error) {
	// Log output is buffered while the TUI owns the screen.
	buf := new(bytes.Buffer)
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	defer buf.WriteTo(out) //nolint:errcheck

	var opts []tea.ProgramOption
	if fromStdin {
		opts = append(opts, tea.WithInputTTY())
	}

	tr := tui.NewRunner(tuiCtx, o, info, opts...)
	rep.Listen(progress.ListenerFunc(tr.Reporter().Report))

	g, gctx := errgroup.WithContext(tuiCtx)
	watchCtx, stopWatch := context.WithCancel(gctx)

	defer stopWatch()

	w, err := scriptstore.NewWatcher(scriptsDir)
	if err != nil {
		ctxlog.Warn(tuiCtx, "not watching scripts directory", "error", err)
	} else {
		tr.WatchScripts(w.Changes())

		g.Go(func() error {
			w.Run(watchCtx)
			return nil
		})
	}

	var res orchestrator.Result

	g.Go(func() error {
		defer stopWatch()

		return tr.Run(gctx, func(ctx context.Context) error {
			defer rep.Close()

			var err error

			res, err = o.Start(ctx, req)

			return err
		})
	})

	err = g.Wait()

	return res, err
}

// exitFor converts the result of a run into the command's exit status.
func exitFor(ctx context.Context, res orchestrator.Result, err error) error {
	logger := ctxlog.Logger(ctx)

	if err != nil {
		var verr *orchestrator.ValidationError
		if errors.As(err, &verr) {
			logger.Error("run rejected", "error", verr.Err)
			return cli.Exit(verr.Error(), 1)
		}

		logger.Error("run failed", "error", err, "completedBatches", res.CompletedBatches, "totalBatches", res.TotalBatches)

		return cli.Exit(err.Error(), 1)
	}

	switch res.Outcome {
	case orchestrator.OutcomeStopped:
		logger.Warn("run stopped", "runID", res.RunID, "completedBatches", res.CompletedBatches, "totalBatches", res.TotalBatches)
	default:
		logger.Info("run completed", "runID", res.RunID, "batches", res.TotalBatches, "tags", res.TotalTags,
			"customizedBatches", res.CustomizedBatches)
	}

	return nil
}
