// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scripts contains the commands that manage generated and customized batch scripts.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matt-FFFFFF/vaxtag/cmd/vaxtag/cmdstate"
	"github.com/matt-FFFFFF/vaxtag/internal/color"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/matt-FFFFFF/vaxtag/internal/templatesource"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	scriptsDirFlag = "scripts-dir"
	batchArg       = "batch"
	fileArg        = "file"
	timeFormat     = "2006-01-02 15:04"
)

var (
	// ErrBatchNumber is returned when the batch argument is not a positive integer.
	ErrBatchNumber = errors.New("batch number must be a positive integer")
	// ErrReadScript is returned when the file to save cannot be read.
	ErrReadScript = errors.New("failed to read script file")
)

// ScriptsCmd groups the script management commands.
var ScriptsCmd = &cli.Command{
	Name:  "scripts",
	Usage: "Manage generated and customized batch scripts",
	Description: `Scripts are stored per batch number. A customized script is used instead of the
generated one for its batch number in every later run, with only the tag list, village
and header lines rewritten.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      scriptsDirFlag,
			Usage:     "Directory holding generated and customized scripts",
			TakesFile: true,
			OnlyOnce:  true,
		},
	},
	Commands: []*cli.Command{
		listCmd,
		showCmd,
		saveCmd,
		generateCmd,
		deleteCmd,
		clearCmd,
		watchCmd,
	},
}

var listCmd = &cli.Command{
	Name:  "list",
	Usage: "List stored scripts with their village and tag count",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		store := storeFor(ctx, cmd)

		entries, err := store.List()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		if len(entries) == 0 {
			fmt.Fprintf(cmd.Writer, "No scripts in %s\n", store.Dir()) //nolint:errcheck
			return nil
		}

		rows := make([][]string, 0, len(entries))

		for _, e := range entries {
			text, err := store.Read(e.Key)
			if err != nil {
				ctxlog.Warn(ctx, "skipping unreadable script", "script", e.Name, "error", err)
				continue
			}

			h := script.Inspect(text)
			rows = append(rows, []string{
				strconv.Itoa(e.Key.Batch),
				e.Key.Kind.String(),
				h.Village,
				strconv.Itoa(h.Tags),
				e.ModTime.Format(timeFormat),
				e.Name,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("BATCH", "KIND", "VILLAGE", "TAGS", "MODIFIED", "FILE").
			Rows(rows...)

		fmt.Fprintln(cmd.Writer, t.Render()) //nolint:errcheck

		return nil
	},
}

var showCmd = &cli.Command{
	Name:      "show",
	Usage:     "Print the script a batch number would use",
	ArgsUsage: "BATCH",
	Description: `Show prints the customized script of the batch number if there is one, otherwise
the generated one. When neither exists a sample is rendered from the template.`,
	Arguments: []cli.Argument{
		&cli.StringArg{Name: batchArg},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		batch, err := batchNumber(cmd)
		if err != nil {
			return err
		}

		store := storeFor(ctx, cmd)

		src, err := script.NewResolver(store).Resolve(batch)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		text := src.Text

		switch {
		case src.IsCustomized():
			ctxlog.Info(ctx, "showing customized script", "path", store.Path(scriptstore.Customized(batch)))
		default:
			ok, err := store.Exists(scriptstore.Generated(batch))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if ok {
				if text, err = store.Read(scriptstore.Generated(batch)); err != nil {
					return cli.Exit(err.Error(), 1)
				}

				ctxlog.Info(ctx, "showing generated script", "path", store.Path(scriptstore.Generated(batch)))

				break
			}

			if text, err = sample(ctx, batch); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			ctxlog.Info(ctx, "no script stored for batch, showing a sample", "batch", batch)
		}

		fmt.Fprint(cmd.Writer, text) //nolint:errcheck

		return nil
	},
}

var saveCmd = &cli.Command{
	Name:      "save",
	Usage:     "Save a file as the customized script of a batch number",
	ArgsUsage: "BATCH FILE",
	Arguments: []cli.Argument{
		&cli.StringArg{Name: batchArg},
		&cli.StringArg{Name: fileArg},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		batch, err := batchNumber(cmd)
		if err != nil {
			return err
		}

		file := cmd.StringArg(fileArg)
		if file == "" {
			return cli.Exit("a script file is required", 1)
		}

		data, err := afero.ReadFile(scriptstore.FsFactory(), file)
		if err != nil {
			return cli.Exit(errors.Join(fmt.Errorf("%w: %s", ErrReadScript, file), err).Error(), 1)
		}

		store := storeFor(ctx, cmd)
		key := scriptstore.Customized(batch)

		if err := store.Write(key, script.MarkCustomized(string(data))); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintf(cmd.Writer, "%s saved %s\n", color.Colorize("✓", color.FgGreen), store.Path(key)) //nolint:errcheck

		return nil
	},
}

var generateCmd = &cli.Command{
	Name:      "generate",
	Usage:     "Write a fresh generated script for a batch number from sample data",
	ArgsUsage: "BATCH",
	Arguments: []cli.Argument{
		&cli.StringArg{Name: batchArg},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		batch, err := batchNumber(cmd)
		if err != nil {
			return err
		}

		text, err := sample(ctx, batch)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		store := storeFor(ctx, cmd)
		key := scriptstore.Generated(batch)

		if err := store.Write(key, text); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintf(cmd.Writer, "%s generated %s\n", color.Colorize("✓", color.FgGreen), store.Path(key)) //nolint:errcheck

		return nil
	},
}

var deleteCmd = &cli.Command{
	Name:      "delete",
	Usage:     "Delete the generated and customized scripts of a batch number",
	ArgsUsage: "BATCH",
	Arguments: []cli.Argument{
		&cli.StringArg{Name: batchArg},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		batch, err := batchNumber(cmd)
		if err != nil {
			return err
		}

		n, err := scriptstore.DeleteBatch(storeFor(ctx, cmd), batch)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintf(cmd.Writer, "Deleted %d script(s) for batch %d\n", n, batch) //nolint:errcheck

		return nil
	},
}

var clearCmd = &cli.Command{
	Name:  "clear",
	Usage: "Delete every stored script",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		n, err := scriptstore.Clear(storeFor(ctx, cmd))

		fmt.Fprintf(cmd.Writer, "Deleted %d script(s)\n", n) //nolint:errcheck

		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return nil
	},
}

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Print changes to the scripts directory until interrupted",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		dir := scriptsDir(ctx, cmd)

		w, err := scriptstore.NewWatcher(dir)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		release := cmdstate.ActiveRun(ctx).Set(cmdstate.StopFunc(cancel))
		defer release()

		go w.Run(ctx)

		fmt.Fprintf(cmd.Writer, "Watching %s, press Ctrl+C to stop\n", dir) //nolint:errcheck

		for c := range w.Changes() {
			fmt.Fprintf(cmd.Writer, "%s %-8s batch %d (%s)\n", //nolint:errcheck
				color.Colorize(c.Op.String(), color.FgCyan), c.Key.Kind, c.Key.Batch, c.Key.Name())
		}

		return nil
	},
}

func scriptsDir(ctx context.Context, cmd *cli.Command) string {
	if cmd.IsSet(scriptsDirFlag) {
		return cmd.String(scriptsDirFlag)
	}

	return cmdstate.Config(ctx).ScriptsDir
}

func storeFor(ctx context.Context, cmd *cli.Command) *scriptstore.FSStore {
	return scriptstore.New(nil, scriptsDir(ctx, cmd))
}

func batchNumber(cmd *cli.Command) (int, error) {
	s := cmd.StringArg(batchArg)

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, cli.Exit(fmt.Sprintf("%s: %q", ErrBatchNumber.Error(), s), 1)
	}

	return n, nil
}

// sample renders the configured template with placeholder data for batch.
func sample(ctx context.Context, batch int) (string, error) {
	gen, err := templatesource.Generator(ctx, cmdstate.Config(ctx).Template)
	if err != nil {
		return "", err
	}

	return gen.Render(script.SampleParams(batch))
}
