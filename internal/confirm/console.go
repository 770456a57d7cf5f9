// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package confirm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/vaxtag/internal/color"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/peterh/liner"
)

const (
	requestBufferSize = 4
	prompt            = "continue> "
)

// Prompter reads one line of operator input. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

var _ Prompter = (*liner.State)(nil)

// Controller is the run the console drives.
type Controller interface {
	Confirm() bool
	Stop() bool
}

// Decision is the operator's answer to a confirmation request.
type Decision int

const (
	// DecisionContinue runs the next batch.
	DecisionContinue Decision = iota
	// DecisionStop stops the run.
	DecisionStop
	// DecisionRetry means the input was not understood.
	DecisionRetry
)

// NewLinerPrompter returns a terminal prompter where Ctrl+C aborts the prompt.
func NewLinerPrompter() *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	return line
}

// Parse interprets one line of operator input.
func Parse(input string) Decision {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "y", "yes", "c", "continue":
		return DecisionContinue
	case "s", "stop", "q", "quit", "exit":
		return DecisionStop
	default:
		return DecisionRetry
	}
}

var _ progress.Listener = (*Console)(nil)

// Console prints progress events and turns confirmation requests into prompts.
type Console struct {
	prompter Prompter
	out      io.Writer
	verbose  bool

	mu       sync.Mutex
	requests chan progress.ConfirmationRequest
	done     chan struct{}
	doneOnce sync.Once
}

// NewConsole creates a Console writing to out. When verbose is set, interpreter output is printed.
func NewConsole(p Prompter, out io.Writer, verbose bool) *Console {
	return &Console{
		prompter: p,
		out:      out,
		verbose:  verbose,
		requests: make(chan progress.ConfirmationRequest, requestBufferSize),
		done:     make(chan struct{}),
	}
}

// OnEvent implements progress.Listener.
func (c *Console) OnEvent(e progress.Event) {
	switch e.Type {
	case progress.EventScriptSelected:
		kind := "generated"
		if e.Data.Script.Customized {
			kind = color.Colorize("customized", color.FgMagenta)
		}

		c.printf("Batch %d: using %s script %s\n", e.Data.Script.Batch, kind, e.Data.Script.Path)

	case progress.EventBatchStarted:
		c.printf("%s\n", color.Colorize(e.Message, color.Bold))

	case progress.EventOutput:
		if c.verbose {
			c.printf("  %s\n", color.Colorize(e.Data.Output.Line, color.Faint))
		}

	case progress.EventBatchProgress:
		p := e.Data.Progress
		c.printf("%s batch %d of %d (%d tags)\n", color.Colorize("✓", color.FgGreen), p.CurrentBatch, p.Total, p.TagsInCurrentBatch)

	case progress.EventConfirmationRequired:
		select {
		case c.requests <- *e.Data.Confirmation:
		default:
		}

	case progress.EventConfirmed:
		c.printf("%s\n", e.Message)

	case progress.EventCompleted:
		c.printf("%s\n", color.Colorize(e.Message, color.FgGreen, color.Bold))
		c.finish()

	case progress.EventStopped:
		c.printf("%s\n", color.Colorize(e.Message, color.FgYellow, color.Bold))
		c.finish()

	case progress.EventFailed:
		c.printf("%s %s\n", color.Colorize("Run failed:", color.FgRed, color.Bold), e.Message)
		c.finish()
	}
}

// Done is closed once a terminal event has been printed.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Run prompts for every confirmation request until the run ends or ctx is done.
func (c *Console) Run(ctx context.Context, ctl Controller) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.done:
			return nil
		case req := <-c.requests:
			c.printf("\nSubmit the form for batch %d of %d now (%d of %d tags entered).\n",
				req.BatchNumber, req.TotalBatches, req.CompletedTags, req.TotalTags)
			c.printf("Press Enter to run the next batch of %d tags, or type stop.\n", req.NextBatchSize)

			d, err := c.ask(ctx)
			if err != nil {
				return err
			}

			switch d {
			case DecisionContinue:
				if !ctl.Confirm() {
					ctxlog.Debug(ctx, "confirmation ignored, run no longer active")
				}
			case DecisionStop:
				ctl.Stop()
			}
		}
	}
}

type answer struct {
	line string
	err  error
}

// ask prompts until the input is understood, the prompt is aborted, or the run ends.
func (c *Console) ask(ctx context.Context) (Decision, error) {
	for {
		ch := make(chan answer, 1)

		go func() {
			line, err := c.prompter.Prompt(prompt)
			ch <- answer{line: line, err: err}
		}()

		var a answer

		select {
		case <-ctx.Done():
			return DecisionStop, nil
		case <-c.done:
			return DecisionStop, nil
		case a = <-ch:
		}

		switch {
		case errors.Is(a.err, liner.ErrPromptAborted), errors.Is(a.err, io.EOF):
			return DecisionStop, nil
		case a.err != nil:
			return DecisionStop, fmt.Errorf("reading confirmation: %w", a.err)
		}

		d := Parse(a.line)
		if d != DecisionRetry {
			return d, nil
		}

		c.printf("Unrecognised input %q. Press Enter to continue or type stop.\n", a.line)
	}
}

func (c *Console) finish() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, format, args...) //nolint:errcheck
}
