// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
)

var _ progress.Reporter = (*Reporter)(nil)

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a reporter sending events to program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(EventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// Runner manages the TUI program for one run.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	ctl      Controller
	changes  <-chan scriptstore.Change
}

// NewRunner creates a TUI runner for a run driven through ctl.
func NewRunner(ctx context.Context, ctl Controller, info RunInfo, opts ...tea.ProgramOption) *Runner {
	model := NewModel(ctx, ctl, info)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewReporter(program),
		ctl:      ctl,
	}
}

// Reporter returns the progress reporter feeding this TUI.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// WatchScripts shows changes to customized scripts received from changes.
func (r *Runner) WatchScripts(changes <-chan scriptstore.Change) {
	r.changes = changes
}

// Run starts the TUI and calls run, which must block until the orchestrated run ends.
// The TUI stays open after the run so the operator can read the result; Run returns once they quit.
func (r *Runner) Run(ctx context.Context, run func(ctx context.Context) error) error {
	runDone := make(chan error, 1)

	go func() {
		runDone <- run(ctx)
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	stopForward := make(chan struct{})
	defer close(stopForward)

	if r.changes != nil {
		go r.forwardChanges(stopForward)
	}

	var runErr, tuiErr error

	select {
	case runErr = <-runDone:
		r.program.Send(RunFinishedMsg{Err: runErr})
		tuiErr = <-tuiDone

	case tuiErr = <-tuiDone:
		// The program ended before the run, for example on a cancelled context.
		r.ctl.Stop()
		runErr = <-runDone
	}

	r.reporter.Close()

	if runErr != nil {
		return runErr
	}

	if tuiErr != nil && ctx.Err() == nil {
		return tuiErr
	}

	return nil
}

func (r *Runner) forwardChanges(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case c, ok := <-r.changes:
			if !ok {
				return
			}

			r.program.Send(ScriptChangedMsg{Change: c})
		}
	}
}
