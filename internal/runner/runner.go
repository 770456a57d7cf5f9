// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
)

const (
	defaultTickerInterval = 10 * time.Second // Interval for the still running debug log
	maxLineSize           = 1024 * 1024
)

var (
	// ErrAlreadyRunning is returned when Run is called while a process is active.
	ErrAlreadyRunning = errors.New("an automation process is already running")
	// ErrCouldNotStartProcess is returned when the interpreter could not be started.
	ErrCouldNotStartProcess = errors.New("could not start automation process")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrNonZeroExit is returned when the interpreter exits with a code other than zero.
	ErrNonZeroExit = errors.New("automation process exited with non-zero code")
	// ErrKilled is returned when the process was killed before it exited on its own.
	ErrKilled = errors.New("automation process killed")
	// ErrInterpreterNotFound is returned when the configured interpreter cannot be found.
	ErrInterpreterNotFound = errors.New("automation interpreter not found")
)

// ExitError is returned when the interpreter exits unsuccessfully.
type ExitError struct {
	Batch int
	Code  int
}

// Error implements error.
func (e *ExitError) Error() string {
	return fmt.Sprintf("batch %d: %s: %d", e.Batch, ErrNonZeroExit, e.Code)
}

// Unwrap allows errors.Is(err, ErrNonZeroExit).
func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}

// ExitInfo describes a finished process.
type ExitInfo struct {
	Batch    int
	Code     int
	Duration time.Duration
}

// Runner owns the lifecycle of the interpreter process. At most one process runs at a time.
type Runner struct {
	reporter       progress.Reporter
	tickerInterval time.Duration

	mu     sync.Mutex
	busy   bool
	ps     *os.Process
	killed bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithReporter sends every output line of the process to reporter.
func WithReporter(reporter progress.Reporter) Option {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// WithTickerInterval sets how often a still running message is logged.
func WithTickerInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.tickerInterval = d
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		reporter:       progress.NewNullReporter(),
		tickerInterval: defaultTickerInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Locate resolves the interpreter executable, searching PATH when path has no separator.
func Locate(path string) (string, error) {
	full, err := exec.LookPath(path)
	if err != nil {
		return "", errors.Join(fmt.Errorf("%w: %s", ErrInterpreterNotFound, path), err)
	}

	return full, nil
}

// Run starts executable with scriptPath as its only argument and waits for it to exit.
// Cancelling ctx kills the process. A ctx that is already done starts nothing.
func (r *Runner) Run(ctx context.Context, executable, scriptPath string, batch int) (ExitInfo, error) {
	if err := r.acquire(); err != nil {
		return ExitInfo{Batch: batch, Code: -1}, err
	}
	defer r.release()

	logger := ctxlog.Logger(ctx).With("batch", batch)
	info := ExitInfo{Batch: batch, Code: -1}

	if ctx.Err() != nil {
		logger.Debug("context done, not starting process")
		return info, fmt.Errorf("batch %d: %w", batch, errors.Join(ErrKilled, context.Cause(ctx)))
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return info, errors.Join(ErrFailedToCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return info, errors.Join(ErrFailedToCreatePipe, err)
	}

	args := []string{filepath.Base(executable), scriptPath}

	logger.Debug("starting process", "path", executable, "script", scriptPath)

	ps, err := os.StartProcess(executable, args, &os.ProcAttr{
		Env:   os.Environ(),
		Files: []*os.File{nil, wOut, wErr},
	})

	// The child holds its own copies of the write ends.
	closeAll(wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		return info, errors.Join(ErrCouldNotStartProcess, err)
	}

	startTime := time.Now()

	if !r.attach(ps) {
		// Kill was requested between acquire and start.
		killPs(ctx, ps)
	}

	logger.Debug("process started", "pid", ps.Pid)

	var readers sync.WaitGroup

	readers.Add(2) //nolint:mnd
	go r.stream(ctx, &readers, rOut, batch, false)
	go r.stream(ctx, &readers, rErr, batch, true)

	done := make(chan struct{})
	watchdogDone := make(chan struct{})

	// watchdog for context cancellation
	go func() {
		defer close(watchdogDone)

		ticker := time.NewTicker(r.tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logger.Debug("process still running", "elapsed", time.Since(startTime).Round(time.Second))

			case <-ctx.Done():
				logger.Info("context done, killing process")
				r.markKilled()
				killPs(ctx, ps)

				return

			case <-done:
				return
			}
		}
	}()

	state, psErr := ps.Wait()
	info.Duration = time.Since(startTime)

	close(done)
	<-watchdogDone

	killed := r.detach()

	if killed {
		// Orphaned children of the interpreter may still hold the pipes open.
		closeAll(rOut, rErr)
	}

	readers.Wait()

	if !killed {
		closeAll(rOut, rErr)
	}

	if psErr != nil {
		return info, errors.Join(ErrCouldNotStartProcess, psErr)
	}

	info.Code = state.ExitCode()

	logger.Debug("process finished", "exitCode", info.Code, "duration", info.Duration)

	switch {
	case killed:
		return info, fmt.Errorf("batch %d: %w", batch, errors.Join(ErrKilled, context.Cause(ctx)))
	case info.Code != 0:
		return info, &ExitError{Batch: batch, Code: info.Code}
	}

	return info, nil
}

// Kill terminates the active process, if any. It is safe to call at any time.
func (r *Runner) Kill() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.busy {
		return
	}

	r.killed = true

	if r.ps != nil {
		killPs(context.Background(), r.ps)
	}
}

// Running reports whether a process is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.busy
}

func (r *Runner) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.busy {
		return ErrAlreadyRunning
	}

	r.busy = true
	r.killed = false

	return nil
}

func (r *Runner) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.busy = false
	r.ps = nil
}

// attach records the started process and reports false when a kill is already pending.
func (r *Runner) attach(ps *os.Process) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ps = ps

	return !r.killed
}

// detach forgets the process and reports whether it was killed.
func (r *Runner) detach() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ps = nil

	return r.killed
}

func (r *Runner) markKilled() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.killed = true
}

func (r *Runner) stream(ctx context.Context, wg *sync.WaitGroup, rd io.Reader, batch int, isStderr bool) {
	defer wg.Done()

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()

		ctxlog.Debug(ctx, "process output", "batch", batch, "stderr", isStderr, "line", line)

		r.reporter.Report(progress.Event{
			RunID:     progress.RunID(ctx),
			Type:      progress.EventOutput,
			Message:   line,
			Timestamp: time.Now(),
			Data: progress.EventData{
				Output: &progress.OutputLine{
					Batch:    batch,
					Line:     line,
					IsStderr: isStderr,
				},
			},
		})
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		ctxlog.Debug(ctx, "process output read error", "batch", batch, "error", err)
	}
}

// killPs kills the process, tolerating one that has already exited.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
