// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const shell = "/bin/sh"

type recorder struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recorder) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recorder) Close() {}

func (r *recorder) lines() []progress.OutputLine {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []progress.OutputLine

	for _, e := range r.events {
		if e.Type == progress.EventOutput {
			out = append(out, *e.Data.Output)
		}
	}

	return out
}

func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("runner tests use /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "batch.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestRun_Success(t *testing.T) {
	defer goleak.VerifyNone(t)

	script := writeScript(t, "echo hello\necho oops >&2\nexit 0\n")
	rec := &recorder{}
	r := New(WithReporter(rec))

	ctx := progress.WithRunID(context.Background(), "run-1")
	info, err := r.Run(ctx, shell, script, 2)
	require.NoError(t, err)

	assert.Equal(t, 0, info.Code)
	assert.Equal(t, 2, info.Batch)
	assert.False(t, r.Running())

	lines := rec.lines()
	assert.ElementsMatch(t, []progress.OutputLine{
		{Batch: 2, Line: "hello"},
		{Batch: 2, Line: "oops", IsStderr: true},
	}, lines)

	for _, e := range rec.events {
		assert.Equal(t, "run-1", e.RunID)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	script := writeScript(t, "exit 3\n")
	r := New()

	info, err := r.Run(context.Background(), shell, script, 4)
	require.ErrorIs(t, err, ErrNonZeroExit)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Batch)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, info.Code)
}

func TestRun_CouldNotStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := New()

	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), "x.ahk", 1)
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.False(t, r.Running())
}

func TestRun_ContextCancelKills(t *testing.T) {
	defer goleak.VerifyNone(t)

	script := writeScript(t, "exec sleep 10\n")
	r := New(WithTickerInterval(10 * time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, shell, script, 1)

	require.ErrorIs(t, err, ErrKilled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_CancelledContextStartsNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	marker := filepath.Join(t.TempDir(), "marker")
	script := writeScript(t, "touch '"+marker+"'\n")
	r := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, shell, script, 1)
	require.ErrorIs(t, err, ErrKilled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, marker)
	assert.False(t, r.Running())
}

func TestRun_KillAndSingleFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	script := writeScript(t, "exec sleep 10\n")
	r := New()

	errCh := make(chan error, 1)

	go func() {
		_, err := r.Run(context.Background(), shell, script, 1)
		errCh <- err
	}()

	require.Eventually(t, r.Running, 2*time.Second, 5*time.Millisecond)

	_, err := r.Run(context.Background(), shell, script, 2)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	r.Kill()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrKilled)
	case <-time.After(5 * time.Second):
		t.Fatal("process was not killed")
	}

	assert.False(t, r.Running())

	// Kill with nothing running is a no-op.
	r.Kill()
}

func TestLocate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh from PATH")
	}

	path, err := Locate("sh")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	_, err = Locate("definitely-not-an-automation-interpreter")
	assert.ErrorIs(t, err, ErrInterpreterNotFound)
}
