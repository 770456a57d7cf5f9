// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scriptstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
)

// ErrWatcherFailed is returned when the filesystem watcher cannot be started.
var ErrWatcherFailed = errors.New("failed to initialize script directory watcher")

// ChangeOp describes what happened to a script file.
type ChangeOp int

const (
	// ChangeWritten means the script was created or its content changed.
	ChangeWritten ChangeOp = iota
	// ChangeRemoved means the script was deleted or renamed away.
	ChangeRemoved
)

// String implements the Stringer interface for ChangeOp.
func (op ChangeOp) String() string {
	switch op {
	case ChangeWritten:
		return "written"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is a script file change observed on disk.
type Change struct {
	Key Key
	Op  ChangeOp
}

// Watcher reports changes to script files made outside of vaxtag, for example an operator
// editing a customized script in their editor while a run is paused.
// It watches the real operating system filesystem only.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	changes chan Change
}

// NewWatcher creates a watcher for the scripts directory, creating the directory if needed.
func NewWatcher(dir string) (*Watcher, error) {
	if err := os.MkdirAll(dir, sevenFiveFive); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		dir:     dir,
		watcher: w,
		changes: make(chan Change, 16),
	}, nil
}

// Changes returns the channel of observed changes. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run forwards filesystem events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	logger := ctxlog.Logger(ctx).With("component", "scriptWatcher", "dir", w.dir)

	defer close(w.changes)
	defer w.watcher.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			change, ok := toChange(ev)
			if !ok {
				continue
			}

			logger.Debug("script changed on disk", "script", change.Key.String(), "op", change.Op.String())

			select {
			case w.changes <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			logger.Warn("script watcher error", "error", err)
		}
	}
}

func toChange(ev fsnotify.Event) (Change, bool) {
	key, ok := ParseName(filepath.Base(ev.Name))
	if !ok {
		return Change{}, false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Key: key, Op: ChangeRemoved}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return Change{Key: key, Op: ChangeWritten}, true
	default:
		return Change{}, false
	}
}
