// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"

	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
)

// Watch consumes sigCh until ctx is done or sigCh is closed.
// The first signal of a given type calls stop, which should end the active run gracefully
// (the automation process is killed and the run reports itself as stopped).
// A second signal of the same type cancels the context.
func Watch(ctx context.Context, sigCh chan os.Signal, stop func(), cancel context.CancelFunc) {
	logger := ctxlog.Logger(ctx).With("component", "watchdog")
	seen := make(map[os.Signal]struct{})

	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return

		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				logger.Info("received second signal of type, forcefully terminating", "signal", sig.String())
				cancel()

				return
			}

			seen[sig] = struct{}{}

			logger.Info("received signal, stopping active run", "signal", sig.String())

			if stop != nil {
				stop()
			}
		}
	}
}
