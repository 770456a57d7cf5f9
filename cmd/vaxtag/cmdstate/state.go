// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate carries state shared between the root command and its subcommands.
// The root command loads the configuration before any subcommand runs, and the signal
// handler in main needs a way to reach whichever run is active.
package cmdstate

import (
	"context"
	"sync"

	"github.com/matt-FFFFFF/vaxtag/internal/config"
)

type configKey struct{}

type activeKey struct{}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// Config returns the configuration stored in ctx, or the defaults.
func Config(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}

	return config.Default()
}

// Stopper ends a run gracefully.
type Stopper interface {
	Stop() bool
}

// StopFunc adapts a function to a Stopper.
type StopFunc func()

// Stop calls f.
func (f StopFunc) Stop() bool {
	f()
	return true
}

// Active holds the run that a termination signal should stop.
type Active struct {
	mu      sync.Mutex
	stopper Stopper
	gen     uint64
}

// Set registers s as the active run. The returned function clears it again
// unless another run has been registered since.
func (a *Active) Set(s Stopper) func() {
	a.mu.Lock()
	a.gen++
	a.stopper = s
	gen := a.gen
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.gen == gen {
			a.stopper = nil
		}
	}
}

// Stop stops the active run, if any, and reports whether there was one.
func (a *Active) Stop() bool {
	a.mu.Lock()
	s := a.stopper
	a.mu.Unlock()

	if s == nil {
		return false
	}

	return s.Stop()
}

// WithActive returns a context carrying a.
func WithActive(ctx context.Context, a *Active) context.Context {
	return context.WithValue(ctx, activeKey{}, a)
}

// ActiveRun returns the Active stored in ctx. A fresh one is returned when none is set.
func ActiveRun(ctx context.Context) *Active {
	if a, ok := ctx.Value(activeKey{}).(*Active); ok && a != nil {
		return a
	}

	return &Active{}
}
