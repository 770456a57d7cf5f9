// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"sync"
)

// ErrGateCancelled is returned by Gate.Wait once the gate has been cancelled.
var ErrGateCancelled = errors.New("confirmation gate cancelled")

// Gate is a cancellable confirmation future.
// Confirmations that arrive while nobody waits are held in order and consumed by the next Wait.
// Cancel discards held confirmations and makes every later Confirm inert.
type Gate struct {
	mu        sync.Mutex
	held      int
	waiter    chan struct{}
	cancelled bool
	cancelCh  chan struct{}
}

// NewGate creates an open Gate.
func NewGate() *Gate {
	return &Gate{
		cancelCh: make(chan struct{}),
	}
}

// Confirm resolves the current waiter or holds the confirmation for the next one.
// It returns false when the gate is cancelled.
func (g *Gate) Confirm() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelled {
		return false
	}

	if g.waiter != nil {
		close(g.waiter)
		g.waiter = nil

		return true
	}

	g.held++

	return true
}

// Wait blocks until a confirmation is available, the gate is cancelled or ctx is done.
// Only one caller may wait at a time.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()

	if g.cancelled {
		g.mu.Unlock()
		return ErrGateCancelled
	}

	if g.held > 0 {
		g.held--
		g.mu.Unlock()

		return nil
	}

	ch := make(chan struct{})
	g.waiter = ch
	g.mu.Unlock()

	select {
	case <-ch:
	case <-g.cancelCh:
	case <-ctx.Done():
		g.mu.Lock()
		if g.waiter == ch {
			g.waiter = nil
		}
		g.mu.Unlock()

		return context.Cause(ctx)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelled {
		return ErrGateCancelled
	}

	return nil
}

// Cancel releases any waiter with ErrGateCancelled and drops held confirmations.
// Calling Cancel more than once has no further effect.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelled {
		return
	}

	g.cancelled = true
	g.held = 0
	g.waiter = nil
	close(g.cancelCh)
}

// Pending returns the number of held confirmations.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.held
}
