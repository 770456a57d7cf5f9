// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends an event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}

var _ Reporter = (*ChannelReporter)(nil)

// ChannelReporter delivers events through a buffered channel.
// Events reported while the buffer is full or after Close are dropped.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewChannelReporter creates a ChannelReporter with the given buffer size.
// Cancelling ctx stops any listener started with Listen.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	default:
		// Buffer full, drop the event rather than stall the run.
	}
}

// Close implements Reporter. It closes the event channel and waits for listeners to drain it.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()

	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
	cr.cancel()
}

// Listen forwards events to listener on a new goroutine until the reporter is closed
// or its context is cancelled. Events still buffered at Close are delivered.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events returns the event channel for callers that consume events directly.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}

var _ Reporter = Tee(nil)

// Tee fans events out to several reporters.
type Tee []Reporter

// Report implements Reporter.
func (t Tee) Report(event Event) {
	for _, r := range t {
		r.Report(event)
	}
}

// Close implements Reporter.
func (t Tee) Close() {
	for _, r := range t {
		r.Close()
	}
}
