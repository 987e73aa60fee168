// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// monitorState tracks the lifecycle of an EventMonitor.
type monitorState int

const (
	// monitorReady indicates the monitor can be pulled.
	monitorReady monitorState = iota

	// monitorWaiting indicates a Wait is in flight.
	monitorWaiting

	// monitorClosed indicates the owning request was released, the wait was
	// cancelled, or the monitor was explicitly closed. Terminal.
	monitorClosed
)

// EventMonitor delivers the edge events of one requested line as a pull-based
// sequence.
//
// The sequence is infinite - it does not terminate of its own accord - and
// single-consumer. Events are delivered strictly in the order the kernel
// reports them; nothing is coalesced or reordered. If the consumer does not
// pull quickly enough any buffering or dropping is the kernel's, not this
// package's.
//
// A monitor is obtained from [LineRequest.Monitor] and ends when the owning
// request is closed. Once closed it cannot be restarted; monitoring again
// requires a fresh request.
type EventMonitor struct {
	// The native handle events are pulled from.
	h RequestHandle

	// mu covers the fields below.
	mu    sync.Mutex
	state monitorState

	// The snapshot of the line level taken at request time, delivered as
	// the first event.
	first *Event
}

func newEventMonitor(h RequestHandle, first Event) *EventMonitor {
	return &EventMonitor{h: h, first: &first}
}

// Wait blocks until the next event, delivering exactly one per call.
//
// Only the calling goroutine is blocked; the wait maps onto a single kernel
// wait for the next edge on the line. A second Wait while one is in flight
// is rejected with [ErrConcurrentWait].
//
// Cancelling the context abandons the kernel wait, closes the monitor and
// returns ctx.Err() - distinguishable from both a delivered event and
// [ErrClosed]. Closing the owning request also unblocks the wait, with
// ErrClosed. In either case the request remains releasable.
func (m *EventMonitor) Wait(ctx context.Context) (Event, error) {
	m.mu.Lock()
	switch m.state {
	case monitorClosed:
		m.mu.Unlock()
		return Event{}, ErrClosed
	case monitorWaiting:
		m.mu.Unlock()
		return Event{}, ErrConcurrentWait
	}
	if m.first != nil {
		ev := *m.first
		m.first = nil
		m.mu.Unlock()
		return ev, nil
	}
	m.state = monitorWaiting
	m.mu.Unlock()

	ev, err := m.h.WaitForEdge(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = monitorClosed
		return Event{}, err
	}
	if m.state == monitorWaiting {
		m.state = monitorReady
	}
	return ev, nil
}

// Close explicitly ends the sequence.
//
// Subsequent Waits fail with [ErrClosed]. The owning request is not
// released - that remains the caller's responsibility. Idempotent.
func (m *EventMonitor) Close() error {
	m.mu.Lock()
	m.state = monitorClosed
	m.first = nil
	m.mu.Unlock()
	return nil
}

// monotime returns the current time on the kernel monotonic clock, the clock
// edge event timestamps are sourced from.
func monotime() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return time.Duration(ts.Nano())
}
