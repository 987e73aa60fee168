// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"sync"
)

// LineRequest represents exclusive kernel ownership of one line.
//
// A request is created by [Line.Open] and remains active until [Close]. It
// must not be copied - the request is the single owner of the native line
// handle and Close consumes it.
type LineRequest struct {
	// The line the request owns.
	line *Line

	// The configuration the line was requested with.
	cfg RequestConfig

	// The native handle holding the kernel reservation.
	h RequestHandle

	// mu covers the fields below.
	mu     sync.Mutex
	mon    *EventMonitor
	closed bool
}

// Line returns the line the request owns.
func (r *LineRequest) Line() *Line {
	return r.line
}

// Direction returns the direction the line was requested with.
func (r *LineRequest) Direction() Direction {
	return r.cfg.Direction
}

// Edge returns the edge detection the line was requested with.
func (r *LineRequest) Edge() Edge {
	return r.cfg.Edge
}

// Consumer returns the consumer label attached to the request.
func (r *LineRequest) Consumer() string {
	return r.cfg.Consumer
}

// Value returns the current level of the line.
//
// Valid for both input and output requests - reading back the driven level
// of an output is permitted.
func (r *LineRequest) Value() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, ErrClosed
	}
	return r.h.Value()
}

// SetValue drives the line to the given level.
//
// Only valid for output requests; returns [ErrDirection] for inputs.
func (r *LineRequest) SetValue(v bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.cfg.Direction != DirectionOutput {
		return ErrDirection
	}
	return r.h.SetValue(v)
}

// Monitor returns the event monitor for the request.
//
// Only valid for requests opened with edge detection; returns
// [ErrInvalidConfig] otherwise. Repeated calls return the same monitor -
// the request produces a single event sequence.
//
// The monitor's first event is a snapshot of the line level taken here,
// delivered on the first Wait regardless of the requested edge polarity.
func (r *LineRequest) Monitor() (*EventMonitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if r.cfg.Edge == EdgeNone {
		return nil, ErrInvalidConfig
	}
	if r.mon != nil {
		return r.mon, nil
	}
	v, err := r.h.Value()
	if err != nil {
		return nil, err
	}
	r.mon = newEventMonitor(r.h, Event{Value: v, Timestamp: monotime()})
	return r.mon, nil
}

// Close releases the line back to the kernel.
//
// Close is idempotent - a second call is a no-op, not an error. Any monitor
// derived from the request is closed and an in-flight [EventMonitor.Wait] is
// unblocked before Close returns.
//
// Once closed a request cannot be reactivated; reserve the line again with
// a fresh [Line.Open].
func (r *LineRequest) Close() error {
	r.mu.Lock()
	closed := r.closed
	r.closed = true
	mon := r.mon
	r.mu.Unlock()
	if closed {
		return nil
	}
	if mon != nil {
		mon.Close()
	}
	return r.h.Close()
}
