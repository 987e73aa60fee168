// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"context"
	"time"
)

// Provider supplies the GPIO character device capability to the package.
//
// The default provider, [Kernel], drives the Linux uAPI. Tests substitute
// their own using [WithProvider].
type Provider interface {
	// OpenChip opens the GPIO character device at the given path.
	OpenChip(path string) (ChipHandle, error)
}

// ChipInfo describes a GPIO chip as reported by the device itself.
type ChipInfo struct {
	// The system name of the chip, e.g. "gpiochip0".
	Name string

	// The hardware label of the chip, for diagnostics. Opaque.
	Label string

	// The number of lines the chip exposes.
	Lines int
}

// LineInfo describes the publicly visible state of one line.
//
// It is available without requesting the line.
type LineInfo struct {
	// The line offset within the chip.
	Offset int

	// The system name of the line, if it has one.
	Name string

	// The consumer label of the current holder, if the line is in use.
	Consumer string

	// Whether the line is held by some consumer.
	Used bool

	// The current direction of the line.
	Direction Direction
}

// RequestConfig carries the parameters of a line request across the provider
// boundary.
type RequestConfig struct {
	// The requested direction.
	Direction Direction

	// The requested edge detection. Only valid with DirectionInput.
	Edge Edge

	// The consumer label attached to the request.
	Consumer string

	// The initial value for output requests.
	Value bool
}

// ChipHandle is an open native handle to one GPIO chip.
type ChipHandle interface {
	// Info returns the chip description read when the chip was opened.
	Info() ChipInfo

	// LineInfo returns the publicly visible state of the given line.
	LineInfo(offset int) (LineInfo, error)

	// RequestLine takes exclusive ownership of the given line.
	RequestLine(offset int, cfg RequestConfig) (RequestHandle, error)

	// Close releases the chip handle. Lines already requested are
	// unaffected - they hold their own native handles.
	Close() error
}

// RequestHandle is the native handle to one requested line.
type RequestHandle interface {
	// Value returns the current level of the line.
	Value() (bool, error)

	// SetValue drives the line to the given level.
	SetValue(v bool) error

	// WaitForEdge blocks until the next edge event, context cancellation,
	// or Close. Returns ctx.Err() on cancellation and ErrClosed if the
	// handle is closed while waiting.
	WaitForEdge(ctx context.Context) (Event, error)

	// Close releases the line back to the kernel, unblocking any in-flight
	// WaitForEdge. Idempotent.
	Close() error
}

// Event is one reported change of a line's level.
type Event struct {
	// The level the line transitioned to.
	Value bool

	// The time the event was detected, as nanoseconds on the kernel
	// monotonic clock. Suitable for measuring intervals between events,
	// not for wall-clock time.
	Timestamp time.Duration
}

// Direction indicates the requested direction of a line.
type Direction int

const (
	// DirectionInput requests the line as an input.
	DirectionInput Direction = iota

	// DirectionOutput requests the line as an output.
	DirectionOutput
)

// Edge indicates the line transitions that produce events.
type Edge int

const (
	// EdgeNone disables edge detection.
	EdgeNone Edge = 0

	// EdgeRising reports inactive to active transitions.
	EdgeRising Edge = 1

	// EdgeFalling reports active to inactive transitions.
	EdgeFalling Edge = 2

	// EdgeBoth reports all transitions.
	EdgeBoth Edge = EdgeRising | EdgeFalling
)
