// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"fmt"
	"os"
	"sync"
)

// Chip represents an open GPIO character device.
//
// Lines are identified by offset into the chip, with offsets being in the
// range 0..Lines()-1.
type Chip struct {
	// The system name of the chip, e.g. "gpiochip0".
	Name string

	// The hardware label of the chip, as reported by the kernel.
	Label string

	// The number of lines on the chip.
	lines int

	// The default consumer label for requests derived from this chip.
	consumer string

	// The native handle to the device.
	h ChipHandle

	// mu covers closed.
	mu     sync.Mutex
	closed bool
}

// NewChip opens the GPIO character device with the given index,
// i.e. /dev/gpiochipN.
//
// The available options are [WithConsumer] and [WithProvider].
//
// Returns [ErrNotFound] if no chip with that index exists and
// [ErrPermissionDenied] if the caller lacks rights to the device node.
func NewChip(num int, options ...ChipOption) (*Chip, error) {
	co := chipOptions{
		consumer: fmt.Sprintf("gpioline-%d", os.Getpid()),
		provider: Kernel(),
	}
	for _, o := range options {
		o.applyChipOption(&co)
	}
	h, err := co.provider.OpenChip(fmt.Sprintf("/dev/gpiochip%d", num))
	if err != nil {
		return nil, asChipError(err)
	}
	ci := h.Info()
	c := Chip{
		Name:     ci.Name,
		Label:    ci.Label,
		lines:    ci.Lines,
		consumer: co.consumer,
		h:        h,
	}
	return &c, nil
}

// Lines returns the number of lines that exist on the chip.
func (c *Chip) Lines() int {
	return c.lines
}

// Line returns the descriptor for the line at the given offset.
//
// The descriptor holds no kernel resources - the line is not requested until
// [Line.Open].
//
// Returns [ErrInvalidOffset] if the offset is outside the range reported by
// the chip.
func (c *Chip) Line(offset int) (*Line, error) {
	if offset < 0 || offset >= c.lines {
		return nil, ErrInvalidOffset
	}
	return &Line{chip: c, offset: offset}, nil
}

// LineInfo returns the publicly visible information on the line.
//
// This does not require requesting the line.
func (c *Chip) LineInfo(offset int) (LineInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	if offset < 0 || offset >= c.lines {
		return LineInfo{}, ErrInvalidOffset
	}
	return c.h.LineInfo(offset)
}

// Close releases the chip, closing the native handle.
//
// Lines already requested remain usable until their own Close - they hold
// independent kernel handles. Opening further lines from this chip fails
// with [ErrClosed], as does a second Close.
func (c *Chip) Close() error {
	c.mu.Lock()
	closed := c.closed
	c.closed = true
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return c.h.Close()
}

// openLine requests the line on behalf of Line.Open.
func (c *Chip) openLine(offset int, cfg RequestConfig) (RequestHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	h, err := c.h.RequestLine(offset, cfg)
	if err != nil {
		return nil, asRequestError(err)
	}
	return h, nil
}
