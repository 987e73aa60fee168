// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

// Line identifies one addressable line on a [Chip].
//
// It is an immutable descriptor and holds no kernel state. The line is not
// reserved until [Line.Open].
type Line struct {
	chip   *Chip
	offset int
}

// Offset returns the offset of the line within its chip.
func (l *Line) Offset() int {
	return l.offset
}

// Chip returns the chip the line belongs to.
func (l *Line) Chip() *Chip {
	return l.chip
}

// Open requests exclusive ownership of the line from the kernel.
//
// The available options are [AsInput], [AsOutput], [WithEdge] (and the
// [WithRisingEdge], [WithFallingEdge] and [WithBothEdges] shorthands) and
// [WithConsumer]. The default is an input with no edge detection, using the
// chip's consumer label.
//
// Edge detection may only be combined with an input request; an output
// request with edge detection is rejected with [ErrInvalidConfig] before any
// kernel call is made.
//
// Returns [ErrBusy] if the line is already held by another owner - whether
// another process or another request in this one - and [ErrClosed] if the
// chip has been closed. The request holds the line until
// [LineRequest.Close], on every exit path.
func (l *Line) Open(options ...OpenOption) (*LineRequest, error) {
	cfg := RequestConfig{
		Direction: DirectionInput,
		Edge:      EdgeNone,
		Consumer:  l.chip.consumer,
	}
	for _, o := range options {
		o.applyOpenOption(&cfg)
	}
	if cfg.Direction != DirectionInput && cfg.Direction != DirectionOutput {
		return nil, ErrInvalidConfig
	}
	if cfg.Edge != EdgeNone && cfg.Direction != DirectionInput {
		return nil, ErrInvalidConfig
	}
	if cfg.Edge&^EdgeBoth != 0 {
		return nil, ErrInvalidConfig
	}
	h, err := l.chip.openLine(l.offset, cfg)
	if err != nil {
		return nil, err
	}
	return &LineRequest{line: l, cfg: cfg, h: h}, nil
}
