// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	gpioline "github.com/warthog618/go-gpioline"
)

// simProvider is an in-memory Provider covering the chips added to it.
//
// It returns the raw errnos the kernel would, so the package's errno mapping
// is exercised as well as the state machines above it.
type simProvider struct {
	mu     sync.Mutex
	chips  map[string]*simChip
	denied map[string]bool
}

func newSimProvider() *simProvider {
	return &simProvider{
		chips:  map[string]*simChip{},
		denied: map[string]bool{},
	}
}

// addChip creates the simulated chip backing /dev/gpiochip<num>.
func (p *simProvider) addChip(num int, label string, lines int) *simChip {
	c := &simChip{
		info: gpioline.ChipInfo{
			Name:  fmt.Sprintf("gpiochip%d", num),
			Label: label,
			Lines: lines,
		},
		levels: make([]bool, lines),
		reqs:   map[int]*simRequest{},
	}
	p.mu.Lock()
	p.chips[fmt.Sprintf("/dev/gpiochip%d", num)] = c
	p.mu.Unlock()
	return c
}

// denyChip makes opening /dev/gpiochip<num> fail with EACCES.
func (p *simProvider) denyChip(num int) {
	p.mu.Lock()
	p.denied[fmt.Sprintf("/dev/gpiochip%d", num)] = true
	p.mu.Unlock()
}

func (p *simProvider) OpenChip(path string) (gpioline.ChipHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.denied[path] {
		return nil, unix.EACCES
	}
	c, ok := p.chips[path]
	if !ok {
		return nil, unix.ENOENT
	}
	return &simChipHandle{chip: c}, nil
}

// simChip is the shared state of one simulated chip. It outlives any
// individual ChipHandle, as the kernel's chip does.
type simChip struct {
	info gpioline.ChipInfo

	mu     sync.Mutex
	levels []bool
	reqs   map[int]*simRequest
}

// SetLevel drives the simulated line from the kernel side, delivering an
// edge event to the holder if it requested the matching polarity.
func (c *simChip) SetLevel(offset int, v bool, ts time.Duration) {
	c.mu.Lock()
	old := c.levels[offset]
	c.levels[offset] = v
	r := c.reqs[offset]
	c.mu.Unlock()
	if r == nil || old == v {
		return
	}
	edge := gpioline.EdgeFalling
	if v {
		edge = gpioline.EdgeRising
	}
	if r.cfg.Edge&edge != 0 {
		r.events <- gpioline.Event{Value: v, Timestamp: ts}
	}
}

// Level returns the current level of the simulated line.
func (c *simChip) Level(offset int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[offset]
}

func (c *simChip) requestLine(offset int, cfg gpioline.RequestConfig) (*simRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reqs[offset]; ok {
		return nil, unix.EBUSY
	}
	r := &simRequest{
		chip:   c,
		offset: offset,
		cfg:    cfg,
		events: make(chan gpioline.Event, 64),
		done:   make(chan struct{}),
	}
	if cfg.Direction == gpioline.DirectionOutput {
		c.levels[offset] = cfg.Value
	}
	c.reqs[offset] = r
	return r, nil
}

func (c *simChip) release(r *simRequest) {
	c.mu.Lock()
	if c.reqs[r.offset] == r {
		delete(c.reqs, r.offset)
	}
	c.mu.Unlock()
}

// simChipHandle is one open handle onto a simChip.
type simChipHandle struct {
	chip *simChip

	mu     sync.Mutex
	closed bool
}

func (h *simChipHandle) Info() gpioline.ChipInfo {
	return h.chip.info
}

func (h *simChipHandle) LineInfo(offset int) (gpioline.LineInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return gpioline.LineInfo{}, gpioline.ErrClosed
	}
	c := h.chip
	c.mu.Lock()
	defer c.mu.Unlock()
	li := gpioline.LineInfo{Offset: offset}
	if r, ok := c.reqs[offset]; ok {
		li.Used = true
		li.Consumer = r.cfg.Consumer
		li.Direction = r.cfg.Direction
	}
	return li, nil
}

func (h *simChipHandle) RequestLine(offset int, cfg gpioline.RequestConfig) (gpioline.RequestHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, gpioline.ErrClosed
	}
	return h.chip.requestLine(offset, cfg)
}

func (h *simChipHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return gpioline.ErrClosed
	}
	h.closed = true
	return nil
}

// simRequest is a simulated line reservation.
type simRequest struct {
	chip   *simChip
	offset int
	cfg    gpioline.RequestConfig

	// events queues edges driven by SetLevel, in order.
	events chan gpioline.Event

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (r *simRequest) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *simRequest) Value() (bool, error) {
	if r.isClosed() {
		return false, gpioline.ErrClosed
	}
	return r.chip.Level(r.offset), nil
}

func (r *simRequest) SetValue(v bool) error {
	if r.isClosed() {
		return gpioline.ErrClosed
	}
	r.chip.mu.Lock()
	r.chip.levels[r.offset] = v
	r.chip.mu.Unlock()
	return nil
}

func (r *simRequest) WaitForEdge(ctx context.Context) (gpioline.Event, error) {
	select {
	case <-r.done:
		return gpioline.Event{}, gpioline.ErrClosed
	default:
	}
	select {
	case <-ctx.Done():
		return gpioline.Event{}, ctx.Err()
	case <-r.done:
		return gpioline.Event{}, gpioline.ErrClosed
	case ev := <-r.events:
		return ev, nil
	}
}

func (r *simRequest) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()
	r.chip.release(r)
	return nil
}
