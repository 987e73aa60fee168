// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"context"
	"encoding/binary"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/warthog618/go-gpioline/uapi"
)

// Kernel returns the provider backed by the Linux GPIO character device uAPI.
//
// This is the default provider for [NewChip].
func Kernel() Provider {
	return kernelProvider{}
}

type kernelProvider struct{}

func (kernelProvider) OpenChip(path string) (ChipHandle, error) {
	f, err := os.OpenFile(path, unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	ci, err := uapi.GetChipInfo(f.Fd())
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading chip info from %s", path)
	}
	c := kernelChip{
		f: f,
		info: ChipInfo{
			Name:  uapi.BytesToString(ci.Name[:]),
			Label: uapi.BytesToString(ci.Label[:]),
			Lines: int(ci.Lines),
		},
	}
	if len(c.info.Label) == 0 {
		c.info.Label = "unknown"
	}
	return &c, nil
}

type kernelChip struct {
	f    *os.File
	info ChipInfo
}

func (c *kernelChip) Info() ChipInfo {
	return c.info
}

func (c *kernelChip) LineInfo(offset int) (LineInfo, error) {
	li, err := uapi.GetLineInfo(c.f.Fd(), offset)
	if err != nil {
		return LineInfo{}, err
	}
	direction := DirectionInput
	if li.Flags&uapi.LineFlagIsOut != 0 {
		direction = DirectionOutput
	}
	return LineInfo{
		Offset:    int(li.Offset),
		Name:      uapi.BytesToString(li.Name[:]),
		Consumer:  uapi.BytesToString(li.Consumer[:]),
		Used:      li.Flags&uapi.LineFlagUsed != 0,
		Direction: direction,
	}, nil
}

func (c *kernelChip) RequestLine(offset int, cfg RequestConfig) (RequestHandle, error) {
	if cfg.Edge == EdgeNone {
		return c.requestHandle(offset, cfg)
	}
	return c.requestEvent(offset, cfg)
}

// requestHandle issues a plain I/O request for the line.
func (c *kernelChip) requestHandle(offset int, cfg RequestConfig) (RequestHandle, error) {
	hr := uapi.HandleRequest{Lines: 1}
	hr.Offsets[0] = uint32(offset)
	switch cfg.Direction {
	case DirectionOutput:
		hr.Flags = uapi.HandleRequestOutput
		if cfg.Value {
			hr.DefaultValues[0] = 1
		}
	default:
		hr.Flags = uapi.HandleRequestInput
	}
	copy(hr.Consumer[:len(hr.Consumer)-1], cfg.Consumer)
	if err := uapi.GetLineHandle(c.f.Fd(), &hr); err != nil {
		return nil, err
	}
	return &kernelRequest{fd: int(hr.Fd)}, nil
}

// requestEvent issues an edge monitoring request for the line.
func (c *kernelChip) requestEvent(offset int, cfg RequestConfig) (RequestHandle, error) {
	er := uapi.EventRequest{
		Offset:      uint32(offset),
		HandleFlags: uapi.HandleRequestInput,
	}
	if cfg.Edge&EdgeRising != 0 {
		er.EventFlags |= uapi.EventRequestRisingEdge
	}
	if cfg.Edge&EdgeFalling != 0 {
		er.EventFlags |= uapi.EventRequestFallingEdge
	}
	copy(er.Consumer[:len(er.Consumer)-1], cfg.Consumer)
	if err := uapi.GetLineEvent(c.f.Fd(), &er); err != nil {
		return nil, err
	}
	// wake channel for cancellation and close
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(int(er.Fd))
		return nil, errors.Wrap(err, "creating wake eventfd")
	}
	return &kernelRequest{fd: int(er.Fd), wakeFd: wakeFd, hasWake: true}, nil
}

func (c *kernelChip) Close() error {
	return c.f.Close()
}

// kernelRequest holds the request fd returned by the kernel for one line,
// and for edge requests an eventfd used to interrupt a pending poll.
type kernelRequest struct {
	fd      int
	wakeFd  int
	hasWake bool

	// mu covers closed.
	mu     sync.Mutex
	closed bool

	// waitMu is held for the duration of a WaitForEdge. Close takes it
	// after waking the poll, so the fds are never closed under a live poll.
	waitMu sync.Mutex
}

func (r *kernelRequest) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *kernelRequest) Value() (bool, error) {
	if r.isClosed() {
		return false, ErrClosed
	}
	hd := uapi.HandleData{}
	err := uapi.GetLineValues(uintptr(r.fd), &hd)
	return hd[0] != 0, err
}

func (r *kernelRequest) SetValue(v bool) error {
	if r.isClosed() {
		return ErrClosed
	}
	hd := uapi.HandleData{}
	if v {
		hd[0] = 1
	}
	return uapi.SetLineValues(uintptr(r.fd), hd)
}

func (r *kernelRequest) WaitForEdge(ctx context.Context) (Event, error) {
	r.waitMu.Lock()
	defer r.waitMu.Unlock()
	if r.isClosed() {
		return Event{}, ErrClosed
	}
	if !r.hasWake {
		return Event{}, ErrInvalidConfig
	}
	stop := context.AfterFunc(ctx, r.wake)
	defer stop()
	fds := []unix.PollFd{
		{Fd: int32(r.fd), Events: unix.POLLIN},
		{Fd: int32(r.wakeFd), Events: unix.POLLIN},
	}
	for {
		fds[0].Revents = 0
		fds[1].Revents = 0
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Event{}, errors.Wrap(err, "waiting for edge")
		}
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		if r.isClosed() {
			return Event{}, ErrClosed
		}
		if fds[0].Revents&unix.POLLIN != 0 {
			ed, err := uapi.ReadEvent(uintptr(r.fd))
			if err != nil {
				return Event{}, errors.Wrap(err, "reading edge event")
			}
			return Event{
				Value:     ed.ID == uapi.EventRequestRisingEdge,
				Timestamp: time.Duration(ed.Timestamp),
			}, nil
		}
		// stale wake, e.g. a cancellation that lost the race with an edge
		r.drainWake()
	}
}

// wake makes the wake eventfd readable, unblocking a pending poll.
func (r *kernelRequest) wake() {
	if !r.hasWake {
		return
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	unix.Write(r.wakeFd, buf[:])
}

// drainWake resets the wake eventfd. The fd is non-blocking so this never
// stalls.
func (r *kernelRequest) drainWake() {
	var buf [8]byte
	unix.Read(r.wakeFd, buf[:])
}

func (r *kernelRequest) Close() error {
	r.mu.Lock()
	closed := r.closed
	r.closed = true
	r.mu.Unlock()
	if closed {
		return nil
	}
	r.wake()
	r.waitMu.Lock()
	unix.Close(r.fd)
	if r.hasWake {
		unix.Close(r.wakeFd)
	}
	r.waitMu.Unlock()
	return nil
}
