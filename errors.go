// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	// ErrBusy indicates the line is already held by another owner.
	//
	// The holder may be another process, or another request within this one.
	// Retry policy, if any, is up to the caller.
	ErrBusy = errors.New("line is in use")

	// ErrClosed indicates the chip, request or monitor has been closed.
	ErrClosed = errors.New("already closed")

	// ErrConcurrentWait indicates a Wait was attempted on an EventMonitor
	// while another Wait was still in flight. Monitors are single-consumer.
	ErrConcurrentWait = errors.New("concurrent wait on event monitor")

	// ErrDirection indicates the operation is not supported by the direction
	// the line was requested with, e.g. setting the value of an input.
	ErrDirection = errors.New("inappropriate request direction")

	// ErrInvalidConfig indicates the requested configuration is malformed,
	// e.g. edge detection on an output request.
	ErrInvalidConfig = errors.New("invalid line configuration")

	// ErrInvalidOffset indicates a line offset is outside the range reported
	// by the chip.
	ErrInvalidOffset = errors.New("invalid line offset")

	// ErrNotFound indicates no GPIO chip exists with the given index.
	ErrNotFound = errors.New("no such GPIO chip")

	// ErrPermissionDenied indicates the caller lacks rights to the device.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrWaiterOverflow indicates a Notifier registration was rejected
	// because the maximum number of waiters are already registered.
	ErrWaiterOverflow = errors.New("too many registered waiters")
)

// asChipError maps errnos from opening a gpiochip onto package sentinels.
func asChipError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV):
		return ErrNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	}
	return err
}

// asRequestError maps errnos from requesting a line onto package sentinels.
func asRequestError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EBUSY):
		return ErrBusy
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	case errors.Is(err, unix.EINVAL):
		return ErrInvalidConfig
	}
	return err
}
