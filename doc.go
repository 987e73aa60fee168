// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

/*
Package gpioline provides asynchronous access to individual GPIO lines through
the Linux GPIO character device ("gpiochip") uAPI.

A [Chip] is opened by index and hands out [Line] descriptors. Requesting a
line with [Line.Open] takes exclusive kernel ownership of it for the life of
the returned [LineRequest] - input, output, or, with an edge option, edge
monitoring. Ownership is held until [LineRequest.Close], which is safe to
call more than once and must be called on every exit path; a leaked request
keeps the physical pin unusable by any other process.

Edge-monitoring requests produce an [EventMonitor], a pull-based sequence of
[Event]s. [EventMonitor.Wait] blocks the calling goroutine, and only that
goroutine, until the kernel reports the next edge or the context is
cancelled. Cancelling an in-flight Wait abandons the kernel wait, closes the
monitor and leaves the request releasable, so a shutdown signal can unblock
any number of suspended waits promptly. The monitor is single-consumer; to
redistribute one line's events to many interested parties use a [Notifier].

The first event delivered by a monitor reflects the line state at request
time, even when that state does not match the requested edge polarity. That
mirrors the behaviour observed from the kernel and is deliberately not
filtered out.

The sysfs GPIO interface is deprecated and not supported. Requests are
strictly single-line; issue independent requests for independent lines.

# Example Usage

Drive a line and read it back:

	c, err := gpioline.NewChip(0)
	l, err := c.Line(20)
	req, err := l.Open(gpioline.AsOutput(true))
	defer req.Close()
	v, err := req.Value()

Watch a line for edges until interrupted:

	req, err := l.Open(gpioline.AsInput, gpioline.WithBothEdges)
	defer req.Close()
	mon, err := req.Monitor()
	for {
		ev, err := mon.Wait(ctx)
		if err != nil {
			break
		}
		fmt.Println(ev.Value, ev.Timestamp)
	}
*/
package gpioline
