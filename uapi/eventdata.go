// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

//go:build !386

package uapi

// EventData contains the details of one edge event, as read from an event
// reservation fd.
type EventData struct {
	// The time the event was detected, in nanoseconds. CLOCK_MONOTONIC
	// from Linux v5.7; CLOCK_REALTIME on older kernels.
	Timestamp uint64

	// The type of edge detected.
	ID EventFlag

	// Pad to match the 64-bit alignment of the kernel struct.
	_ uint32
}
