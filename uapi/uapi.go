// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package uapi provides the v1 Linux GPIO character device ABI definitions
// and thin wrappers around the corresponding ioctls.
//
// The structs here must match the layout of those in the kernel's
// linux/gpio.h, as they are passed to the kernel by reference.
package uapi

import (
	"bytes"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ChipInfo contains the publicly available information for a chip.
type ChipInfo struct {
	// The system name of the chip.
	Name [nameSize]byte

	// The functional name of the chip, as assigned by the hardware
	// description.
	Label [nameSize]byte

	// The number of lines on the chip.
	Lines uint32
}

// LineInfo contains the publicly available information for a line.
type LineInfo struct {
	// The offset of the line within the chip.
	Offset uint32

	// The LineFlags applied to the line.
	Flags LineFlag

	// The system name of the line.
	Name [nameSize]byte

	// The label of the consumer holding the line, if any.
	Consumer [nameSize]byte
}

// HandleRequest is the request for an I/O reservation of a set of lines.
type HandleRequest struct {
	// The offsets of the requested lines.
	Offsets [handlesMax]uint32

	// The HandleFlags applied to the request.
	Flags HandleFlag

	// The initial values for output lines.
	DefaultValues [handlesMax]uint8

	// The label to apply to the reservation.
	Consumer [nameSize]byte

	// The number of lines requested. Must be at least one.
	Lines uint32

	// The fd of the reservation, set by the kernel on success.
	Fd int32
}

// EventRequest is the request for an edge monitoring reservation of a line.
type EventRequest struct {
	// The offset of the requested line.
	Offset uint32

	// The HandleFlags applied to the request.
	HandleFlags HandleFlag

	// The EventFlags selecting the edges to be detected.
	EventFlags EventFlag

	// The label to apply to the reservation.
	Consumer [nameSize]byte

	// The fd of the reservation, set by the kernel on success. Edge events
	// are read from this fd.
	Fd int32
}

// HandleData contains the logical values of the lines in a reservation.
type HandleData [handlesMax]uint8

const (
	// nameSize is GPIO_MAX_NAME_SIZE.
	nameSize = 32

	// handlesMax is GPIOHANDLES_MAX, the maximum number of lines in one
	// handle request.
	handlesMax = 64
)

// LineFlag are the flags reported in LineInfo.
type LineFlag uint32

const (
	// LineFlagUsed indicates the line is held by a consumer.
	LineFlagUsed LineFlag = 1 << iota

	// LineFlagIsOut indicates the line is an output.
	LineFlagIsOut

	// LineFlagActiveLow indicates the line is active low.
	LineFlagActiveLow

	// LineFlagOpenDrain indicates the line is an open drain output.
	LineFlagOpenDrain

	// LineFlagOpenSource indicates the line is an open source output.
	LineFlagOpenSource
)

// HandleFlag are the flags applied to handle and event requests.
type HandleFlag uint32

const (
	// HandleRequestInput requests the lines as inputs.
	HandleRequestInput HandleFlag = 1 << iota

	// HandleRequestOutput requests the lines as outputs.
	HandleRequestOutput

	// HandleRequestActiveLow requests the lines as active low.
	HandleRequestActiveLow

	// HandleRequestOpenDrain requests the lines as open drain outputs.
	HandleRequestOpenDrain

	// HandleRequestOpenSource requests the lines as open source outputs.
	HandleRequestOpenSource
)

// EventFlag selects the edges detected by an event request, and identifies
// the edge in EventData.
type EventFlag uint32

const (
	// EventRequestRisingEdge selects rising edges.
	EventRequestRisingEdge EventFlag = 1 << iota

	// EventRequestFallingEdge selects falling edges.
	EventRequestFallingEdge

	// EventRequestBothEdges selects both edges.
	EventRequestBothEdges = EventRequestRisingEdge | EventRequestFallingEdge
)

// ioctl encoding, from asm-generic/ioctl.h.
const (
	iocWrite uintptr = 1
	iocRead  uintptr = 2

	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	// The GPIO ioctl type, 0xB4.
	gpioIoctlType uintptr = 0xB4
)

func ior(nr, size uintptr) uintptr {
	return iocRead<<iocDirShift |
		gpioIoctlType<<iocTypeShift |
		nr<<iocNrShift |
		size<<iocSizeShift
}

func iorw(nr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift |
		gpioIoctlType<<iocTypeShift |
		nr<<iocNrShift |
		size<<iocSizeShift
}

var (
	getChipInfoIoctl   = ior(0x01, unsafe.Sizeof(ChipInfo{}))
	getLineInfoIoctl   = iorw(0x02, unsafe.Sizeof(LineInfo{}))
	getLineHandleIoctl = iorw(0x03, unsafe.Sizeof(HandleRequest{}))
	getLineEventIoctl  = iorw(0x04, unsafe.Sizeof(EventRequest{}))
	getLineValuesIoctl = iorw(0x08, unsafe.Sizeof(HandleData{}))
	setLineValuesIoctl = iorw(0x09, unsafe.Sizeof(HandleData{}))
)

func ioctl(fd, request uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetChipInfo returns the ChipInfo for the chip on the given fd.
func GetChipInfo(fd uintptr) (ChipInfo, error) {
	var ci ChipInfo
	err := ioctl(fd, getChipInfoIoctl, unsafe.Pointer(&ci))
	return ci, err
}

// GetLineInfo returns the LineInfo for the given line of the chip on fd.
func GetLineInfo(fd uintptr, offset int) (LineInfo, error) {
	li := LineInfo{Offset: uint32(offset)}
	err := ioctl(fd, getLineInfoIoctl, unsafe.Pointer(&li))
	return li, err
}

// GetLineHandle requests an I/O reservation from the chip on fd.
//
// On success the kernel sets request.Fd to the fd of the reservation.
func GetLineHandle(fd uintptr, request *HandleRequest) error {
	return ioctl(fd, getLineHandleIoctl, unsafe.Pointer(request))
}

// GetLineEvent requests an edge monitoring reservation from the chip on fd.
//
// On success the kernel sets request.Fd to the fd of the reservation.
func GetLineEvent(fd uintptr, request *EventRequest) error {
	return ioctl(fd, getLineEventIoctl, unsafe.Pointer(request))
}

// GetLineValues reads the current values of the lines of a reservation.
//
// Valid on both handle and event fds.
func GetLineValues(fd uintptr, values *HandleData) error {
	return ioctl(fd, getLineValuesIoctl, unsafe.Pointer(values))
}

// SetLineValues drives the lines of a reservation to the given values.
//
// Only valid for output reservations.
func SetLineValues(fd uintptr, values HandleData) error {
	return ioctl(fd, setLineValuesIoctl, unsafe.Pointer(&values))
}

// ReadEvent reads a single edge event from an event reservation fd.
//
// The read blocks until an event is available, so callers should poll the fd
// for readability first if blocking is not acceptable.
func ReadEvent(fd uintptr) (EventData, error) {
	var ed EventData
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&ed)), unsafe.Sizeof(ed))
	_, err := unix.Read(int(fd), buf)
	if err != nil {
		return EventData{}, err
	}
	return ed, nil
}

// BytesToString converts the fixed-size null-terminated strings used in the
// ABI structs to a Go string.
func BytesToString(a []byte) string {
	if i := bytes.IndexByte(a, 0); i >= 0 {
		return string(a[:i])
	}
	return string(a)
}
