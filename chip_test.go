// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gpioline "github.com/warthog618/go-gpioline"
)

func TestNewChip(t *testing.T) {
	p := newSimProvider()
	p.addChip(0, "left", 8)
	p.denyChip(1)

	c, err := gpioline.NewChip(0, gpioline.WithProvider(p))
	require.Nil(t, err)
	defer c.Close()
	assert.Equal(t, "gpiochip0", c.Name)
	assert.Equal(t, "left", c.Label)
	assert.Equal(t, 8, c.Lines())

	// permission denied
	bc, err := gpioline.NewChip(1, gpioline.WithProvider(p))
	assert.Nil(t, bc)
	assert.True(t, errors.Is(err, gpioline.ErrPermissionDenied))

	// no such chip
	bc, err = gpioline.NewChip(2, gpioline.WithProvider(p))
	assert.Nil(t, bc)
	assert.True(t, errors.Is(err, gpioline.ErrNotFound))
}

func TestChipLine(t *testing.T) {
	p := newSimProvider()
	p.addChip(0, "left", 8)

	c, err := gpioline.NewChip(0, gpioline.WithProvider(p))
	require.Nil(t, err)
	defer c.Close()

	l, err := c.Line(3)
	require.Nil(t, err)
	assert.Equal(t, 3, l.Offset())
	assert.Equal(t, c, l.Chip())

	// out of range
	bl, err := c.Line(8)
	assert.Nil(t, bl)
	assert.Equal(t, gpioline.ErrInvalidOffset, err)
	bl, err = c.Line(-1)
	assert.Nil(t, bl)
	assert.Equal(t, gpioline.ErrInvalidOffset, err)
}

func TestChipLineInfo(t *testing.T) {
	p := newSimProvider()
	p.addChip(0, "left", 8)

	c, err := gpioline.NewChip(0, gpioline.WithProvider(p), gpioline.WithConsumer("banana"))
	require.Nil(t, err)
	defer c.Close()

	li, err := c.LineInfo(3)
	require.Nil(t, err)
	assert.Equal(t, 3, li.Offset)
	assert.False(t, li.Used)

	l, err := c.Line(3)
	require.Nil(t, err)
	req, err := l.Open(gpioline.AsOutput(true))
	require.Nil(t, err)
	defer req.Close()

	li, err = c.LineInfo(3)
	require.Nil(t, err)
	assert.True(t, li.Used)
	assert.Equal(t, "banana", li.Consumer)
	assert.Equal(t, gpioline.DirectionOutput, li.Direction)

	_, err = c.LineInfo(42)
	assert.Equal(t, gpioline.ErrInvalidOffset, err)
}

func TestChipClose(t *testing.T) {
	p := newSimProvider()
	p.addChip(0, "left", 8)

	c, err := gpioline.NewChip(0, gpioline.WithProvider(p))
	require.Nil(t, err)
	l, err := c.Line(3)
	require.Nil(t, err)

	require.Nil(t, c.Close())

	// second close is surfaced, not undefined
	assert.Equal(t, gpioline.ErrClosed, c.Close())

	// derived lines can no longer be opened
	req, err := l.Open(gpioline.AsInput)
	assert.Nil(t, req)
	assert.Equal(t, gpioline.ErrClosed, err)

	_, err = c.LineInfo(3)
	assert.Equal(t, gpioline.ErrClosed, err)
}

// Requests hold their own native handle, so closing the chip does not revoke
// an existing request.
func TestChipCloseWithRequestedLine(t *testing.T) {
	p := newSimProvider()
	p.addChip(0, "left", 8)

	c, err := gpioline.NewChip(0, gpioline.WithProvider(p))
	require.Nil(t, err)
	l, err := c.Line(3)
	require.Nil(t, err)
	req, err := l.Open(gpioline.AsOutput(true))
	require.Nil(t, err)
	defer req.Close()

	require.Nil(t, c.Close())

	v, err := req.Value()
	assert.Nil(t, err)
	assert.True(t, v)
}
