// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

// ChipOption defines the interface required to provide an option to NewChip.
type ChipOption interface {
	applyChipOption(*chipOptions)
}

// chipOptions collects the configuration for NewChip.
type chipOptions struct {
	consumer string
	provider Provider
}

// OpenOption defines the interface required to provide an option to Line.Open.
type OpenOption interface {
	applyOpenOption(*RequestConfig)
}

// NotifierOption defines the interface required to provide an option to
// NewNotifier.
type NotifierOption interface {
	applyNotifierOption(*Notifier)
}

// ConsumerOption defines the consumer label for a chip or a request.
type ConsumerOption string

// WithConsumer returns an option that sets the consumer label reported for
// requested lines.
//
// Applied to a chip it becomes the default for all requests derived from it;
// applied to an individual Open it overrides the chip default.
func WithConsumer(consumer string) ConsumerOption {
	return ConsumerOption(consumer)
}

func (o ConsumerOption) applyChipOption(c *chipOptions) {
	c.consumer = string(o)
}

func (o ConsumerOption) applyOpenOption(c *RequestConfig) {
	c.Consumer = string(o)
}

// ProviderOption defines the capability provider backing a chip.
type ProviderOption struct {
	provider Provider
}

// WithProvider returns an option that substitutes the provider backing the
// chip. The default is [Kernel]. Primarily intended for testing against
// simulated providers.
func WithProvider(p Provider) ProviderOption {
	return ProviderOption{p}
}

func (o ProviderOption) applyChipOption(c *chipOptions) {
	c.provider = o.provider
}

// InputOption requests a line as an input.
type InputOption struct{}

// AsInput requests the line as an input.
//
// This is the default for Open.
var AsInput = InputOption{}

func (o InputOption) applyOpenOption(c *RequestConfig) {
	c.Direction = DirectionInput
}

// OutputOption requests a line as an output.
type OutputOption struct {
	value bool
}

// AsOutput requests the line as an output driven to the given initial level.
func AsOutput(value bool) OutputOption {
	return OutputOption{value}
}

func (o OutputOption) applyOpenOption(c *RequestConfig) {
	c.Direction = DirectionOutput
	c.Value = o.value
}

// EdgeOption enables edge detection on an input request.
type EdgeOption Edge

// WithEdge returns an option that enables detection of the given edges.
//
// Only valid combined with an input request.
func WithEdge(e Edge) EdgeOption {
	return EdgeOption(e)
}

var (
	// WithRisingEdge enables detection of rising edges.
	WithRisingEdge = EdgeOption(EdgeRising)

	// WithFallingEdge enables detection of falling edges.
	WithFallingEdge = EdgeOption(EdgeFalling)

	// WithBothEdges enables detection of both rising and falling edges.
	WithBothEdges = EdgeOption(EdgeBoth)
)

func (o EdgeOption) applyOpenOption(c *RequestConfig) {
	c.Edge = Edge(o)
}

// MaxWaitersOption defines the waiter bound for a Notifier.
type MaxWaitersOption int

// WithMaxWaiters returns an option that sets the maximum number of
// simultaneously registered waiters on a Notifier.
//
// The bound is a safety valve against runaway registration, not a tuning
// knob; registrations beyond it fail with [ErrWaiterOverflow].
func WithMaxWaiters(n int) MaxWaitersOption {
	return MaxWaitersOption(n)
}

func (o MaxWaitersOption) applyNotifierOption(n *Notifier) {
	n.maxWaiters = int(o)
}
