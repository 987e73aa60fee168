// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gpioline

import (
	"context"
	"sync"
)

// DefaultMaxWaiters is the default bound on simultaneously registered
// waiters on a Notifier.
const DefaultMaxWaiters = 15

// Notifier redistributes the events of one [EventMonitor] to a dynamic set
// of registered waiters.
//
// Each registration is single-shot: a waiter receives exactly one event on
// its channel and must re-register to observe the next. That makes waiters
// naturally self-throttling - a waiter that stops re-registering simply
// stops receiving.
//
// The waiter set is bounded. Registering beyond the bound fails fast with
// [ErrWaiterOverflow] rather than growing without limit; the monitoring
// session itself is unaffected and already-registered waiters still receive
// events.
type Notifier struct {
	// mu covers the fields below.
	mu         sync.Mutex
	maxWaiters int
	waiters    []chan Event
	closed     bool
}

// NewNotifier constructs a Notifier.
//
// The available option is [WithMaxWaiters]; the bound defaults to
// [DefaultMaxWaiters].
func NewNotifier(options ...NotifierOption) *Notifier {
	n := &Notifier{maxWaiters: DefaultMaxWaiters}
	for _, o := range options {
		o.applyNotifierOption(n)
	}
	return n
}

// Notify registers a single-shot waiter for the next event.
//
// The returned channel delivers exactly one event and is then closed. It is
// closed without a value if the notifier shuts down first, so receivers
// should use the two-value receive form.
//
// Returns [ErrWaiterOverflow] if the maximum number of waiters are already
// registered, and [ErrClosed] if the notifier has shut down.
func (n *Notifier) Notify() (<-chan Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}
	if len(n.waiters) >= n.maxWaiters {
		return nil, ErrWaiterOverflow
	}
	ch := make(chan Event, 1)
	n.waiters = append(n.waiters, ch)
	return ch, nil
}

// Waiters returns the number of currently registered waiters.
func (n *Notifier) Waiters() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.waiters)
}

// Watch pulls the monitor and redistributes each event to the registered
// waiters until the context is cancelled or the monitor closes.
//
// Watch is the notifier's only consumer of the monitor, preserving the
// monitor's single-consumer contract. On return the notifier is shut down
// and all still-registered waiters are released with a closed channel, so a
// shutdown unblocks every waiter promptly. Returns the error that ended the
// pull loop.
func (n *Notifier) Watch(ctx context.Context, m *EventMonitor) error {
	defer n.shutdown()
	for {
		ev, err := m.Wait(ctx)
		if err != nil {
			return err
		}
		n.dispatch(ev)
	}
}

// dispatch delivers the event to every registered waiter and clears the set.
//
// The set is swapped out before delivery so waiters re-registering during
// delivery land in the next round rather than mutating the set mid-iteration.
func (n *Notifier) dispatch(ev Event) {
	n.mu.Lock()
	waiters := n.waiters
	n.waiters = nil
	n.mu.Unlock()
	for _, ch := range waiters {
		ch <- ev
		close(ch)
	}
}

// shutdown closes the notifier and releases all registered waiters.
func (n *Notifier) shutdown() {
	n.mu.Lock()
	waiters := n.waiters
	n.waiters = nil
	n.closed = true
	n.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}
