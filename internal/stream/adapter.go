// Package stream bridges push-style producers to pull-style consumers.
package stream

import (
	"context"
	"errors"
	"iter"
	"sync"
)

// ErrClosed is returned by Push after the adapter has been closed.
var ErrClosed = errors.New("stream: adapter closed")

// Item is one delivered value together with its arrival sequence number.
type Item[T any] struct {
	Seq   uint64 // 1-based, in push order
	Value T
}

// Adapter turns notifications from a producer into a sequence that a single
// consumer advances with Next.
//
// Pushed values are kept in an unbounded FIFO queue until consumed. A stalled
// consumer therefore grows the queue without limit.
type Adapter[T any] struct {
	mu     sync.Mutex
	queue  []Item[T]
	seq    uint64
	closed bool
	err    error

	// wake holds at most one pending signal; several pushes between two
	// Next calls coalesce into one.
	wake chan struct{}

	release   func()
	closeOnce sync.Once
}

// New creates an open adapter. release, if non-nil, is called once on Close
// to detach the adapter from its producer.
func New[T any](release func()) *Adapter[T] {
	return &Adapter[T]{
		wake:    make(chan struct{}, 1),
		release: release,
	}
}

// Push appends v to the queue and wakes a suspended consumer.
func (a *Adapter[T]) Push(v T) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.seq++
	a.queue = append(a.queue, Item[T]{Seq: a.seq, Value: v})
	a.mu.Unlock()

	a.signal()
	return nil
}

// Fail closes the adapter and records err as the cause. The consumer still
// sees a normal end of sequence; Err reports the cause afterwards.
func (a *Adapter[T]) Fail(err error) {
	a.mu.Lock()
	if !a.closed && a.err == nil {
		a.err = err
	}
	a.mu.Unlock()
	a.Close()
}

// Close ends the sequence. Values already queued are still delivered.
// Safe to call multiple times and from any goroutine.
func (a *Adapter[T]) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		a.signal()
		if a.release != nil {
			a.release()
		}
	})
}

// Next returns the oldest undelivered item. It blocks until an item arrives,
// the adapter is closed, or ctx is done. ok is false at end of sequence and
// when ctx is done.
func (a *Adapter[T]) Next(ctx context.Context) (item Item[T], ok bool) {
	for {
		a.mu.Lock()
		if len(a.queue) > 0 {
			item = a.queue[0]
			a.queue[0] = Item[T]{}
			a.queue = a.queue[1:]
			a.mu.Unlock()
			return item, true
		}
		closed := a.closed
		a.mu.Unlock()

		if closed {
			return item, false
		}

		select {
		case <-a.wake:
		case <-ctx.Done():
			return item, false
		}
	}
}

// All returns an iterator over the remaining values.
func (a *Adapter[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := a.Next(ctx)
			if !ok || !yield(item.Value) {
				return
			}
		}
	}
}

// Err returns the failure passed to Fail, or nil.
func (a *Adapter[T]) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Closed reports whether Close or Fail has been called.
func (a *Adapter[T]) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Len returns the number of queued, undelivered items.
func (a *Adapter[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Adapter[T]) signal() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}
