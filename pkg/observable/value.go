// Package observable provides a latest-value container with change subscriptions.
//
// A Value always holds a current value. Subscribers receive the current value
// on Subscribe and every subsequent Set. Each subscriber sees values in the
// order they were stored: a delivery older than one it has already received
// is dropped. Callbacks run without any lock held, so a callback may call
// back into the Value; a value set from inside a callback reaches that same
// subscriber after the callback returns.
package observable

import (
	"sync"
	"sync/atomic"
)

// Subscription is a handle to a registered callback.
type Subscription interface {
	// Cancel stops further deliveries. It is safe to call more than once.
	Cancel()
}

// Func adapts a function to the Subscription interface.
type Func func()

// Cancel implements Subscription.
func (f Func) Cancel() {
	if f != nil {
		f()
	}
}

// Value is a concurrency-safe latest-value broadcast cell.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	version uint64
	nextID  uint64
	subs    map[uint64]*subscriber[T]
}

// subscriber serializes deliveries to one callback. The goroutine that finds
// the mailbox idle drains it; concurrent or nested deliveries only enqueue.
type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool

	mu       sync.Mutex
	pending  []delivery[T]
	latest   uint64
	draining bool
}

type delivery[T any] struct {
	version uint64
	val     T
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		version: 1,
		subs:    make(map[uint64]*subscriber[T]),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set stores val and delivers it to every active subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.current = val
	v.version++
	d := delivery[T]{version: v.version, val: val}
	targets := v.snapshotLocked()
	v.mu.Unlock()

	v.broadcast(targets, d)
}

// Update applies fn to the current value under the lock and delivers the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	next := fn(v.current)
	v.current = next
	v.version++
	d := delivery[T]{version: v.version, val: next}
	targets := v.snapshotLocked()
	v.mu.Unlock()

	v.broadcast(targets, d)
}

// UpdateIf is Update with a veto: when fn reports false nothing is stored or
// delivered. It returns whether the value changed.
func (v *Value[T]) UpdateIf(fn func(T) (T, bool)) bool {
	v.mu.Lock()
	next, ok := fn(v.current)
	if !ok {
		v.mu.Unlock()
		return false
	}
	v.current = next
	v.version++
	d := delivery[T]{version: v.version, val: next}
	targets := v.snapshotLocked()
	v.mu.Unlock()

	v.broadcast(targets, d)
	return true
}

func (v *Value[T]) snapshotLocked() []*subscriber[T] {
	targets := make([]*subscriber[T], 0, len(v.subs))
	for _, s := range v.subs {
		targets = append(targets, s)
	}
	return targets
}

func (v *Value[T]) broadcast(targets []*subscriber[T], d delivery[T]) {
	for _, s := range targets {
		s.deliver(d)
	}
}

// Subscribe registers fn and immediately delivers the current value to it.
func (v *Value[T]) Subscribe(fn func(T)) Subscription {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = s
	d := delivery[T]{version: v.version, val: v.current}
	v.mu.Unlock()

	s.deliver(d)

	return Func(func() {
		if !s.active.Swap(false) {
			return
		}
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	})
}

// SubscriberCount returns the number of active subscribers.
func (v *Value[T]) SubscriberCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

func (s *subscriber[T]) deliver(d delivery[T]) {
	s.mu.Lock()
	if d.version <= s.latest {
		s.mu.Unlock()
		return
	}
	s.latest = d.version
	s.pending = append(s.pending, d)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending[0] = delivery[T]{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		if s.active.Load() {
			s.fn(next.val)
		}
	}
}
