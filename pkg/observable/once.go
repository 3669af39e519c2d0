package observable

import (
	"sync"
	"sync/atomic"
)

// SubscribeOnce delivers the first value satisfying match to fn and then cancels
// itself. Values that do not match are ignored. The returned Subscription can
// cancel the wait before it fires.
func SubscribeOnce[T any](v *Value[T], match func(T) bool, fn func(T)) Subscription {
	var (
		fired atomic.Bool
		mu    sync.Mutex
		inner Subscription
	)

	cancel := func() {
		mu.Lock()
		sub := inner
		mu.Unlock()
		if sub != nil {
			sub.Cancel()
		}
	}

	sub := v.Subscribe(func(val T) {
		if fired.Load() || !match(val) {
			return
		}
		if fired.Swap(true) {
			return
		}
		cancel()
		fn(val)
	})

	mu.Lock()
	inner = sub
	mu.Unlock()

	// The initial delivery happens inside Subscribe, before inner is assigned.
	if fired.Load() {
		sub.Cancel()
	}

	return Func(func() {
		fired.Store(true)
		sub.Cancel()
	})
}
