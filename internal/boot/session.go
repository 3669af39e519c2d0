package boot

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
)

// Subscription names tracked by a Session.
const (
	subReachability       = "reachability"
	subBootMaintenance    = "boot-maintenance"
	subMarketConnection   = "market-connection"
	subCatalog            = "catalog"
	subAccountConnection  = "account-connection"
	subUserSession        = "user-session"
	subRuntimeMaintenance = "runtime-maintenance"
	subRuntimeVersion     = "runtime-version"
	subMaintenanceTimeout = "maintenance-timeout"
	subHealthCheck        = "health-check"
)

// bootWave lists the subscriptions created by the boot maintenance check and
// parallel loading. They are dropped when the network goes away.
var bootWave = []string{
	subBootMaintenance,
	subMaintenanceTimeout,
	subHealthCheck,
	subMarketConnection,
	subCatalog,
	subAccountConnection,
	subUserSession,
}

// Session owns every live subscription and pending timer of one boot run.
type Session struct {
	id     uuid.UUID
	mu     sync.Mutex
	subs   map[string]observable.Subscription
	timers map[*time.Timer]struct{}
	closed bool
}

func newSession() *Session {
	return &Session{
		id:     uuid.New(),
		subs:   make(map[string]observable.Subscription),
		timers: make(map[*time.Timer]struct{}),
	}
}

// ID returns the session identifier used to tag events.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Track stores sub under name, cancelling whatever was there before.
// On a closed session sub is cancelled immediately.
func (s *Session) Track(name string, sub observable.Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	prev := s.subs[name]
	s.subs[name] = sub
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// has reports whether a subscription is tracked under name.
func (s *Session) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[name]
	return ok
}

// Cancel cancels and forgets the named subscriptions.
func (s *Session) Cancel(names ...string) {
	s.mu.Lock()
	cancelled := make([]observable.Subscription, 0, len(names))
	for _, name := range names {
		if sub, ok := s.subs[name]; ok {
			cancelled = append(cancelled, sub)
			delete(s.subs, name)
		}
	}
	s.mu.Unlock()

	for _, sub := range cancelled {
		sub.Cancel()
	}
}

// AfterFunc runs fn after d unless the session is closed first.
func (s *Session) AfterFunc(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[timer]
		delete(s.timers, timer)
		s.mu.Unlock()
		if live {
			fn()
		}
	})
	s.timers[timer] = struct{}{}
}

// Active returns the names of the live subscriptions.
func (s *Session) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.subs))
	for name := range s.subs {
		names = append(names, name)
	}
	return names
}

// isClosed reports whether Close has been called.
func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels every subscription and pending timer. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	timers := s.timers
	s.subs = make(map[string]observable.Subscription)
	s.timers = make(map[*time.Timer]struct{})
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	for timer := range timers {
		timer.Stop()
	}
}
