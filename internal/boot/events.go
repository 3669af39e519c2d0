package boot

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"go.uber.org/zap"
)

// event is one unit of work for the orchestrator. Command events carry
// uuid.Nil and are never filtered by session.
type event struct {
	session uuid.UUID
	name    string
	handle  func()
}

// eventQueue serializes handlers without a dedicated goroutine: the first
// poster drains, later posters (including handlers posting to themselves)
// only enqueue.
type eventQueue struct {
	mu       sync.Mutex
	pending  []event
	draining bool
}

// push enqueues ev and reports whether the caller must drain.
func (q *eventQueue) push(ev event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, ev)
	if q.draining {
		return false
	}
	q.draining = true
	return true
}

func (q *eventQueue) next() (event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		q.draining = false
		return event{}, false
	}

	ev := q.pending[0]
	q.pending[0] = event{}
	q.pending = q.pending[1:]
	return ev, true
}

// post enqueues a handler and drains the queue if nobody else is.
func (o *Orchestrator) post(session uuid.UUID, name string, handle func()) {
	if !o.queue.push(event{session: session, name: name, handle: handle}) {
		return
	}

	for {
		ev, ok := o.queue.next()
		if !ok {
			return
		}
		o.dispatch(ev)
	}
}

func (o *Orchestrator) command(name string, handle func()) {
	o.post(uuid.Nil, name, handle)
}

func (o *Orchestrator) dispatch(ev event) {
	if o.closed.Load() {
		EventsDroppedTotal.WithLabelValues("orchestrator_closed").Inc()
		o.logger.Debug("event-dropped-orchestrator-closed", zap.String("event", ev.name))
		return
	}

	if ev.session != uuid.Nil && ev.session != o.currentSession().ID() {
		EventsDroppedTotal.WithLabelValues("stale_session").Inc()
		o.logger.Debug("event-dropped-stale-session",
			zap.String("event", ev.name),
			zap.String("event-session", ev.session.String()))
		return
	}

	EventsHandledTotal.WithLabelValues(ev.name).Inc()
	ev.handle()
}

// watch subscribes to v under name for the current session. Deliveries are
// posted as events and discarded once name has been untracked or re-tracked,
// so values already queued from a cancelled subscription never reach handle.
func watch[T any](o *Orchestrator, name string, v *observable.Value[T], handle func(T)) {
	sess := o.currentSession()
	o.seq++
	token := o.seq
	o.tokens[name] = token

	sub := v.Subscribe(func(val T) {
		o.post(sess.ID(), name, func() {
			if o.tokens[name] != token {
				EventsDroppedTotal.WithLabelValues("stale_subscription").Inc()
				return
			}
			handle(val)
		})
	})
	sess.Track(name, sub)
}

// watchOnce is watch for the first value satisfying match. The subscription
// ends once that value is delivered.
func watchOnce[T any](o *Orchestrator, name string, v *observable.Value[T], match func(T) bool, handle func(T)) {
	sess := o.currentSession()
	o.seq++
	token := o.seq
	o.tokens[name] = token

	sub := observable.SubscribeOnce(v, match, func(val T) {
		o.post(sess.ID(), name, func() {
			if o.tokens[name] != token {
				EventsDroppedTotal.WithLabelValues("stale_subscription").Inc()
				return
			}
			delete(o.tokens, name)
			sess.Cancel(name)
			handle(val)
		})
	})
	sess.Track(name, sub)
}

// timeout runs handle as an event after d. It is tracked under name like a
// subscription, so untracking it stops the timer and voids a queued firing.
func (o *Orchestrator) timeout(name string, d time.Duration, handle func()) {
	sess := o.currentSession()
	o.seq++
	token := o.seq
	o.tokens[name] = token

	timer := time.AfterFunc(d, func() {
		o.post(sess.ID(), name, func() {
			if o.tokens[name] != token {
				EventsDroppedTotal.WithLabelValues("stale_subscription").Inc()
				return
			}
			delete(o.tokens, name)
			sess.Cancel(name)
			handle()
		})
	})
	sess.Track(name, observable.Func(func() { timer.Stop() }))
}

// untrack cancels the named subscriptions and invalidates queued deliveries.
func (o *Orchestrator) untrack(names ...string) {
	for _, name := range names {
		delete(o.tokens, name)
	}
	o.currentSession().Cancel(names...)
}
