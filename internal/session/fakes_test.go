package session

import (
	"sync"
	"time"

	"github.com/marcus/habitchain/internal/identity"
)

// manualScheduler is a Scheduler driven by advance instead of wall time.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Duration
	f       func()
	stopped bool
	fired   bool
	s       *manualScheduler
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

func (m *manualScheduler) schedule(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{due: m.now + d, f: f, s: m}
	m.timers = append(m.timers, t)
	return t
}

// advance moves the clock forward and fires every timer that came due.
func (m *manualScheduler) advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []func()
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.due <= m.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	m.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// forceFire runs every scheduled callback, even stopped ones, to model a
// timer that fired concurrently with Stop.
func (m *manualScheduler) forceFire() {
	m.mu.Lock()
	var all []func()
	for _, t := range m.timers {
		all = append(all, t.f)
	}
	m.mu.Unlock()
	for _, f := range all {
		f()
	}
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeSource is an AuthStateSource whose callbacks fire only on emit.
type fakeSource struct {
	mu           sync.Mutex
	nextID       int
	fns          map[int]identity.AuthStateFunc
	ever         []identity.AuthStateFunc
	subscribes   int
	unsubscribes int
}

func newFakeSource() *fakeSource {
	return &fakeSource{fns: make(map[int]identity.AuthStateFunc)}
}

func (f *fakeSource) SubscribeToAuthState(fn identity.AuthStateFunc) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.fns[id] = fn
	f.ever = append(f.ever, fn)
	f.subscribes++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribes++
		delete(f.fns, id)
	}
}

// emit calls every currently registered callback.
func (f *fakeSource) emit(u *identity.User) {
	f.mu.Lock()
	fns := make([]identity.AuthStateFunc, 0, len(f.fns))
	for _, fn := range f.fns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

// emitLate calls every callback ever registered, released or not, to
// model a provider delivery that raced with unsubscribe.
func (f *fakeSource) emitLate(u *identity.User) {
	f.mu.Lock()
	fns := append([]identity.AuthStateFunc(nil), f.ever...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

func (f *fakeSource) counts() (subscribes, unsubscribes, active int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.unsubscribes, len(f.fns)
}

// routeLog records route notifications.
type routeLog struct {
	mu     sync.Mutex
	routes []RouteGroup
}

func (r *routeLog) record(g RouteGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, g)
}

func (r *routeLog) all() []RouteGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RouteGroup, len(r.routes))
	copy(out, r.routes)
	return out
}
