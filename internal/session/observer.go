package session

import (
	"sync"

	"github.com/marcus/habitchain/internal/identity"
)

// Observer mirrors the identity provider's auth state as a SessionState.
type Observer struct {
	source   identity.AuthStateSource
	onChange func(SessionState)

	mu          sync.Mutex
	state       SessionState
	unsubscribe func()
	started     bool
	stopped     bool
}

// NewObserver creates an observer that calls onChange (outside any lock)
// after every provider callback.
func NewObserver(source identity.AuthStateSource, onChange func(SessionState)) *Observer {
	if onChange == nil {
		onChange = func(SessionState) {}
	}
	return &Observer{source: source, onChange: onChange, state: Unknown()}
}

// Start registers the single provider callback. Later calls do nothing.
func (o *Observer) Start() {
	o.mu.Lock()
	if o.started || o.stopped {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	// Subscribe without holding the lock: a provider may deliver from
	// inside the call.
	unsubscribe := o.source.SubscribeToAuthState(o.handle)

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		unsubscribe()
		return
	}
	o.unsubscribe = unsubscribe
	o.mu.Unlock()
}

// Stop releases the subscription exactly once.
func (o *Observer) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	unsubscribe := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the latest session state.
func (o *Observer) State() SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Observer) handle(u *identity.User) {
	next := Unauthenticated()
	if u != nil {
		next = Authenticated(u.UID)
	}

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.state = next
	o.mu.Unlock()

	o.onChange(next)
}
