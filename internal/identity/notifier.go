package identity

import "sync"

type listener struct {
	id int
	fn AuthStateFunc
}

// notifier fans auth-state changes out to subscribers. Deliveries are
// serialized, so every subscriber sees changes in the order they happened.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener

	deliver sync.Mutex
	wg      sync.WaitGroup
}

// subscribe registers fn. The first delivery waits for ready and reads the
// user through current at delivery time; it is dropped if done closes
// first or fn was unsubscribed in the meantime.
func (n *notifier) subscribe(fn AuthStateFunc, ready, done <-chan struct{}, current func() *User) func() {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, listener{id: id, fn: fn})
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		select {
		case <-ready:
		case <-done:
			return
		}
		n.deliver.Lock()
		defer n.deliver.Unlock()
		if !n.registered(id) {
			return
		}
		fn(current())
	}()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

// update applies change and delivers the user it returns. The delivery lock
// is held across both, so listeners observe changes in the order they were
// applied and the last delivery matches the last change.
func (n *notifier) update(change func() *User) {
	n.deliver.Lock()
	defer n.deliver.Unlock()
	n.publishLocked(change())
}

// publishLocked delivers u to every registered listener. The caller holds
// n.deliver.
func (n *notifier) publishLocked(u *User) {
	n.mu.Lock()
	snapshot := make([]listener, len(n.listeners))
	copy(snapshot, n.listeners)
	n.mu.Unlock()

	for _, l := range snapshot {
		if !n.registered(l.id) {
			continue
		}
		l.fn(u.Clone())
	}
}

func (n *notifier) registered(id int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

func (n *notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}

func (n *notifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// wait blocks until pending first deliveries have finished or been dropped.
func (n *notifier) wait() {
	n.wg.Wait()
}
