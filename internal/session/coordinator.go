package session

import (
	"sync"
	"time"

	"github.com/marcus/habitchain/internal/identity"
	"go.uber.org/zap"
)

// Options configures a Coordinator.
type Options struct {
	SplashDelay time.Duration // 0 = DefaultSplashDelay
	Scheduler   Scheduler     // nil = RealScheduler
	Logger      *zap.Logger
}

// Coordinator owns the splash timer and the session observer and turns
// their state into a RouteGroup. Both resources are acquired by Start and
// released together by Stop.
type Coordinator struct {
	splash   *SplashTimer
	observer *Observer
	log      *zap.Logger

	// notifyMu serializes evaluate so the listener sees routes in order.
	notifyMu sync.Mutex

	mu       sync.Mutex
	route    RouteGroup
	listener func(RouteGroup)
	started  bool
	stopped  bool
}

// NewCoordinator creates a coordinator over source. Nothing runs until Start.
func NewCoordinator(source identity.AuthStateSource, opts Options) *Coordinator {
	if opts.SplashDelay <= 0 {
		opts.SplashDelay = DefaultSplashDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Coordinator{
		log:   opts.Logger.Named("session"),
		route: ShowSplash,
	}
	c.splash = NewSplashTimer(opts.SplashDelay, opts.Scheduler, func() {
		c.log.Debug("splash complete")
		c.evaluate()
	})
	c.observer = NewObserver(source, func(s SessionState) {
		c.log.Debug("session changed", zap.Stringer("state", s))
		c.evaluate()
	})
	return c
}

// OnRouteChange sets the function called whenever the route changes.
// It is called outside the coordinator's locks, one call at a time.
func (c *Coordinator) OnRouteChange(fn func(RouteGroup)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

// Start arms the splash timer and subscribes to auth state. Calling it
// more than once, or after Stop, does nothing.
func (c *Coordinator) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.splash.Start()
	c.observer.Start()
}

// Stop cancels the pending splash timer and releases the subscription.
// It is safe to call repeatedly; no route change is reported afterwards.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.splash.Stop()
	c.observer.Stop()
	c.log.Debug("coordinator stopped")
}

// Within runs fn between Start and Stop. Stop runs on every exit path,
// including a panic in fn.
func (c *Coordinator) Within(fn func() error) error {
	c.Start()
	defer c.Stop()
	return fn()
}

// Route returns the route for the current splash and session state.
func (c *Coordinator) Route() RouteGroup {
	return SelectRoute(c.splash.State(), c.observer.State())
}

// Session returns the observed session state.
func (c *Coordinator) Session() SessionState {
	return c.observer.State()
}

// Splash returns the splash state.
func (c *Coordinator) Splash() SplashState {
	return c.splash.State()
}

func (c *Coordinator) evaluate() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	next := SelectRoute(c.splash.State(), c.observer.State())
	prev := c.route
	c.route = next
	fn := c.listener
	c.mu.Unlock()

	if next == prev {
		return
	}
	c.log.Info("route changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	if fn != nil {
		fn(next)
	}
}
