package boot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Snapshot is a state published through the controller, tagged with the
// orchestrator that produced it.
type Snapshot struct {
	Generation int
	SessionID  string
	State      types.AppState
}

// Controller owns the live Orchestrator and replaces it on language change.
// Presentation code subscribes to the controller once; the relay survives restarts.
type Controller struct {
	cfg    Config
	deps   Dependencies
	logger *zap.Logger

	restartMu sync.Mutex // serializes Restart

	mu         sync.Mutex // guards current, generation and relaySub
	current    *Orchestrator
	generation int
	relaySub   observable.Subscription

	forwardMu sync.Mutex // makes generation check + relay publish atomic
	relay     *observable.Value[Snapshot]
}

// NewController builds the first orchestrator. Call Start to boot it.
func NewController(cfg Config, deps Dependencies) (*Controller, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if deps.Localizer == nil {
		return nil, errMissing("localizer")
	}

	c := &Controller{
		cfg:    cfg,
		deps:   deps,
		logger: cfg.Logger,
		relay:  observable.NewValue(Snapshot{State: types.Initializing()}),
	}

	o, err := c.build(0)
	if err != nil {
		return nil, err
	}
	c.attach(o, 0)

	return c, nil
}

// Start initializes the current orchestrator.
func (c *Controller) Start() {
	c.Orchestrator().Initialize()
}

// Orchestrator returns the live orchestrator.
func (c *Controller) Orchestrator() *Orchestrator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Generation returns how many restarts have happened.
func (c *Controller) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// State returns the latest state published by the live orchestrator.
func (c *Controller) State() types.AppState {
	return c.relay.Get().State
}

// Snapshot returns the latest published snapshot.
func (c *Controller) Snapshot() Snapshot {
	return c.relay.Get()
}

// Subscribe delivers the current snapshot and every later one to fn.
// Subscribers must not call Restart from inside fn.
func (c *Controller) Subscribe(fn func(Snapshot)) observable.Subscription {
	return c.relay.Subscribe(fn)
}

// RetryFromError forwards to the live orchestrator.
func (c *Controller) RetryFromError() {
	c.Orchestrator().RetryFromError()
}

// DismissAvailableUpdate forwards to the live orchestrator.
func (c *Controller) DismissAvailableUpdate() {
	c.Orchestrator().DismissAvailableUpdate()
}

// StartRuntimeMonitoring forwards to the live orchestrator.
func (c *Controller) StartRuntimeMonitoring() {
	c.Orchestrator().StartRuntimeMonitoring()
}

// Restart tears down the live session and boots a new one under language.
// Nothing is torn down if the localizer rejects the language.
func (c *Controller) Restart(language string) error {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()

	err := c.deps.Localizer.SetLanguage(language)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}

	c.deps.Gateway.SetLanguage(language)
	c.deps.Gateway.Disconnect()

	c.mu.Lock()
	old := c.current
	oldSub := c.relaySub
	nextGen := c.generation + 1
	c.mu.Unlock()

	old.Close()
	if oldSub != nil {
		oldSub.Cancel()
	}

	// Stale forwards that already passed Cancel are rejected by generation.
	c.forwardMu.Lock()
	c.mu.Lock()
	c.generation = nextGen
	c.mu.Unlock()
	c.forwardMu.Unlock()

	c.deps.Catalog.Reset()

	o, err := c.build(nextGen)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}
	c.attach(o, nextGen)

	RestartsTotal.Inc()
	c.logger.Info("orchestrator-restarted",
		zap.String("language", language),
		zap.Int("generation", nextGen),
		zap.String("session", o.SessionID()))

	o.Initialize()
	return nil
}

// Close shuts down the live orchestrator and stops relaying its states.
// The relay keeps the last published snapshot.
func (c *Controller) Close() {
	c.restartMu.Lock()
	defer c.restartMu.Unlock()

	c.mu.Lock()
	o := c.current
	sub := c.relaySub
	c.relaySub = nil
	c.mu.Unlock()

	o.Close()
	if sub != nil {
		sub.Cancel()
	}
}

func (c *Controller) build(generation int) (*Orchestrator, error) {
	cfg := c.cfg
	cfg.Generation = generation
	return New(cfg, c.deps)
}

func (c *Controller) attach(o *Orchestrator, generation int) {
	c.mu.Lock()
	c.current = o
	c.mu.Unlock()

	sub := o.Subscribe(func(state types.AppState) {
		c.forward(generation, o.SessionID(), state)
	})

	c.mu.Lock()
	c.relaySub = sub
	c.mu.Unlock()
}

func (c *Controller) forward(generation int, sessionID string, state types.AppState) {
	c.forwardMu.Lock()
	defer c.forwardMu.Unlock()

	c.mu.Lock()
	live := generation == c.generation
	c.mu.Unlock()

	if !live {
		EventsDroppedTotal.WithLabelValues("stale_generation").Inc()
		return
	}

	c.relay.Set(Snapshot{Generation: generation, SessionID: sessionID, State: state})
}

// AwaitUsable blocks until the app is Ready and the market-data channel is
// connected, or ctx is done. Deep links and catalog reads wait on this.
func (c *Controller) AwaitUsable(ctx context.Context) error {
	usable := make(chan struct{}, 1)
	check := func() {
		if c.State().Is(types.StateReady) && c.deps.Gateway.MarketDataState().Get() == types.Connected {
			select {
			case usable <- struct{}{}:
			default:
			}
		}
	}

	stateSub := c.relay.Subscribe(func(Snapshot) { check() })
	defer stateSub.Cancel()
	connSub := c.deps.Gateway.MarketDataState().Subscribe(func(types.ConnectionState) { check() })
	defer connSub.Cancel()

	select {
	case <-usable:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
