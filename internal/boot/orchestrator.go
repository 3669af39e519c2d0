package boot

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/mselser95/sportsbook-boot/pkg/versioncheck"
	"go.uber.org/zap"
)

const (
	// DefaultVersionSettleDelay is applied after each version feed event before acting on it.
	DefaultVersionSettleDelay = 3 * time.Second

	// DefaultHealthCheckTimeout bounds the optional pre-connection health check.
	DefaultHealthCheckTimeout = 10 * time.Second
)

// Config holds orchestrator configuration.
type Config struct {
	InstalledVersion        string
	VersionSettleDelay      time.Duration
	MaintenanceCheckTimeout time.Duration // zero disables the boot maintenance timeout
	HealthCheckTimeout      time.Duration
	Generation              int // restart generation, for logs
	Logger                  *zap.Logger
}

// Orchestrator owns the application state and derives it from the collaborator feeds.
// All state changes happen inside serialized event handlers.
type Orchestrator struct {
	cfg    Config
	deps   Dependencies
	logger *zap.Logger
	state  *observable.Value[types.AppState]
	queue  eventQueue
	closed atomic.Bool

	sessionMu sync.Mutex
	session   *Session

	// Handler-owned fields. Only touched from inside dispatched events.
	seq                uint64
	tokens             map[string]uint64
	initialized        bool
	reachability       types.Reachability
	catalogInFlight    bool
	accountState       types.ConnectionState
	user               *types.UserProfile
	favoritesRefreshed bool
	runtimeStarted     bool
	dismissedCurrent   string

	// Latest settled version decision. It outlives boot waves so a
	// mandatory update survives outages and maintenance windows.
	versionDecision versioncheck.Decision
	settledCurrent  string
}

func errMissing(what string) error {
	return fmt.Errorf("%s cannot be nil", what)
}

// New creates an orchestrator in the Initializing state. Nothing is subscribed
// until Initialize is called.
func New(cfg Config, deps Dependencies) (*Orchestrator, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	err := deps.validate()
	if err != nil {
		return nil, err
	}

	if cfg.InstalledVersion == "" {
		return nil, errors.New("installed version cannot be empty")
	}

	if cfg.VersionSettleDelay < 0 {
		return nil, errors.New("version settle delay cannot be negative")
	}

	if cfg.HealthCheckTimeout <= 0 {
		cfg.HealthCheckTimeout = DefaultHealthCheckTimeout
	}

	o := &Orchestrator{
		cfg:     cfg,
		deps:    deps,
		state:   observable.NewValue(types.Initializing()),
		session: newSession(),
		tokens:  make(map[string]uint64),
	}
	o.logger = cfg.Logger.With(zap.Int("generation", cfg.Generation))
	setStateGauge(types.Initializing())

	return o, nil
}

// State returns the current application state.
func (o *Orchestrator) State() types.AppState {
	return o.state.Get()
}

// Subscribe delivers the current state and every later change to fn.
func (o *Orchestrator) Subscribe(fn func(types.AppState)) observable.Subscription {
	return o.state.Subscribe(fn)
}

// SessionID returns the identifier of the live boot session.
func (o *Orchestrator) SessionID() string {
	return o.currentSession().ID().String()
}

// ActiveSubscriptions returns the names of the live session subscriptions.
func (o *Orchestrator) ActiveSubscriptions() []string {
	return o.currentSession().Active()
}

// Close cancels every subscription of the session and drops all further events.
func (o *Orchestrator) Close() {
	if o.closed.Swap(true) {
		return
	}
	o.currentSession().Close()
	o.logger.Info("orchestrator-closed", zap.String("session", o.SessionID()))
}

func (o *Orchestrator) currentSession() *Session {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()
	return o.session
}

func (o *Orchestrator) replaceSession() *Session {
	o.sessionMu.Lock()
	old := o.session
	o.session = newSession()
	next := o.session
	o.sessionMu.Unlock()

	old.Close()
	return next
}

func (o *Orchestrator) setState(next types.AppState) {
	prev := o.state.Get()
	if prev == next {
		o.logger.Debug("state-unchanged", zap.Stringer("state", next))
		return
	}

	TransitionsTotal.WithLabelValues(prev.Kind.String(), next.Kind.String()).Inc()
	setStateGauge(next)

	o.logger.Info("state-transition",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.String("session", o.currentSession().ID().String()))

	o.state.Set(next)
}

// fail moves to Error(kind). The session is terminal: every subscription is
// cancelled and only RetryFromError starts over.
func (o *Orchestrator) fail(kind types.ErrorKind) {
	o.setState(types.Failed(kind))
	o.tokens = make(map[string]uint64)
	o.currentSession().Close()
}

// resetBootFields clears handler-owned progress for a fresh session.
func (o *Orchestrator) resetBootFields() {
	o.tokens = make(map[string]uint64)
	o.initialized = false
	o.reachability = types.ReachabilityUnknown
	o.catalogInFlight = false
	o.accountState = types.Disconnected
	o.user = nil
	o.favoritesRefreshed = false
	o.runtimeStarted = false
	o.dismissedCurrent = ""
}

// settledState is the state the app rests in once nothing else blocks it:
// Ready unless the recorded version decision asks for an update.
func (o *Orchestrator) settledState() types.AppState {
	switch o.versionDecision {
	case versioncheck.DecisionUpdateRequired:
		return types.UpdateRequired()
	case versioncheck.DecisionUpdateAvailable:
		if o.settledCurrent != o.dismissedCurrent {
			return types.UpdateAvailable()
		}
	}
	return types.Ready()
}

// pastServicesConnecting reports whether boot already completed or stopped.
func (o *Orchestrator) pastServicesConnecting() bool {
	switch o.state.Get().Kind {
	case types.StateReady, types.StateUpdateAvailable, types.StateUpdateRequired, types.StateError:
		return true
	default:
		return false
	}
}
