package testutil

import (
	"context"
	"sync"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
)

// MockReachability is a controllable reachability monitor.
type MockReachability struct {
	StartErr error
	value    *observable.Value[types.Reachability]
	mu       sync.Mutex
	starts   int
}

// NewMockReachability creates a monitor that has not resolved yet.
func NewMockReachability() *MockReachability {
	return &MockReachability{
		value: observable.NewValue(types.ReachabilityUnknown),
	}
}

// Start records the call and returns StartErr.
func (m *MockReachability) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	return m.StartErr
}

// Reachability returns the observable signal.
func (m *MockReachability) Reachability() *observable.Value[types.Reachability] {
	return m.value
}

// Emit publishes a reachability value.
func (m *MockReachability) Emit(r types.Reachability) {
	m.value.Set(r)
}

// Starts returns how many times Start was called.
func (m *MockReachability) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// MockSettingsFeed is a controllable maintenance and version feed.
type MockSettingsFeed struct {
	maintenance *observable.Value[types.Maintenance]
	version     *observable.Value[types.VersionInfo]
}

// NewMockSettingsFeed creates a feed with unknown maintenance and no version bounds.
func NewMockSettingsFeed() *MockSettingsFeed {
	return &MockSettingsFeed{
		maintenance: observable.NewValue(types.Maintenance{}),
		version:     observable.NewValue(types.VersionInfo{}),
	}
}

// Maintenance returns the maintenance observable.
func (m *MockSettingsFeed) Maintenance() *observable.Value[types.Maintenance] {
	return m.maintenance
}

// Version returns the version observable.
func (m *MockSettingsFeed) Version() *observable.Value[types.VersionInfo] {
	return m.version
}

// EmitMaintenance publishes a maintenance event.
func (m *MockSettingsFeed) EmitMaintenance(ev types.Maintenance) {
	m.maintenance.Set(ev)
}

// EmitVersion publishes a version snapshot.
func (m *MockSettingsFeed) EmitVersion(required, current string) {
	m.version.Set(types.VersionInfo{Required: required, Current: current})
}

// MockGateway is a controllable connection gateway. Connect does not change
// channel state unless AutoConnect is set.
type MockGateway struct {
	AutoConnect bool

	market  *observable.Value[types.ConnectionState]
	account *observable.Value[types.ConnectionState]

	mu          sync.Mutex
	connects    int
	disconnects int
	languages   []string
}

// NewMockGateway creates a gateway with both channels disconnected.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		market:  observable.NewValue(types.Disconnected),
		account: observable.NewValue(types.Disconnected),
	}
}

// Connect records the call.
func (m *MockGateway) Connect() {
	m.mu.Lock()
	m.connects++
	auto := m.AutoConnect
	m.mu.Unlock()

	if auto {
		m.market.Set(types.Connected)
		m.account.Set(types.Connected)
	}
}

// Disconnect records the call and drops both channels.
func (m *MockGateway) Disconnect() {
	m.mu.Lock()
	m.disconnects++
	m.mu.Unlock()

	m.market.Set(types.Disconnected)
	m.account.Set(types.Disconnected)
}

// SetLanguage records the language.
func (m *MockGateway) SetLanguage(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.languages = append(m.languages, code)
}

// MarketDataState returns the market-data channel state.
func (m *MockGateway) MarketDataState() *observable.Value[types.ConnectionState] {
	return m.market
}

// AccountState returns the account channel state.
func (m *MockGateway) AccountState() *observable.Value[types.ConnectionState] {
	return m.account
}

// EmitMarket publishes a market-data channel state.
func (m *MockGateway) EmitMarket(c types.ConnectionState) {
	m.market.Set(c)
}

// EmitAccount publishes an account channel state.
func (m *MockGateway) EmitAccount(c types.ConnectionState) {
	m.account.Set(c)
}

// Connects returns how many times Connect was called.
func (m *MockGateway) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

// Disconnects returns how many times Disconnect was called.
func (m *MockGateway) Disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

// Languages returns every language set, in order.
func (m *MockGateway) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.languages))
	copy(out, m.languages)
	return out
}

// MockCatalog is a controllable catalog loader. RequestInitialLoad moves to
// Loading; tests complete the load with Succeed or Fail.
type MockCatalog struct {
	state *observable.Value[types.CatalogState]

	mu       sync.Mutex
	requests int
	resets   int
}

// NewMockCatalog creates an idle catalog.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		state: observable.NewValue(types.CatalogState{Phase: types.CatalogIdle}),
	}
}

// RequestInitialLoad records the call and publishes Loading.
func (m *MockCatalog) RequestInitialLoad() {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()

	m.state.Set(types.CatalogState{Phase: types.CatalogLoading})
}

// Reset records the call and returns to Idle.
func (m *MockCatalog) Reset() {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()

	m.state.Set(types.CatalogState{Phase: types.CatalogIdle})
}

// State returns the lifecycle observable.
func (m *MockCatalog) State() *observable.Value[types.CatalogState] {
	return m.state
}

// Succeed publishes Loaded with sports.
func (m *MockCatalog) Succeed(sports ...types.Sport) {
	m.state.Set(types.CatalogState{Phase: types.CatalogLoaded, Sports: sports})
}

// Fail publishes Failed.
func (m *MockCatalog) Fail() {
	m.state.Set(types.CatalogState{Phase: types.CatalogFailed})
}

// Requests returns how many times RequestInitialLoad was called.
func (m *MockCatalog) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// Resets returns how many times Reset was called.
func (m *MockCatalog) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// MockUserSession is a controllable user session store.
type MockUserSession struct {
	user *observable.Value[*types.UserProfile]
}

// NewMockUserSession creates a store without a logged-in user.
func NewMockUserSession() *MockUserSession {
	return &MockUserSession{
		user: observable.NewValue[*types.UserProfile](nil),
	}
}

// User returns the user observable.
func (m *MockUserSession) User() *observable.Value[*types.UserProfile] {
	return m.user
}

// Login publishes a user.
func (m *MockUserSession) Login(profile *types.UserProfile) {
	m.user.Set(profile)
}

// Logout clears the user.
func (m *MockUserSession) Logout() {
	m.user.Set(nil)
}

// MockCounter counts Start or Refresh calls.
type MockCounter struct {
	mu    sync.Mutex
	calls int
}

// Start records a call.
func (m *MockCounter) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
}

// Refresh records a call.
func (m *MockCounter) Refresh() {
	m.Start()
}

// Calls returns the number of recorded calls.
func (m *MockCounter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockLocalizer records language changes and rejects languages not in Supported.
type MockLocalizer struct {
	Supported map[string]bool
	mu        sync.Mutex
	language  string
}

// NewMockLocalizer creates a localizer supporting the given languages.
func NewMockLocalizer(initial string, supported ...string) *MockLocalizer {
	set := make(map[string]bool, len(supported))
	for _, code := range supported {
		set[code] = true
	}
	return &MockLocalizer{Supported: set, language: initial}
}

// SetLanguage switches the active language.
func (m *MockLocalizer) SetLanguage(code string) error {
	if !m.Supported[code] {
		return types.ErrUnsupportedLanguage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = code
	return nil
}

// Language returns the active language.
func (m *MockLocalizer) Language() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

// MockHealthCheck returns a health check that blocks until Release is called
// and then returns Err.
type MockHealthCheck struct {
	Err     error
	release chan struct{}
	once    sync.Once
}

// NewMockHealthCheck creates a pending health check.
func NewMockHealthCheck(err error) *MockHealthCheck {
	return &MockHealthCheck{Err: err, release: make(chan struct{})}
}

// Check implements the health check signature.
func (m *MockHealthCheck) Check(ctx context.Context) error {
	select {
	case <-m.release:
		return m.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release lets the check return.
func (m *MockHealthCheck) Release() {
	m.once.Do(func() { close(m.release) })
}
