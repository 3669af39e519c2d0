package gateway

import (
	"sync"
	"testing"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChannel struct {
	state       *observable.Value[types.ConnectionState]
	connects    int
	disconnects int
	params      map[string]string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		state:  observable.NewValue(types.Disconnected),
		params: map[string]string{},
	}
}

func (c *fakeChannel) Connect() {
	c.connects++
	c.state.Set(types.Connected)
}

func (c *fakeChannel) Disconnect() {
	c.disconnects++
	c.state.Set(types.Disconnected)
}

func (c *fakeChannel) SetQueryParam(key, value string) { c.params[key] = value }

func (c *fakeChannel) State() *observable.Value[types.ConnectionState] { return c.state }

type fakeExpirer struct {
	mu      sync.Mutex
	reasons []string
	err     error
}

func (e *fakeExpirer) Expire(reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reasons = append(e.reasons, reason)
	return e.err
}

func newTestGateway(t *testing.T) (*Gateway, *fakeChannel, *fakeChannel, *fakeExpirer) {
	t.Helper()

	market, account, expirer := newFakeChannel(), newFakeChannel(), &fakeExpirer{}
	g, err := New(Config{
		MarketData: market,
		Account:    account,
		Sessions:   expirer,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return g, market, account, expirer
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Logger: zaptest.NewLogger(t)})
	require.EqualError(t, err, "market data channel cannot be nil")
}

func TestGateway_ConnectDisconnect(t *testing.T) {
	g, market, account, _ := newTestGateway(t)

	g.Connect()
	assert.Equal(t, types.Connected, g.MarketDataState().Get())
	assert.Equal(t, types.Connected, g.AccountState().Get())

	g.Disconnect()
	assert.Equal(t, types.Disconnected, g.MarketDataState().Get())
	assert.Equal(t, types.Disconnected, g.AccountState().Get())

	assert.Equal(t, 1, market.connects)
	assert.Equal(t, 1, account.disconnects)
}

func TestGateway_SetLanguage(t *testing.T) {
	g, market, account, _ := newTestGateway(t)

	g.SetLanguage("fr")

	assert.Equal(t, "fr", market.params["lang"])
	assert.Equal(t, "fr", account.params["lang"])
}

func TestGateway_HandleAccountMessage(t *testing.T) {
	g, _, _, expirer := newTestGateway(t)

	g.HandleAccountMessage([]byte(`{"type":"session_expired","reason":"token revoked"}`))
	g.HandleAccountMessage([]byte(`{"type":"balance","amount":12}`))
	g.HandleAccountMessage([]byte(`not json`))

	assert.Equal(t, []string{"token revoked"}, expirer.reasons)
}

func TestGateway_HandleMarketMessage(t *testing.T) {
	g, _, _, _ := newTestGateway(t)

	assert.NotPanics(t, func() {
		g.HandleMarketMessage([]byte(`{"type":"odds","eventId":"e-1"}`))
		g.HandleMarketMessage([]byte(`[]`))
	})
}
