package gateway

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Channel is one reconnecting backend connection.
type Channel interface {
	Connect()
	Disconnect()
	SetQueryParam(key, value string)
	State() *observable.Value[types.ConnectionState]
}

// SessionExpirer is told when the account channel reports an expired session.
type SessionExpirer interface {
	Expire(reason string) error
}

// Config holds gateway configuration.
type Config struct {
	MarketData Channel
	Account    Channel
	Sessions   SessionExpirer
	Logger     *zap.Logger
}

// Gateway connects the market-data and account channels together.
type Gateway struct {
	marketData Channel
	account    Channel
	sessions   SessionExpirer
	logger     *zap.Logger
}

type accountMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

type marketMessage struct {
	Type string `json:"type"`
}

// New creates a gateway over the two channels.
func New(cfg Config) (*Gateway, error) {
	if cfg.MarketData == nil {
		return nil, errors.New("market data channel cannot be nil")
	}
	if cfg.Account == nil {
		return nil, errors.New("account channel cannot be nil")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session expirer cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Gateway{
		marketData: cfg.MarketData,
		account:    cfg.Account,
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
	}, nil
}

// Connect starts both channels. Already running channels are left alone.
func (g *Gateway) Connect() {
	g.logger.Info("gateway-connecting")
	g.marketData.Connect()
	g.account.Connect()
}

// Disconnect stops both channels.
func (g *Gateway) Disconnect() {
	g.marketData.Disconnect()
	g.account.Disconnect()
	g.logger.Info("gateway-disconnected")
}

// SetLanguage sets the language query parameter used by the next connection.
func (g *Gateway) SetLanguage(code string) {
	g.marketData.SetQueryParam("lang", code)
	g.account.SetQueryParam("lang", code)
	g.logger.Debug("gateway-language-set", zap.String("language", code))
}

// MarketDataState returns the market-data channel state.
func (g *Gateway) MarketDataState() *observable.Value[types.ConnectionState] {
	return g.marketData.State()
}

// AccountState returns the account channel state.
func (g *Gateway) AccountState() *observable.Value[types.ConnectionState] {
	return g.account.State()
}

// HandleMarketMessage counts market-data frames by type. Odds updates are
// consumed by screens, not by the boot flow.
func (g *Gateway) HandleMarketMessage(raw []byte) {
	var msg marketMessage
	err := json.Unmarshal(raw, &msg)
	if err != nil || msg.Type == "" {
		MessagesTotal.WithLabelValues("market-data", "invalid").Inc()
		return
	}
	MessagesTotal.WithLabelValues("market-data", msg.Type).Inc()
}

// HandleAccountMessage reacts to account channel frames.
func (g *Gateway) HandleAccountMessage(raw []byte) {
	var msg accountMessage
	err := json.Unmarshal(raw, &msg)
	if err != nil {
		MessagesTotal.WithLabelValues("account", "invalid").Inc()
		g.logger.Warn("account-message-invalid", zap.Error(err))
		return
	}

	switch msg.Type {
	case "session_expired":
		MessagesTotal.WithLabelValues("account", msg.Type).Inc()
		err = g.sessions.Expire(msg.Reason)
		if err != nil {
			g.logger.Debug("session-expiry-ignored", zap.Error(err))
		}

	default:
		MessagesTotal.WithLabelValues("account", "other").Inc()
	}
}
