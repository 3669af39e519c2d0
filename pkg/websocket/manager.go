package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// ErrNotConnected is returned by Send while the channel has no live connection.
var ErrNotConnected = errors.New("websocket not connected")

// Handler receives every non-empty message read from the channel. It runs
// on the read goroutine.
type Handler func(message []byte)

// Config holds WebSocket manager configuration.
type Config struct {
	Channel               string
	URL                   string
	DialTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	Handler               Handler
	Logger                *zap.Logger
}

// Manager keeps a single WebSocket channel connected until Disconnect and
// publishes its connection state.
type Manager struct {
	config       Config
	logger       *zap.Logger
	reconnectMgr *ReconnectManager
	state        *observable.Value[types.ConnectionState]

	mu     sync.Mutex
	conn   *websocket.Conn
	query  url.Values
	cancel context.CancelFunc
	done   chan struct{}

	writeMu sync.Mutex
}

// New creates a disconnected manager. Call Connect to start it.
func New(cfg Config) *Manager {
	reconnectCfg := ReconnectConfig{
		Channel:           cfg.Channel,
		InitialDelay:      cfg.ReconnectInitialDelay,
		MaxDelay:          cfg.ReconnectMaxDelay,
		BackoffMultiplier: cfg.ReconnectBackoffMult,
		JitterPercent:     0.2,
	}

	return &Manager{
		config:       cfg,
		logger:       cfg.Logger.With(zap.String("channel", cfg.Channel)),
		reconnectMgr: NewReconnectManager(reconnectCfg, cfg.Logger),
		state:        observable.NewValue(types.Disconnected),
		query:        url.Values{},
	}
}

// State returns the observable connection state.
func (m *Manager) State() *observable.Value[types.ConnectionState] {
	return m.state
}

// SetQueryParam sets a query parameter used from the next dial on.
func (m *Manager) SetQueryParam(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query.Set(key, value)
}

// Connect starts the connection loop. It returns immediately and does
// nothing if the loop is already running.
func (m *Manager) Connect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	m.logger.Info("websocket-manager-starting", zap.String("url", m.config.URL))
	go m.run(ctx, m.done)
}

// Disconnect stops the connection loop, closes the connection and waits for
// the loop to exit. Connect may be called again afterwards.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	if cancel != nil {
		cancel()
	}
	if m.conn != nil {
		m.conn.Close()
	}
	m.mu.Unlock()

	if cancel == nil {
		return
	}

	<-done
	m.state.Set(types.Disconnected)
	m.logger.Info("websocket-manager-stopped")
}

// Send writes v as a JSON text message.
func (m *Manager) Send(v any) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err = conn.WriteMessage(websocket.TextMessage, payload)
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		m.state.Set(types.Connecting)

		err := m.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("websocket-connect-failed", zap.Error(err))

			err = m.reconnectMgr.Reconnect(ctx, m.connect)
			if err != nil {
				return
			}
		}

		m.state.Set(types.Connected)
		m.serve(ctx)

		if ctx.Err() != nil {
			return
		}
		m.state.Set(types.Disconnected)
		m.logger.Warn("connection-lost-initiating-reconnect")
	}
}

// connect dials the channel URL with the current query parameters.
func (m *Manager) connect(ctx context.Context) error {
	target, err := m.dialURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: m.config.DialTimeout,
	}

	m.logger.Debug("connecting-to-websocket", zap.String("url", target))

	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		conn.Close()
		return ctx.Err()
	}
	m.conn = conn
	m.mu.Unlock()

	ActiveConnections.WithLabelValues(m.config.Channel).Set(1)
	m.logger.Info("websocket-connected")

	return nil
}

func (m *Manager) dialURL() (string, error) {
	u, err := url.Parse(m.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	m.mu.Lock()
	q := u.Query()
	for key, values := range m.query {
		q[key] = append([]string(nil), values...)
	}
	m.mu.Unlock()

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// serve reads until the connection fails or ctx is done.
func (m *Manager) serve(ctx context.Context) {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	start := time.Now()
	stopPing := make(chan struct{})
	go m.pingLoop(conn, stopPing)

	defer func() {
		close(stopPing)
		conn.Close()

		m.mu.Lock()
		if m.conn == conn {
			m.conn = nil
		}
		m.mu.Unlock()

		ActiveConnections.WithLabelValues(m.config.Channel).Set(0)
		ConnectionDuration.WithLabelValues(m.config.Channel).Observe(time.Since(start).Seconds())
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warn("read-error", zap.Error(err))
			}
			return
		}

		if len(message) == 0 || string(message) == "[]" {
			m.logger.Debug("websocket-heartbeat-received", zap.Int("bytes", len(message)))
			continue
		}

		MessagesReceivedTotal.WithLabelValues(m.config.Channel).Inc()

		if m.config.Handler != nil {
			handled := time.Now()
			m.config.Handler(message)
			MessageLatencySeconds.WithLabelValues(m.config.Channel).Observe(time.Since(handled).Seconds())
		}
	}
}

func (m *Manager) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	if m.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			if err != nil {
				m.logger.Warn("ping-error", zap.Error(err))
			}
		}
	}
}
