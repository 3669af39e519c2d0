package reachability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/observable"
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"go.uber.org/zap"
)

// Config holds reachability monitor configuration.
type Config struct {
	ProbeURL     string
	Interval     time.Duration
	ProbeTimeout time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Monitor probes an HTTP endpoint periodically and publishes whether the
// network path to it is usable. Any HTTP response counts as reachable.
type Monitor struct {
	probeURL string
	interval time.Duration
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger

	value *observable.Value[types.Reachability]

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a monitor in the unknown state.
func New(cfg Config) (*Monitor, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Monitor{
		probeURL: cfg.ProbeURL,
		interval: interval,
		timeout:  timeout,
		client:   client,
		logger:   cfg.Logger,
		value:    observable.NewValue(types.ReachabilityUnknown),
	}, nil
}

// Reachability returns the observable reachability signal.
func (m *Monitor) Reachability() *observable.Value[types.Reachability] {
	return m.value
}

// Start validates the probe target and begins probing. Starting a running
// monitor does nothing; a stopped monitor cannot be restarted.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return types.ErrMonitorStopped
	}
	if m.started {
		return nil
	}

	err := validateProbeURL(m.probeURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.started = true

	m.logger.Info("reachability-monitor-starting",
		zap.String("probe-url", m.probeURL),
		zap.Duration("interval", m.interval))

	m.wg.Add(1)
	go m.run(ctx)

	return nil
}

// Stop ends probing and waits for the probe loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
	m.logger.Info("reachability-monitor-stopped")
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	next := types.Reachable

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, m.probeURL, nil)
	if err == nil {
		var resp *http.Response
		resp, err = m.client.Do(req)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	if ctx.Err() != nil {
		return
	}

	ProbeDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		next = types.Unreachable
		ProbesTotal.WithLabelValues("failure").Inc()
		m.logger.Debug("reachability-probe-failed", zap.Error(err))
	} else {
		ProbesTotal.WithLabelValues("success").Inc()
	}

	prev := m.value.Get()
	if prev == next {
		return
	}

	m.logger.Info("reachability-changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next))
	m.value.Set(next)
}

// Check issues a GET against the probe URL and fails unless the backend
// answers 2xx. Unlike the probe loop it cares about the status code.
func (m *Monitor) Check(ctx context.Context) error {
	err := validateProbeURL(m.probeURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.probeURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &types.HTTPStatusError{
			Endpoint:   m.probeURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func validateProbeURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidProbeURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", types.ErrInvalidProbeURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", types.ErrInvalidProbeURL)
	}
	return nil
}
