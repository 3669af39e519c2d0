package websocket

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReconnectConfig holds the configuration for exponential backoff reconnection.
type ReconnectConfig struct {
	Channel           string
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%

	// Jitter returns a value in [0, 1). Defaults to math/rand.
	Jitter func() float64
}

// ReconnectManager retries a channel dial with capped exponential backoff.
// The backoff grows across failed attempts of one outage and starts over
// once a dial succeeds.
type ReconnectManager struct {
	config ReconnectConfig
	logger *zap.Logger

	mu       sync.Mutex
	delay    time.Duration
	attempts int
}

// NewReconnectManager creates a new reconnection manager with the specified config.
func NewReconnectManager(cfg ReconnectConfig, logger *zap.Logger) *ReconnectManager {
	if cfg.Jitter == nil {
		cfg.Jitter = rand.Float64
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}
	return &ReconnectManager{
		config: cfg,
		logger: logger,
		delay:  cfg.InitialDelay,
	}
}

// Reconnect sleeps for the current backoff, then dials. It repeats until a
// dial succeeds or ctx is done.
func (rm *ReconnectManager) Reconnect(ctx context.Context, dial func(context.Context) error) error {
	channel := zap.String("channel", rm.config.Channel)

	for {
		wait, attempt := rm.beginAttempt()
		ReconnectAttemptsTotal.WithLabelValues(rm.config.Channel).Inc()
		rm.logger.Info("websocket-reconnect-scheduled",
			channel,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait))

		err := sleep(ctx, wait)
		if err != nil {
			return err
		}

		err = dial(ctx)
		switch {
		case err == nil:
			rm.Reset()
			rm.logger.Info("websocket-reconnected", channel, zap.Int("attempts", attempt))
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		}

		ReconnectFailuresTotal.WithLabelValues(rm.config.Channel).Inc()
		rm.logger.Warn("websocket-reconnect-failed",
			channel,
			zap.Int("attempt", attempt),
			zap.Error(err))
		rm.grow()
	}
}

// Attempts returns the number of dials made in the current outage.
func (rm *ReconnectManager) Attempts() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.attempts
}

// Reset starts the next outage from the initial delay.
func (rm *ReconnectManager) Reset() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.delay = rm.config.InitialDelay
	rm.attempts = 0
}

func (rm *ReconnectManager) beginAttempt() (time.Duration, int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.attempts++
	return rm.jittered(), rm.attempts
}

// jittered stretches the current delay by up to JitterPercent. Callers hold mu.
func (rm *ReconnectManager) jittered() time.Duration {
	stretch := 1 + rm.config.Jitter()*rm.config.JitterPercent
	return time.Duration(float64(rm.delay) * stretch)
}

func (rm *ReconnectManager) grow() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.delay = time.Duration(float64(rm.delay) * rm.config.BackoffMultiplier)
	if rm.delay > rm.config.MaxDelay {
		rm.delay = rm.config.MaxDelay
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
