package network

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Pinger checks reachability. Every store backend satisfies it through Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Interval between checks (default 15s).
	Interval time.Duration
	// Timeout bounds a single check (default 3s).
	Timeout time.Duration
	// Initial is the state reported before the first check completes.
	Initial bool
}

// Monitor checks a remote in the background and caches the last result, so
// IsOnline never blocks on I/O.
type Monitor struct {
	pinger Pinger
	config MonitorConfig
	logger *slog.Logger
	online atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a Monitor. Call Start to begin probing.
func NewMonitor(p Pinger, cfg MonitorConfig, logger *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{pinger: p, config: cfg, logger: logger}
	m.online.Store(cfg.Initial)
	return m
}

// IsOnline implements Observer.
func (m *Monitor) IsOnline() bool { return m.online.Load() }

// Start checks once synchronously, then keeps checking until Stop.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.Check(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(ctx)
	}()
}

// Stop cancels probing and waits for the loop to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Check runs a single reachability check and records the result.
func (m *Monitor) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	err := m.pinger.Ping(pctx)
	online := err == nil
	if prev := m.online.Swap(online); prev != online {
		if online {
			m.logger.InfoContext(ctx, "remote reachable")
		} else {
			m.logger.WarnContext(ctx, "remote unreachable", "error", err)
		}
	}
	return online
}

func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
