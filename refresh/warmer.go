// Package refresh keeps the device cache warm by re-reading every intent on
// a cron schedule, so the offline view stays close to the remote one.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
)

// Target is the repository side of a warm run.
type Target interface {
	Warm(ctx context.Context, intents ...event.Intent) (int, error)
}

// Pruner evicts cache entries that started before cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Result describes one run.
type Result struct {
	At     time.Time
	Warmed int
	Pruned int64
	// Skipped is set when the device was offline.
	Skipped bool
	Err     error
}

// Warmer runs Target.Warm on a cron schedule.
type Warmer struct {
	target    Target
	schedule  string
	intents   []event.Intent
	timeout   time.Duration
	pruner    Pruner
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	last   Result
}

// Option configures a Warmer.
type Option func(*Warmer)

// WithIntents limits runs to the given intents. The default is all of them.
func WithIntents(intents ...event.Intent) Option {
	return func(w *Warmer) { w.intents = intents }
}

// WithTimeout bounds each run.
func WithTimeout(d time.Duration) Option {
	return func(w *Warmer) { w.timeout = d }
}

// WithPruner evicts cache entries older than retention after each run.
func WithPruner(p Pruner, retention time.Duration) Option {
	return func(w *Warmer) {
		w.pruner = p
		w.retention = retention
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Warmer) { w.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Warmer) { w.now = now }
}

// New validates schedule (standard five-field cron or a descriptor such as
// "@every 15m") and returns a stopped Warmer.
func New(target Target, schedule string, opts ...Option) (*Warmer, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("refresh: parse schedule %q: %w", schedule, err)
	}
	w := &Warmer{
		target:   target,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start schedules runs until Stop is called or ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cron != nil {
		return errors.New("refresh: already started")
	}

	ctx, w.cancel = context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		w.cancel()
		return fmt.Errorf("refresh: schedule: %w", err)
	}
	c.Start()
	w.cron = c
	w.logger.Info("cache warmer started", "schedule", w.schedule)
	return nil
}

// Stop halts scheduling and waits for a running warm to finish.
func (w *Warmer) Stop(_ context.Context) {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
}

// RunOnce warms the cache now. Being offline is not an error; the run is
// recorded as skipped.
func (w *Warmer) RunOnce(ctx context.Context) Result {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	res := Result{At: w.now()}
	n, err := w.target.Warm(ctx, w.intents...)
	res.Warmed = n
	switch {
	case errors.Is(err, huddle.ErrOfflineUnavailable):
		res.Skipped = true
		w.logger.DebugContext(ctx, "cache warm skipped, offline")
	case err != nil:
		res.Err = err
		w.logger.WarnContext(ctx, "cache warm failed", "warmed", n, "error", err)
	default:
		w.logger.DebugContext(ctx, "cache warmed", "warmed", n)
	}

	if w.pruner != nil && w.retention > 0 {
		pruned, err := w.pruner.Prune(ctx, res.At.Add(-w.retention))
		if err != nil {
			res.Err = errors.Join(res.Err, err)
			w.logger.WarnContext(ctx, "cache prune failed", "error", err)
		}
		res.Pruned = pruned
	}

	w.mu.Lock()
	w.last = res
	w.mu.Unlock()
	return res
}

// Last returns the most recent run.
func (w *Warmer) Last() Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
