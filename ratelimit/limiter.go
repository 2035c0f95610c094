// Package ratelimit throttles calls to the remote source with token buckets.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter keeps one token bucket per key. Buckets hold at most one second's
// worth of tokens and start full.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	perSec   float64
	lastFill time.Time
}

// New creates a limiter.
func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow takes a token for key if one is available. A perSec of 0 or less
// means unlimited.
func (l *Limiter) Allow(key string, perSec int) bool {
	if perSec <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(key, float64(perSec))
	b.refill(l.now())
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string, perSec int) error {
	if perSec <= 0 {
		return nil
	}

	interval := time.Duration(float64(time.Second) / float64(perSec))
	for !l.Allow(key, perSec) {
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

func (l *Limiter) bucket(key string, perSec float64) *bucket {
	b, ok := l.buckets[key]
	if !ok || b.perSec != perSec {
		b = &bucket{tokens: perSec, perSec: perSec, lastFill: l.now()}
		l.buckets[key] = b
	}
	return b
}

func (b *bucket) refill(now time.Time) {
	b.tokens += now.Sub(b.lastFill).Seconds() * b.perSec
	if b.tokens > b.perSec {
		b.tokens = b.perSec
	}
	b.lastFill = now
}
