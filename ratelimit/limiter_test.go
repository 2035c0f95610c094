package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New()
	l.now = clk.now
	return l, clk
}

func TestAllow_Unlimited(t *testing.T) {
	l, _ := newTestLimiter()
	for range 100 {
		if !l.Allow("remote", 0) {
			t.Fatal("Allow with no limit should always succeed")
		}
	}
}

func TestAllow_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter()
	for i := range 3 {
		if !l.Allow("remote", 3) {
			t.Fatalf("call %d should be allowed from the initial burst", i+1)
		}
	}
	if l.Allow("remote", 3) {
		t.Fatal("fourth call should be denied")
	}
}

func TestAllow_Refills(t *testing.T) {
	l, clk := newTestLimiter()
	for range 10 {
		l.Allow("remote", 10)
	}
	if l.Allow("remote", 10) {
		t.Fatal("expected empty bucket")
	}

	clk.advance(150 * time.Millisecond)
	if !l.Allow("remote", 10) {
		t.Fatal("expected a token after refill")
	}

	clk.advance(time.Hour)
	for range 10 {
		if !l.Allow("remote", 10) {
			t.Fatal("refill should cap at one second of tokens")
		}
	}
	if l.Allow("remote", 10) {
		t.Fatal("bucket overfilled")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	l.Allow("read", 1)
	if l.Allow("read", 1) {
		t.Fatal("read bucket should be empty")
	}
	if !l.Allow("write", 1) {
		t.Fatal("write bucket should be untouched")
	}

	l.Reset("read")
	if !l.Allow("read", 1) {
		t.Fatal("Reset should restore a full bucket")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	l, _ := newTestLimiter()
	l.Allow("remote", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "remote", 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWait_Unlimited(t *testing.T) {
	l, _ := newTestLimiter()
	if err := l.Wait(context.Background(), "remote", 0); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
