package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/event"
)

type fakeTarget struct {
	n       int
	err     error
	intents [][]event.Intent
}

func (f *fakeTarget) Warm(_ context.Context, intents ...event.Intent) (int, error) {
	f.intents = append(f.intents, intents)
	return f.n, f.err
}

type fakePruner struct {
	cutoff time.Time
	n      int64
}

func (f *fakePruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.n, nil
}

func quiet() Option { return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func TestNew_RejectsBadSchedule(t *testing.T) {
	if _, err := New(&fakeTarget{}, "every now and then"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if _, err := New(&fakeTarget{}, "@every 15m"); err != nil {
		t.Fatalf("descriptor schedule rejected: %v", err)
	}
	if _, err := New(&fakeTarget{}, "*/5 * * * *"); err != nil {
		t.Fatalf("five-field schedule rejected: %v", err)
	}
}

func TestRunOnce(t *testing.T) {
	target := &fakeTarget{n: 7}
	w, err := New(target, "@hourly", WithIntents(event.Overview, event.Map), quiet())
	if err != nil {
		t.Fatal(err)
	}

	res := w.RunOnce(context.Background())
	if res.Err != nil || res.Skipped || res.Warmed != 7 {
		t.Fatalf("result = %+v", res)
	}
	if len(target.intents) != 1 || len(target.intents[0]) != 2 {
		t.Fatalf("intents = %v", target.intents)
	}
	if w.Last().Warmed != 7 {
		t.Fatal("Last did not record the run")
	}
}

func TestRunOnce_OfflineIsSkipped(t *testing.T) {
	w, err := New(&fakeTarget{err: huddle.ErrOfflineUnavailable}, "@hourly", quiet())
	if err != nil {
		t.Fatal(err)
	}
	res := w.RunOnce(context.Background())
	if !res.Skipped || res.Err != nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunOnce_FailureRecorded(t *testing.T) {
	boom := errors.New("boom")
	w, err := New(&fakeTarget{err: boom}, "@hourly", quiet())
	if err != nil {
		t.Fatal(err)
	}
	if res := w.RunOnce(context.Background()); !errors.Is(res.Err, boom) {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunOnce_Prunes(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	p := &fakePruner{n: 3}
	w, err := New(&fakeTarget{}, "@hourly",
		WithPruner(p, 30*24*time.Hour),
		WithClock(func() time.Time { return now }),
		quiet(),
	)
	if err != nil {
		t.Fatal(err)
	}
	res := w.RunOnce(context.Background())
	if res.Pruned != 3 {
		t.Fatalf("pruned = %d", res.Pruned)
	}
	if want := now.Add(-30 * 24 * time.Hour); !p.cutoff.Equal(want) {
		t.Fatalf("cutoff = %v, want %v", p.cutoff, want)
	}
}

func TestStartStop(t *testing.T) {
	w, err := New(&fakeTarget{}, "@hourly", quiet())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
	w.Stop(context.Background())
	w.Stop(context.Background())
}
