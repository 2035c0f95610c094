package huddle

import (
	"log/slog"
	"time"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/notify"
	"github.com/xraph/huddle/observability"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
)

// Option configures a Repository.
type Option func(*Repository) error

// WithLocal sets the on-device cache.
func WithLocal(s store.Local) Option {
	return func(r *Repository) error {
		r.local = s
		return nil
	}
}

// WithRemote sets the authoritative event source.
func WithRemote(s store.Remote) Option {
	return func(r *Repository) error {
		r.remote = s
		return nil
	}
}

// WithNetwork sets the connectivity observer consulted before every operation.
func WithNetwork(o network.Observer) Option {
	return func(r *Repository) error {
		r.network = o
		return nil
	}
}

// WithIdentity sets who the repository acts for when the context carries no user.
func WithIdentity(i scope.Identity) Option {
	return func(r *Repository) error {
		r.identity = i
		return nil
	}
}

// WithScheduler sets the reminder scheduler. Without one, reminders are skipped.
func WithScheduler(s notify.Scheduler) Option {
	return func(r *Repository) error {
		r.scheduler = s
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) error {
		r.logger = logger
		return nil
	}
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Repository) error {
		r.metrics = m
		return nil
	}
}

// WithTracer sets the tracer.
func WithTracer(t *observability.Tracer) Option {
	return func(r *Repository) error {
		r.tracer = t
		return nil
	}
}

// WithValidator replaces the default event validator.
func WithValidator(v *event.Validator) Option {
	return func(r *Repository) error {
		r.validator = v
		return nil
	}
}

// WithClock overrides the wall clock used for lifecycle decisions.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) error {
		r.now = now
		return nil
	}
}

// WithRemoteRateLimit caps remote calls per second. 0 disables the limit.
func WithRemoteRateLimit(perSec int) Option {
	return func(r *Repository) error {
		r.config.RemoteRateLimit = perSec
		return nil
	}
}

// WithRemoteTimeout bounds every remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(r *Repository) error {
		r.config.RemoteTimeout = d
		return nil
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(r *Repository) error {
		r.config = cfg
		return nil
	}
}
