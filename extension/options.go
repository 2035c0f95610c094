package extension

import (
	"log/slog"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
)

// ExtOption configures the Huddle Forge extension.
type ExtOption func(*Extension)

// WithLocal sets the cache backend.
func WithLocal(s store.Local) ExtOption {
	return func(e *Extension) {
		e.local = s
	}
}

// WithRemote sets the authoritative source.
func WithRemote(s store.Remote) ExtOption {
	return func(e *Extension) {
		e.remote = s
	}
}

// WithNetwork sets the connectivity observer. Without one the extension
// assumes it is always online.
func WithNetwork(o network.Observer) ExtOption {
	return func(e *Extension) {
		e.network = o
	}
}

// WithPrefix sets the URL prefix for all event routes.
func WithPrefix(prefix string) ExtOption {
	return func(e *Extension) {
		e.config.BasePath = prefix
	}
}

// WithConfig sets the extension configuration directly.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithJWT enables bearer-token authentication on the net/http handler.
func WithJWT(j *scope.JWT) ExtOption {
	return func(e *Extension) {
		e.jwt = j
	}
}

// WithLogger sets the logger shared by the repository and the handler.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithHuddleOption appends a raw huddle.Option to the extension.
func WithHuddleOption(opt huddle.Option) ExtOption {
	return func(e *Extension) {
		e.opts = append(e.opts, opt)
	}
}

// WithDisableRoutes disables automatic route registration.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrations disables backend migrations in Init.
func WithDisableMigrations() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrations = true
	}
}
