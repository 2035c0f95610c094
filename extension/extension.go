package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/api"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/refresh"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
)

// ErrNotInitialized is returned when the extension is used before Init.
var ErrNotInitialized = errors.New("huddle/extension: not initialized")

// Extension mounts a Repository and its API.
type Extension struct {
	config  Config
	opts    []huddle.Option
	local   store.Local
	remote  store.Remote
	network network.Observer
	jwt     *scope.JWT
	logger  *slog.Logger

	repo   *huddle.Repository
	warmer *refresh.Warmer
}

// New creates an extension. Call Init before mounting it.
func New(opts ...ExtOption) *Extension {
	e := &Extension{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init migrates the backends and builds the repository.
func (e *Extension) Init(ctx context.Context) error {
	if e.network == nil {
		e.network = network.Always
	}

	opts := []huddle.Option{
		huddle.WithLocal(e.local),
		huddle.WithRemote(e.remote),
		huddle.WithNetwork(e.network),
		huddle.WithLogger(e.logger),
		huddle.WithConfig(e.config.Config),
	}
	opts = append(opts, e.config.ToHuddleOptions()...)
	opts = append(opts, e.opts...)

	repo, err := huddle.New(opts...)
	if err != nil {
		return fmt.Errorf("huddle/extension: %w", err)
	}

	if !e.config.DisableMigrations {
		if err := e.local.Migrate(ctx); err != nil {
			return fmt.Errorf("huddle/extension: migrate local: %w", err)
		}
		if err := e.remote.Migrate(ctx); err != nil {
			return fmt.Errorf("huddle/extension: migrate remote: %w", err)
		}
	}

	if !e.config.DisableWarm && e.config.WarmSchedule != "" {
		w, err := refresh.New(repo, e.config.WarmSchedule, refresh.WithLogger(e.logger))
		if err != nil {
			return fmt.Errorf("huddle/extension: %w", err)
		}
		e.warmer = w
	}

	e.repo = repo
	return nil
}

// Repository returns the repository built by Init, or nil before it.
func (e *Extension) Repository() *huddle.Repository { return e.repo }

// Prefix returns the configured URL prefix.
func (e *Extension) Prefix() string { return e.config.BasePath }

// Handler returns the net/http API mounted under the prefix.
// This can be used standalone without Forge integration.
func (e *Extension) Handler() (http.Handler, error) {
	if e.repo == nil {
		return nil, ErrNotInitialized
	}
	var opts []api.HandlerOption
	if e.jwt != nil {
		opts = append(opts, api.WithJWT(e.jwt))
	}
	h := api.NewHandler(e.repo, e.logger, opts...)
	prefix := strings.TrimSuffix(e.config.BasePath, "/")
	if prefix == "" {
		return h, nil
	}
	return http.StripPrefix(prefix, h), nil
}

// RegisterRoutes registers the event routes under the prefix on a Forge
// router. It does nothing when routes are disabled.
func (e *Extension) RegisterRoutes(router forge.Router, log forge.Logger) error {
	if e.repo == nil {
		return ErrNotInitialized
	}
	if e.config.DisableRoutes {
		return nil
	}
	api.NewForgeAPI(e.repo, log).RegisterRoutes(router.Group(e.config.BasePath))
	return nil
}

// Start begins background cache warming when configured.
func (e *Extension) Start(ctx context.Context) error {
	if e.repo == nil {
		return ErrNotInitialized
	}
	if e.warmer == nil {
		return nil
	}
	return e.warmer.Start(ctx)
}

// Stop halts background work and closes the backends.
func (e *Extension) Stop(ctx context.Context) error {
	if e.warmer != nil {
		e.warmer.Stop(ctx)
	}
	if e.repo == nil {
		return nil
	}
	return e.repo.Close()
}

// Health checks both backends.
func (e *Extension) Health(ctx context.Context) error {
	if e.repo == nil {
		return ErrNotInitialized
	}
	return e.repo.Ping(ctx)
}
