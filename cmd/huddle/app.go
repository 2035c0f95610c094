package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/network"
	"github.com/xraph/huddle/notify"
	natsnotify "github.com/xraph/huddle/notify/nats"
	"github.com/xraph/huddle/scope"
	"github.com/xraph/huddle/store"
	"github.com/xraph/huddle/store/memory"
	mongostore "github.com/xraph/huddle/store/mongo"
	redisstore "github.com/xraph/huddle/store/redis"
)

// app is the wired runtime shared by every command.
type app struct {
	cfg     *Config
	hcfg    huddle.Config
	logger  *slog.Logger
	session *scope.Session
	local   store.Local
	remote  store.Remote
	monitor *network.Monitor
	repo    *huddle.Repository

	closers []func() error
}

// openApp loads the configuration and wires backends, scheduler and
// repository. Callers must call close.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	hcfg, err := cfg.HuddleConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		hcfg:    hcfg,
		logger:  newLogger(),
		session: scope.NewSession(),
	}
	a.session.SignIn(cfg.User.ID)

	if err := a.open(ctx); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) open(ctx context.Context) error {
	local, err := a.openLocal()
	if err != nil {
		return err
	}
	a.local = local
	a.closers = append(a.closers, local.Close)

	remote, err := a.openRemote()
	if err != nil {
		return err
	}
	a.remote = remote
	a.closers = append(a.closers, remote.Close)

	if err := local.Migrate(ctx); err != nil {
		return err
	}

	var observer network.Observer = network.Never
	if !flagOffline {
		a.monitor = network.NewMonitor(remote, network.MonitorConfig{
			Interval: a.hcfg.CheckInterval,
		}, a.logger)
		// A reachable remote is migrated before it is checked.
		if a.monitor.Check(ctx) {
			if err := remote.Migrate(ctx); err != nil {
				return err
			}
		}
		observer = a.monitor
	}

	scheduler, err := a.openScheduler(ctx)
	if err != nil {
		return err
	}

	repo, err := huddle.New(
		huddle.WithLocal(local),
		huddle.WithRemote(remote),
		huddle.WithNetwork(observer),
		huddle.WithIdentity(a.session),
		huddle.WithScheduler(scheduler),
		huddle.WithLogger(a.logger),
		huddle.WithConfig(a.hcfg),
	)
	if err != nil {
		return err
	}
	a.repo = repo
	return nil
}

func (a *app) openLocal() (store.Local, error) {
	switch a.cfg.Cache.Backend {
	case "", "memory":
		return memory.NewCache(), nil
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{
			Addr: a.cfg.Cache.RedisAddr,
			DB:   a.cfg.Cache.RedisDB,
		})
		return redisstore.NewFromClient(rdb), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

func (a *app) openRemote() (store.Remote, error) {
	switch a.cfg.Remote.Backend {
	case "", "memory":
		return memory.NewSource(a.session), nil
	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(a.cfg.Remote.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return mongostore.NewFromDatabase(client.Database(a.cfg.Remote.MongoDatabase), a.session), nil
	default:
		return nil, fmt.Errorf("unknown remote backend %q", a.cfg.Remote.Backend)
	}
}

// openScheduler publishes reminders over NATS when configured, and
// otherwise keeps in-process timers that log when they fire.
func (a *app) openScheduler(ctx context.Context) (notify.Scheduler, error) {
	if a.cfg.Reminders.NATSURL != "" {
		p, err := natsnotify.Connect(ctx, a.cfg.Reminders.NATSURL, natsnotify.Config{
			Lead:          a.hcfg.ReminderLead,
			SigningSecret: a.cfg.Reminders.SigningSecret,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	}

	t := notify.NewTimer(notify.SinkFunc(func(_ context.Context, r notify.Reminder) {
		a.logger.Info("reminder", "event_id", r.EventID, "title", r.Title, "starts_at", r.StartsAt)
	}), notify.WithLead(a.hcfg.ReminderLead), notify.WithTimerLogger(a.logger))
	a.closers = append(a.closers, func() error {
		t.Stop()
		return nil
	})
	return t, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
