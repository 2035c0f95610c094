package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/huddle/event"
	"github.com/xraph/huddle/signature"
)

func TestLoadConfigFile_MissingYieldsDefaults(t *testing.T) {
	cfg, err := loadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "memory", cfg.Remote.Backend)
	assert.Equal(t, "@every 15m", cfg.Tuning.WarmSchedule)
}

func TestConfigFile_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := defaultConfig()
			require.NoError(t, setConfigValue(cfg, "cache.backend", "redis"))
			require.NoError(t, setConfigValue(cfg, "remote.mongo_database", "events"))
			require.NoError(t, setConfigValue(cfg, "tuning.timeout", "3s"))
			require.NoError(t, saveConfigFile(path, cfg))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			got, err := loadConfigFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestLoadConfigFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user:\n  id: alice\n"), 0o600))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.User.ID)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
}

func TestSetConfigValue_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"no dot":          {"backend", "redis"},
		"unknown section": {"db.url", "x"},
		"unknown field":   {"cache.size", "10"},
		"bad backend":     {"cache.backend", "sqlite"},
		"bad remote":      {"remote.backend", "postgres"},
		"bad duration":    {"reminders.lead", "soon"},
		"negative limit":  {"tuning.rate_limit", "-1"},
		"bad redis db":    {"cache.redis_db", "zero"},
		"short secret":    {"reminders.signing_secret", "hdsec_abc"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, setConfigValue(defaultConfig(), kv[0], kv[1]))
		})
	}
}

func TestSetConfigValue_SigningSecret(t *testing.T) {
	cfg := defaultConfig()
	secret := signature.GenerateSecret()

	require.NoError(t, setConfigValue(cfg, "reminders.signing_secret", secret))
	assert.Equal(t, secret, cfg.Reminders.SigningSecret)

	err := setConfigValue(cfg, "reminders.signing_secret", secret[:20])
	require.ErrorIs(t, err, signature.ErrBadSecret)
	assert.Equal(t, secret, cfg.Reminders.SigningSecret)

	require.NoError(t, setConfigValue(cfg, "reminders.signing_secret", ""))
	assert.Empty(t, cfg.Reminders.SigningSecret)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HUDDLE_USER":          "bob",
		"HUDDLE_CACHE_BACKEND": "redis",
		"HUDDLE_NATS_URL":      "nats://localhost:4222",
		"HUDDLE_LISTEN":        "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := defaultConfig()
	require.NoError(t, applyEnv(cfg, lookup))
	assert.Equal(t, "bob", cfg.User.ID)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "nats://localhost:4222", cfg.Reminders.NATSURL)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen, "empty values do not override")

	env["HUDDLE_REMOTE_BACKEND"] = "cassandra"
	assert.Error(t, applyEnv(defaultConfig(), lookup))
}

func TestHuddleConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, setConfigValue(cfg, "reminders.lead", "1h"))
	require.NoError(t, setConfigValue(cfg, "tuning.rate_limit", "0"))
	require.NoError(t, setConfigValue(cfg, "tuning.check_interval", "30s"))

	hc, err := cfg.HuddleConfig()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, hc.ReminderLead)
	assert.Equal(t, 0, hc.RemoteRateLimit)
	assert.Equal(t, 30*time.Second, hc.CheckInterval)
	assert.Equal(t, 10*time.Second, hc.RemoteTimeout)

	cfg.Tuning.Timeout = "later"
	_, err = cfg.HuddleConfig()
	assert.ErrorContains(t, err, "tuning.timeout")
}

func TestApplyEventFlags(t *testing.T) {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	addEventFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--title", "climbing",
		"--type", "sports",
		"--date", "2026-06-01T18:00:00+02:00",
		"--duration", "90",
		"--lat", "52.5",
		"--participant", "bob",
		"--participant", "carol",
	}))

	e := &event.Event{Kind: event.KindSocial, Duration: 60, Visibility: event.VisibilityPrivate}
	require.NoError(t, applyEventFlags(fs, e))
	assert.Equal(t, "climbing", e.Title)
	assert.Equal(t, event.KindSports, e.Kind)
	assert.Equal(t, time.Date(2026, 6, 1, 16, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, 90, e.Duration)
	assert.InDelta(t, 52.5, e.Location.Lat, 1e-9)
	assert.Equal(t, []string{"bob", "carol"}, e.Participants)
	assert.Equal(t, event.VisibilityPrivate, e.Visibility, "unset flags leave fields alone")
}
