package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/xraph/huddle"
	"github.com/xraph/huddle/signature"
)

// ============================================================================
// Config types
// ============================================================================

// Config represents the CLI configuration stored in ~/.huddle/config.toml.
// A YAML file passed with --config is read the same way.
type Config struct {
	User      UserConfig     `toml:"user" yaml:"user"`
	Cache     CacheConfig    `toml:"cache" yaml:"cache"`
	Remote    RemoteConfig   `toml:"remote" yaml:"remote"`
	Reminders ReminderConfig `toml:"reminders" yaml:"reminders"`
	Server    ServerConfig   `toml:"server" yaml:"server"`
	Tuning    TuningConfig   `toml:"tuning" yaml:"tuning"`
}

// UserConfig holds who the CLI acts for.
type UserConfig struct {
	ID string `toml:"id" yaml:"id"`
}

// CacheConfig selects the local cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `toml:"backend" yaml:"backend"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `toml:"redis_db" yaml:"redis_db"`
}

// RemoteConfig selects the authoritative source.
type RemoteConfig struct {
	// Backend is "memory" or "mongo".
	Backend       string `toml:"backend" yaml:"backend"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
}

// ReminderConfig selects where reminders go. Without a NATS URL they fire
// in-process and are logged.
type ReminderConfig struct {
	NATSURL       string `toml:"nats_url" yaml:"nats_url"`
	SigningSecret string `toml:"signing_secret" yaml:"signing_secret"`
	Lead          string `toml:"lead" yaml:"lead"`
}

// ServerConfig configures `huddle serve`.
type ServerConfig struct {
	Listen    string `toml:"listen" yaml:"listen"`
	JWTSecret string `toml:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer string `toml:"jwt_issuer" yaml:"jwt_issuer"`
}

// TuningConfig holds repository tunables. Durations use time.ParseDuration
// syntax.
type TuningConfig struct {
	RateLimit     int    `toml:"rate_limit" yaml:"rate_limit"`
	Timeout       string `toml:"timeout" yaml:"timeout"`
	WarmSchedule  string `toml:"warm_schedule" yaml:"warm_schedule"`
	CheckInterval string `toml:"check_interval" yaml:"check_interval"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	def := huddle.DefaultConfig()
	return &Config{
		Cache:  CacheConfig{Backend: "memory", RedisAddr: "localhost:6379"},
		Remote: RemoteConfig{Backend: "memory", MongoURI: "mongodb://localhost:27017", MongoDatabase: "huddle"},
		Reminders: ReminderConfig{
			Lead: def.ReminderLead.String(),
		},
		Server: ServerConfig{Listen: "127.0.0.1:8080", JWTIssuer: "huddle"},
		Tuning: TuningConfig{
			RateLimit:     def.RemoteRateLimit,
			Timeout:       def.RemoteTimeout.String(),
			WarmSchedule:  def.WarmSchedule,
			CheckInterval: def.CheckInterval.String(),
		},
	}
}

// HuddleConfig converts the tuning section into a huddle.Config.
func (c *Config) HuddleConfig() (huddle.Config, error) {
	out := huddle.DefaultConfig()
	out.RemoteRateLimit = c.Tuning.RateLimit
	out.WarmSchedule = c.Tuning.WarmSchedule

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"reminders.lead", c.Reminders.Lead, &out.ReminderLead},
		{"tuning.timeout", c.Tuning.Timeout, &out.RemoteTimeout},
		{"tuning.check_interval", c.Tuning.CheckInterval, &out.CheckInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return huddle.Config{}, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}
	return out, nil
}

// ============================================================================
// Config helpers
// ============================================================================

// configDir returns the path to ~/.huddle, creating it if needed.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".huddle")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return dir, nil
}

// configPath returns the file to use: the --config flag when set,
// otherwise ~/.huddle/config.toml.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadConfigFile reads path on top of the defaults. A missing file yields
// the defaults.
func loadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return cfg, nil
}

// saveConfigFile writes cfg to path in the format its extension implies.
func saveConfigFile(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}

// loadConfig loads .env, the config file and HUDDLE_* overrides, in that
// order of increasing precedence.
func loadConfig() (*Config, error) {
	if os.Getenv("HUDDLE_ENV") != "production" {
		// .env is optional outside production.
		_ = godotenv.Load()
	}
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if flagUser != "" {
		cfg.User.ID = flagUser
	}
	return cfg, nil
}

// envKeys maps environment variables onto dot-notation config keys.
var envKeys = map[string]string{
	"HUDDLE_USER":           "user.id",
	"HUDDLE_CACHE_BACKEND":  "cache.backend",
	"HUDDLE_REDIS_ADDR":     "cache.redis_addr",
	"HUDDLE_REMOTE_BACKEND": "remote.backend",
	"HUDDLE_MONGO_URI":      "remote.mongo_uri",
	"HUDDLE_MONGO_DATABASE": "remote.mongo_database",
	"HUDDLE_NATS_URL":       "reminders.nats_url",
	"HUDDLE_SIGNING_SECRET": "reminders.signing_secret",
	"HUDDLE_LISTEN":         "server.listen",
	"HUDDLE_JWT_SECRET":     "server.jwt_secret",
}

// applyEnv overrides cfg from the environment.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for env, key := range envKeys {
		if v, ok := lookup(env); ok && v != "" {
			if err := setConfigValue(cfg, key, v); err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
		}
	}
	return nil
}

// setConfigValue sets a config field using dot notation (e.g. "cache.backend").
func setConfigValue(cfg *Config, key, value string) error {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("key must use dot notation: section.field (e.g. cache.backend)")
	}
	section, field := parts[0], parts[1]

	unknown := func() error {
		return fmt.Errorf("unknown field %q in section [%s]", field, section)
	}

	switch section {
	case "user":
		switch field {
		case "id":
			cfg.User.ID = value
		default:
			return unknown()
		}
	case "cache":
		switch field {
		case "backend":
			if value != "memory" && value != "redis" {
				return fmt.Errorf("cache.backend must be memory or redis, got %q", value)
			}
			cfg.Cache.Backend = value
		case "redis_addr":
			cfg.Cache.RedisAddr = value
		case "redis_db":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("cache.redis_db: %w", err)
			}
			cfg.Cache.RedisDB = n
		default:
			return unknown()
		}
	case "remote":
		switch field {
		case "backend":
			if value != "memory" && value != "mongo" {
				return fmt.Errorf("remote.backend must be memory or mongo, got %q", value)
			}
			cfg.Remote.Backend = value
		case "mongo_uri":
			cfg.Remote.MongoURI = value
		case "mongo_database":
			cfg.Remote.MongoDatabase = value
		default:
			return unknown()
		}
	case "reminders":
		switch field {
		case "nats_url":
			cfg.Reminders.NATSURL = value
		case "signing_secret":
			if value != "" {
				if err := signature.ValidateSecret(value); err != nil {
					return fmt.Errorf("reminders.signing_secret: %w", err)
				}
			}
			cfg.Reminders.SigningSecret = value
		case "lead":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("reminders.lead: %w", err)
			}
			cfg.Reminders.Lead = value
		default:
			return unknown()
		}
	case "server":
		switch field {
		case "listen":
			cfg.Server.Listen = value
		case "jwt_secret":
			cfg.Server.JWTSecret = value
		case "jwt_issuer":
			cfg.Server.JWTIssuer = value
		default:
			return unknown()
		}
	case "tuning":
		switch field {
		case "rate_limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("tuning.rate_limit must be a non-negative integer, got %q", value)
			}
			cfg.Tuning.RateLimit = n
		case "timeout", "check_interval":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("tuning.%s: %w", field, err)
			}
			if field == "timeout" {
				cfg.Tuning.Timeout = value
			} else {
				cfg.Tuning.CheckInterval = value
			}
		case "warm_schedule":
			cfg.Tuning.WarmSchedule = value
		default:
			return unknown()
		}
	default:
		return fmt.Errorf("unknown config section %q (valid: user, cache, remote, reminders, server, tuning)", section)
	}
	return nil
}

// ============================================================================
// Logging
// ============================================================================

// newLogger returns a slog.Logger configured from HUDDLE_ENV and LOG_LEVEL.
// Production uses the JSON handler; otherwise text. Logs go to stderr so
// command output on stdout stays machine-readable.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if flagVerbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("HUDDLE_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
