package extension

import (
	"github.com/xraph/huddle"
)

// Config holds configuration for the Huddle Forge extension.
type Config struct {
	// Config embeds the core huddle configuration.
	huddle.Config `json:",inline" yaml:",inline" mapstructure:",squash"`

	// BasePath is the URL prefix for all event routes (default: "/huddle").
	BasePath string `json:"base_path" yaml:"base_path" mapstructure:"base_path"`

	// DisableRoutes disables automatic route registration with the Forge router.
	DisableRoutes bool `json:"disable_routes" yaml:"disable_routes" mapstructure:"disable_routes"`

	// DisableMigrations disables running backend migrations in Init.
	DisableMigrations bool `json:"disable_migrations" yaml:"disable_migrations" mapstructure:"disable_migrations"`

	// DisableWarm disables the background cache warmer even when
	// WarmSchedule is set.
	DisableWarm bool `json:"disable_warm" yaml:"disable_warm" mapstructure:"disable_warm"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Config:   huddle.DefaultConfig(),
		BasePath: "/huddle",
	}
}

// ToHuddleOptions converts the embedded Config into huddle.Option values.
func (c Config) ToHuddleOptions() []huddle.Option {
	return c.Config.ToOptions()
}
