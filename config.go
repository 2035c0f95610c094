package huddle

import "time"

// Config holds the tunables of a Repository and the components around it.
type Config struct {
	// ReminderLead is how long before an event starts its reminder fires.
	ReminderLead time.Duration `json:"reminder_lead"`

	// RemoteRateLimit caps remote calls per second. 0 disables the limit.
	RemoteRateLimit int `json:"remote_rate_limit"`

	// RemoteTimeout bounds a single remote call. 0 means no extra bound.
	RemoteTimeout time.Duration `json:"remote_timeout"`

	// WarmSchedule is a cron expression for refreshing the cache in the background.
	// Empty disables warming.
	WarmSchedule string `json:"warm_schedule"`

	// CheckInterval is how often the network monitor pings the remote.
	CheckInterval time.Duration `json:"check_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReminderLead:    30 * time.Minute,
		RemoteRateLimit: 20,
		RemoteTimeout:   10 * time.Second,
		WarmSchedule:    "@every 15m",
		CheckInterval:   15 * time.Second,
	}
}

// ToOptions converts the non-zero fields into Repository options.
func (c Config) ToOptions() []Option {
	var opts []Option
	if c.RemoteRateLimit > 0 {
		opts = append(opts, WithRemoteRateLimit(c.RemoteRateLimit))
	}
	if c.RemoteTimeout > 0 {
		opts = append(opts, WithRemoteTimeout(c.RemoteTimeout))
	}
	return opts
}
