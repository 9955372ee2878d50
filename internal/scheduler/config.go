package scheduler

import "time"

// Config controls the background loop cadence.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	// ValidateEvery spaces out entitlement server round trips; the
	// notification sweep runs on every tick.
	ValidateEvery time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   time.Minute,
		JobTimeout:    30 * time.Second,
		ValidateEvery: time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.ValidateEvery <= 0 {
		c.ValidateEvery = defaults.ValidateEvery
	}
	return c
}
