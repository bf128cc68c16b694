package config

import (
	"time"

	"git.home.luguber.info/inful/sitekit/internal/retry"
)

// RetryConfig controls how remote kit clones are retried. Unset fields take
// the retry package defaults.
type RetryConfig struct {
	Mode    string        `yaml:"mode,omitempty"`
	Initial time.Duration `yaml:"initial,omitempty"`
	Max     time.Duration `yaml:"max,omitempty"`
	// MaxRetries is a pointer so an explicit 0 disables retries.
	MaxRetries *int `yaml:"max_retries,omitempty"`
}

// RetryPolicy builds the kit clone retry policy.
func (c *Config) RetryPolicy() retry.Policy {
	r := c.KitRetry
	maxRetries := -1
	if r.MaxRetries != nil {
		maxRetries = *r.MaxRetries
	}
	return retry.NewPolicy(retry.Mode(r.Mode), r.Initial, r.Max, maxRetries)
}

func validMode(m string) bool {
	switch retry.Mode(m) {
	case "", retry.Fixed, retry.Linear, retry.Exponential:
		return true
	}
	return false
}
