package bridge

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Consumer.
type Option func(*Consumer)

// WithLogger sets the logger. The global zerolog logger is used by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

// WithPollInterval sets the default interval of the fallback polling loop.
func WithPollInterval(d time.Duration) Option {
	return func(c *Consumer) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}
