package credentials

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithStore enables the local fallback store.
func WithStore(store Store) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithNowTime sets the clock used for expiry checks.
func WithNowTime(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}
